package commands

import (
	"context"
	"errors"
	"fmt"

	"buyback/internal/core/application/recordstore"
	"buyback/internal/core/domain/model/kernel"
	"buyback/internal/core/domain/model/order"
	"buyback/internal/core/ports"
	"buyback/internal/pkg/errs"

	"go.uber.org/zap"
)

// Per-slot outcomes of a void request.
const (
	VoidOutcomeVoided        = "voided"
	VoidOutcomeAlreadyVoided = "already_voided"
	VoidOutcomeMissing       = "missing"
	VoidOutcomeFailed        = "failed"
)

type VoidResult struct {
	Slot    order.Slot `json:"slot"`
	Outcome string     `json:"outcome"`
}

// VoidLabelsCommandHandler voids labels in two committed steps per slot:
// active -> pending_void before the provider is called, pending_void -> voided
// after it answered. The first step is guarded by a precondition that is
// re-checked on every optimistic retry, so two requests never both reach the
// provider for the same label.
type VoidLabelsCommandHandler struct {
	store  RecordStore
	labels ports.LabelProvider
	clock  kernel.Clock
	logger *zap.Logger
}

func NewVoidLabelsCommandHandler(
	store RecordStore,
	labels ports.LabelProvider,
	clock kernel.Clock,
	logger *zap.Logger,
) VoidLabelsCommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return VoidLabelsCommandHandler{
		store:  store,
		labels: labels,
		clock:  clock,
		logger: logger.With(zap.String("component", "void_labels")),
	}
}

// Handle processes slots in order. A provider failure stops the request: the
// failing slot stays pending_void, is reported as failed, and the provider
// error is returned alongside the results gathered so far.
func (h *VoidLabelsCommandHandler) Handle(ctx context.Context, cmd VoidLabelsCommand) ([]VoidResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if h.labels == nil {
		return nil, errs.NewCredentialsMissingError("label", "LABEL_PROVIDER_API_KEY")
	}

	results := make([]VoidResult, 0, len(cmd.Slots()))
	for _, slot := range cmd.Slots() {
		outcome, err := h.voidSlot(ctx, cmd.OrderID(), slot, cmd.RetryPending())
		results = append(results, VoidResult{Slot: slot, Outcome: outcome})
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (h *VoidLabelsCommandHandler) voidSlot(ctx context.Context, orderID int64, slot order.Slot, retryPending bool) (string, error) {
	current, err := h.store.Get(ctx, orderID)
	if err != nil {
		return VoidOutcomeFailed, err
	}
	label, ok := current.Label(slot)
	if !ok {
		return VoidOutcomeMissing, nil
	}

	switch label.VoidStatus {
	case order.VoidDone:
		return VoidOutcomeAlreadyVoided, nil
	case order.VoidPending:
		if !retryPending {
			return VoidOutcomeAlreadyVoided, nil
		}
	default:
		label, err = h.markPending(ctx, orderID, slot)
		if errors.Is(err, errs.ErrStateConflict) {
			// another request got there first
			return VoidOutcomeAlreadyVoided, nil
		}
		if err != nil {
			return VoidOutcomeFailed, err
		}
	}

	if label.ID != "" {
		if err = h.labels.VoidLabel(ctx, label.ID); err != nil {
			h.logger.Error("label void failed, slot left pending",
				zap.Int64("order_id", orderID),
				zap.String("slot", string(slot)),
				zap.String("label_id", label.ID),
				zap.Error(err))
			return VoidOutcomeFailed, err
		}
	}

	if err = h.markVoided(ctx, orderID, slot); err != nil {
		if errors.Is(err, errs.ErrStateConflict) {
			return VoidOutcomeAlreadyVoided, nil
		}
		return VoidOutcomeFailed, err
	}
	return VoidOutcomeVoided, nil
}

func (h *VoidLabelsCommandHandler) markPending(ctx context.Context, orderID int64, slot order.Slot) (order.LabelRecord, error) {
	var pending order.LabelRecord
	_, err := h.store.Mutate(ctx, orderID, func(o *order.Order) (order.Fields, []order.ActivityLogEntry, error) {
		label, _ := o.Label(slot)
		next, err := label.MoveVoidStatus(order.VoidPending)
		if err != nil {
			return nil, nil, err
		}
		pending = next
		return order.Fields{labelKey(slot, "voidStatus"): string(order.VoidPending)}, nil, nil
	}, recordstore.WithPrecondition(labelIn(slot, order.VoidActive)))
	return pending, err
}

func (h *VoidLabelsCommandHandler) markVoided(ctx context.Context, orderID int64, slot order.Slot) error {
	_, err := h.store.Mutate(ctx, orderID, func(o *order.Order) (order.Fields, []order.ActivityLogEntry, error) {
		label, _ := o.Label(slot)
		if _, err := label.MoveVoidStatus(order.VoidDone); err != nil {
			return nil, nil, err
		}
		fields := order.Fields{}
		fields[labelKey(slot, "voidStatus")] = string(order.VoidDone)
		fields[labelKey(slot, "voidedAt")] = kernel.FormatTimestamp(h.clock.Now())
		return fields, []order.ActivityLogEntry{
			order.NewActivityLogEntry(order.LogVoid,
				fmt.Sprintf("Voided %s label %s", slot, label.TrackingNumber),
				map[string]any{"slot": string(slot), "labelId": label.ID, "trackingNumber": label.TrackingNumber}),
		}, nil
	}, recordstore.WithPrecondition(labelIn(slot, order.VoidPending)))
	return err
}

func labelIn(slot order.Slot, want order.VoidStatus) func(*order.Order) error {
	return func(o *order.Order) error {
		label, ok := o.Label(slot)
		if !ok {
			return errs.NewStateConflictError("order", o.ID(), fmt.Sprintf("slot %s holds no label", slot))
		}
		if label.VoidStatus != want {
			return errs.NewStateConflictError("label", label.ID,
				fmt.Sprintf("void status is %s, expected %s", label.VoidStatus, want))
		}
		return nil
	}
}

func labelKey(slot order.Slot, field string) string {
	return order.KeyLabels + "." + string(slot) + "." + field
}
