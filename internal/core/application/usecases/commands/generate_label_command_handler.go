package commands

import (
	"context"
	"fmt"

	"buyback/internal/core/application/recordstore"
	"buyback/internal/core/application/sequence"
	"buyback/internal/core/domain/model/kernel"
	"buyback/internal/core/domain/model/order"
	"buyback/internal/core/ports"
	"buyback/internal/pkg/errs"

	"go.uber.org/zap"
)

// LabelProfile is one shipping account labels can be bought on. Profiles are
// used in rotation.
type LabelProfile struct {
	Name        string
	Origin      kernel.Address
	CarrierCode string
	ServiceCode string
	PackageCode string
	WeightOz    float64
}

// GenerateLabelCommandHandler buys a label and stores it in the requested
// slot. The label's tracking number becomes the tracking number of the
// slot's leg.
type GenerateLabelCommandHandler struct {
	store     RecordStore
	allocator SequenceAllocator
	labels    ports.LabelProvider
	profiles  []LabelProfile
	clock     kernel.Clock
	logger    *zap.Logger
}

func NewGenerateLabelCommandHandler(
	store RecordStore,
	allocator SequenceAllocator,
	labels ports.LabelProvider,
	profiles []LabelProfile,
	clock kernel.Clock,
	logger *zap.Logger,
) GenerateLabelCommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return GenerateLabelCommandHandler{
		store:     store,
		allocator: allocator,
		labels:    labels,
		profiles:  append([]LabelProfile(nil), profiles...),
		clock:     clock,
		logger:    logger.With(zap.String("component", "generate_label")),
	}
}

func (h *GenerateLabelCommandHandler) Handle(ctx context.Context, cmd GenerateLabelCommand) (order.LabelRecord, error) {
	if err := cmd.Validate(); err != nil {
		return order.LabelRecord{}, err
	}
	if h.labels == nil || len(h.profiles) == 0 {
		return order.LabelRecord{}, errs.NewCredentialsMissingError("label", "LABEL_PROFILES")
	}

	current, err := h.store.Get(ctx, cmd.OrderID())
	if err != nil {
		return order.LabelRecord{}, err
	}
	if err = slotIsFree(current, cmd.Slot()); err != nil {
		return order.LabelRecord{}, err
	}
	customer, err := current.ShippingAddress()
	if err != nil {
		return order.LabelRecord{}, err
	}

	idx, err := h.allocator.NextInRing(ctx, sequence.CounterLabelProfile, len(h.profiles))
	if err != nil {
		return order.LabelRecord{}, fmt.Errorf("pick label profile: %w", err)
	}
	profile := h.profiles[idx]

	req := ports.LabelRequest{
		FromAddress: profile.Origin,
		ToAddress:   customer,
		CarrierCode: profile.CarrierCode,
		ServiceCode: profile.ServiceCode,
		PackageCode: profile.PackageCode,
		WeightOz:    profile.WeightOz,
		Profile:     profile.Name,
	}
	if cmd.Slot().IsInboundSide() {
		req.FromAddress, req.ToAddress = customer, profile.Origin
	}

	created, err := h.labels.CreateLabel(ctx, req)
	if err != nil {
		return order.LabelRecord{}, err
	}

	label := order.LabelRecord{
		ID:             created.LabelID,
		TrackingNumber: created.TrackingNumber,
		DownloadURL:    created.DownloadURL,
		CarrierCode:    firstNonEmpty(created.CarrierCode, profile.CarrierCode),
		ServiceCode:    firstNonEmpty(created.ServiceCode, profile.ServiceCode),
		Status:         "completed",
		VoidStatus:     order.VoidActive,
		GeneratedAt:    kernel.FormatTimestamp(h.clock.Now()),
		Profile:        profile.Name,
	}

	_, err = h.store.Mutate(ctx, cmd.OrderID(), func(o *order.Order) (order.Fields, []order.ActivityLogEntry, error) {
		return labelFields(o, cmd.Slot(), label), []order.ActivityLogEntry{
			order.NewActivityLogEntry(order.LogLabel,
				fmt.Sprintf("Generated %s label %s", cmd.Slot(), label.TrackingNumber),
				map[string]any{
					"slot":           string(cmd.Slot()),
					"labelId":        label.ID,
					"trackingNumber": label.TrackingNumber,
					"carrierCode":    label.CarrierCode,
					"profile":        label.Profile,
				}),
		}, nil
	}, recordstore.WithPrecondition(func(o *order.Order) error {
		return slotIsFree(o, cmd.Slot())
	}))
	if err != nil {
		h.discard(ctx, cmd.OrderID(), label, err)
		return order.LabelRecord{}, err
	}

	h.logger.Info("label generated",
		zap.Int64("order_id", cmd.OrderID()),
		zap.String("slot", string(cmd.Slot())),
		zap.String("tracking_number", label.TrackingNumber),
		zap.String("profile", profile.Name))
	return label, nil
}

func labelFields(o *order.Order, slot order.Slot, label order.LabelRecord) order.Fields {
	fields := order.Fields{}
	fields[order.KeyLabels+"."+string(slot)] = label.ToMap()
	fields[order.KeyLabelGeneratedAt] = label.GeneratedAt
	if slot.IsInboundSide() {
		fields[order.KeyInboundTrackingNumber] = label.TrackingNumber
		fields[order.KeyInboundCarrierCode] = label.CarrierCode
	} else {
		fields[order.KeyOutboundTrackingNumber] = label.TrackingNumber
		fields[order.KeyOutboundCarrierCode] = label.CarrierCode
	}

	pref := o.ShippingPreference()
	switch status := o.Status(); {
	case pref.IsEmailLabel() && status == order.OrderPending:
		fields[order.KeyStatus] = string(order.LabelGenerated)
	case pref.RequiresKit() && slot == order.SlotOutbound &&
		(status == order.OrderPending || status == order.ShippingKitRequested):
		fields[order.KeyStatus] = string(order.KitNeedsPrinting)
	}
	return fields
}

func slotIsFree(o *order.Order, slot order.Slot) error {
	if o.Status().IsTerminal() {
		return errs.NewStateConflictError("order", o.ID(), fmt.Sprintf("status %s is terminal", o.Status()))
	}
	existing, ok := o.Label(slot)
	if ok && existing.VoidStatus != order.VoidDone {
		return errs.NewStateConflictError("order", o.ID(),
			fmt.Sprintf("slot %s already holds label %s (%s)", slot, existing.TrackingNumber, existing.VoidStatus))
	}
	return nil
}

// discard voids a label that was bought but could not be stored.
func (h *GenerateLabelCommandHandler) discard(ctx context.Context, orderID int64, label order.LabelRecord, cause error) {
	if label.ID == "" {
		return
	}
	logger := h.logger.With(
		zap.Int64("order_id", orderID),
		zap.String("label_id", label.ID),
		zap.NamedError("cause", cause))
	if err := h.labels.VoidLabel(ctx, label.ID); err != nil {
		logger.Error("orphaned label could not be voided", zap.Error(err))
		return
	}
	logger.Warn("label voided after failed commit")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
