package commands

import (
	"context"
	"fmt"

	"buyback/internal/core/application/recordstore"
	"buyback/internal/core/domain/model/order"
	"buyback/internal/pkg/errs"

	"go.uber.org/zap"
)

type UpdateOrderStatusCommandHandler struct {
	store  RecordStore
	logger *zap.Logger
}

func NewUpdateOrderStatusCommandHandler(store RecordStore, logger *zap.Logger) UpdateOrderStatusCommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return UpdateOrderStatusCommandHandler{
		store:  store,
		logger: logger.With(zap.String("component", "update_order_status")),
	}
}

// Handle commits the new status. Orders in a terminal status only accept
// their own status again.
func (h *UpdateOrderStatusCommandHandler) Handle(ctx context.Context, cmd UpdateOrderStatusCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	opts := []recordstore.Option{
		recordstore.WithPrecondition(func(o *order.Order) error {
			if o.Status().IsTerminal() && o.Status() != cmd.Status() {
				return errs.NewStateConflictError("order", o.ID(),
					fmt.Sprintf("status %s is terminal", o.Status()))
			}
			return nil
		}),
	}
	if cmd.SuppressLog() {
		opts = append(opts, recordstore.SuppressStatusLog())
	}
	if cmd.Note() != "" {
		opts = append(opts, recordstore.WithLogEntries(order.NewActivityLogEntry(order.LogNote, cmd.Note(),
			map[string]any{"status": string(cmd.Status())})))
	}

	updated, err := h.store.Apply(ctx, cmd.OrderID(), order.Fields{order.KeyStatus: string(cmd.Status())}, opts...)
	if err != nil {
		return nil, err
	}

	h.logger.Info("order status set by operator",
		zap.Int64("order_id", cmd.OrderID()),
		zap.String("status", string(cmd.Status())))
	return updated, nil
}
