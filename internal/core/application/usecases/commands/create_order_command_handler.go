package commands

import (
	"context"
	"fmt"

	"buyback/internal/core/application/recordstore"
	"buyback/internal/core/application/sequence"
	"buyback/internal/core/domain/model/order"

	"go.uber.org/zap"
)

// CreateOrderCommandHandler allocates an order number, redeems the promo code
// if one was given, and writes the order in order_pending.
//
// A rejected promo code aborts before anything is written. The allocated
// number is then simply skipped. If the order write fails after the code was
// redeemed, the redemption is released again.
type CreateOrderCommandHandler struct {
	store     RecordStore
	allocator SequenceAllocator
	logger    *zap.Logger
}

func NewCreateOrderCommandHandler(store RecordStore, allocator SequenceAllocator, logger *zap.Logger) CreateOrderCommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return CreateOrderCommandHandler{
		store:     store,
		allocator: allocator,
		logger:    logger.With(zap.String("component", "create_order")),
	}
}

func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	fields, err := order.NewOrderFields(cmd.CustomerID(), cmd.ShippingPreference(), cmd.Device(), cmd.Address())
	if err != nil {
		return nil, err
	}

	id, err := h.allocator.Next(ctx, sequence.CounterOrders)
	if err != nil {
		return nil, fmt.Errorf("allocate order number: %w", err)
	}

	var opts []recordstore.Option
	if code := cmd.PromoCode(); code != "" {
		redemption, err := h.allocator.RedeemPromo(ctx, code, id, cmd.ShippingPreference())
		if err != nil {
			h.logger.Info("promo code rejected, order not created",
				zap.Int64("burned_order_id", id),
				zap.String("code", code),
				zap.Error(err))
			return nil, err
		}
		fields[order.KeyPromoCode] = code
		fields[order.KeyPromoBonus] = redemption.BonusAmount
		opts = append(opts, recordstore.WithLogEntries(order.NewActivityLogEntry(order.LogPromo,
			fmt.Sprintf("Promo code %s applied (+%.2f)", code, redemption.BonusAmount),
			map[string]any{"code": code, "bonusAmount": redemption.BonusAmount})))
	}

	created, err := h.store.Create(ctx, id, fields, opts...)
	if err != nil {
		if code := cmd.PromoCode(); code != "" {
			h.releasePromo(ctx, code, id, err)
		}
		return nil, err
	}

	h.logger.Info("order created",
		zap.Int64("order_id", id),
		zap.String("customer_id", cmd.CustomerID()),
		zap.String("shipping_preference", string(cmd.ShippingPreference())))
	return created, nil
}

// releasePromo gives back a use redeemed for an order that was never written.
// It runs even when ctx is already cancelled.
func (h *CreateOrderCommandHandler) releasePromo(ctx context.Context, code string, orderID int64, cause error) {
	logger := h.logger.With(
		zap.Int64("order_id", orderID),
		zap.String("code", code),
		zap.NamedError("cause", cause))
	if err := h.allocator.ReleasePromo(context.WithoutCancel(ctx), code, orderID); err != nil {
		logger.Error("promo redemption of unwritten order not released", zap.Error(err))
		return
	}
	logger.Warn("promo redemption released after failed order write")
}
