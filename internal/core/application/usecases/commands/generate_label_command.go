package commands

import (
	"errors"
	"fmt"

	"buyback/internal/core/domain/model/order"
	"buyback/internal/pkg/errs"
	"buyback/internal/pkg/guard"
)

var ErrGenerateLabelCommandIsNotConstructed = errors.New(
	"GenerateLabelCommand must be created via NewGenerateLabelCommand constructor",
)

// GenerateLabelCommand buys a shipping label for one slot of an order.
type GenerateLabelCommand struct { //nolint:recvcheck //using for validation
	orderID int64
	slot    order.Slot

	guard guard.ConstructorGuard
}

func NewGenerateLabelCommand(orderID int64, slot string) (GenerateLabelCommand, error) {
	var err error
	if orderID <= 0 {
		err = errs.NewValueIsInvalidErrorWithCause("orderId", fmt.Errorf("%d is not positive", orderID))
	}
	parsed, slotErr := order.ParseSlot(slot)
	if err = errors.Join(err, slotErr); err != nil {
		return GenerateLabelCommand{}, err
	}
	return GenerateLabelCommand{
		orderID: orderID,
		slot:    parsed,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c GenerateLabelCommand) Validate() error {
	return c.guard.Validate(ErrGenerateLabelCommandIsNotConstructed)
}

func (c GenerateLabelCommand) OrderID() int64 { return c.orderID }

func (c GenerateLabelCommand) Slot() order.Slot { return c.slot }
