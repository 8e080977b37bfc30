package commands

import (
	"errors"
	"fmt"

	"buyback/internal/core/domain/model/order"
	"buyback/internal/pkg/errs"
	"buyback/internal/pkg/guard"
)

var ErrVoidLabelsCommandIsNotConstructed = errors.New(
	"VoidLabelsCommand must be created via NewVoidLabelsCommand constructor",
)

// VoidLabelsCommand voids the labels held in the named slots of an order.
// With retryPending set, slots stuck in pending_void are sent to the provider
// again instead of being reported as in flight.
type VoidLabelsCommand struct { //nolint:recvcheck //using for validation
	orderID      int64
	slots        []order.Slot
	retryPending bool

	guard guard.ConstructorGuard
}

func NewVoidLabelsCommand(orderID int64, slots []string, retryPending bool) (VoidLabelsCommand, error) {
	var err error
	if orderID <= 0 {
		err = errs.NewValueIsInvalidErrorWithCause("orderId", fmt.Errorf("%d is not positive", orderID))
	}
	if len(slots) == 0 {
		err = errors.Join(err, errs.NewValueIsRequiredError("labels"))
	}

	parsed := make([]order.Slot, 0, len(slots))
	seen := make(map[order.Slot]struct{}, len(slots))
	for _, raw := range slots {
		slot, slotErr := order.ParseSlot(raw)
		if slotErr != nil {
			err = errors.Join(err, slotErr)
			continue
		}
		if _, dup := seen[slot]; dup {
			continue
		}
		seen[slot] = struct{}{}
		parsed = append(parsed, slot)
	}
	if err != nil {
		return VoidLabelsCommand{}, err
	}

	return VoidLabelsCommand{
		orderID:      orderID,
		slots:        parsed,
		retryPending: retryPending,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c VoidLabelsCommand) Validate() error {
	return c.guard.Validate(ErrVoidLabelsCommandIsNotConstructed)
}

func (c VoidLabelsCommand) OrderID() int64 { return c.orderID }

func (c VoidLabelsCommand) Slots() []order.Slot { return append([]order.Slot(nil), c.slots...) }

func (c VoidLabelsCommand) RetryPending() bool { return c.retryPending }
