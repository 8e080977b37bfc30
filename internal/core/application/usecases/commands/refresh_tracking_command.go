package commands

import (
	"errors"
	"fmt"

	"buyback/internal/pkg/errs"
	"buyback/internal/pkg/guard"
)

var ErrRefreshTrackingCommandIsNotConstructed = errors.New(
	"RefreshTrackingCommand must be created via NewRefreshTrackingCommand constructor",
)

// RefreshTrackingCommand asks for one order's tracking to be fetched,
// classified and applied.
//
// Example:
//
//	cmd, err := NewRefreshTrackingCommand(100001)
//	if err != nil {
//	    return err
//	}
//	res, err := handler.Handle(ctx, cmd)
//	fmt.Println(res.PreviousStatus, "->", res.Status)
type RefreshTrackingCommand struct { //nolint:recvcheck //using for validation
	orderID int64

	guard guard.ConstructorGuard
}

func NewRefreshTrackingCommand(orderID int64) (RefreshTrackingCommand, error) {
	if orderID <= 0 {
		return RefreshTrackingCommand{}, errs.NewValueIsInvalidErrorWithCause("orderId",
			fmt.Errorf("%d is not positive", orderID))
	}
	return RefreshTrackingCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c RefreshTrackingCommand) Validate() error {
	return c.guard.Validate(ErrRefreshTrackingCommandIsNotConstructed)
}

func (c RefreshTrackingCommand) OrderID() int64 {
	return c.orderID
}
