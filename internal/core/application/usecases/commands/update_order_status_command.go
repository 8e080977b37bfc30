package commands

import (
	"errors"
	"fmt"
	"strings"

	"buyback/internal/core/domain/model/order"
	"buyback/internal/pkg/errs"
	"buyback/internal/pkg/guard"
)

var ErrUpdateOrderStatusCommandIsNotConstructed = errors.New(
	"UpdateOrderStatusCommand must be created via NewUpdateOrderStatusCommand constructor",
)

// UpdateOrderStatusCommand is an operator setting an order's status by hand.
// Legacy spellings are accepted and stored under their canonical name.
type UpdateOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID     int64
	status      order.Status
	note        string
	suppressLog bool

	guard guard.ConstructorGuard
}

func NewUpdateOrderStatusCommand(orderID int64, status, note string, suppressLog bool) (UpdateOrderStatusCommand, error) {
	var err error
	if orderID <= 0 {
		err = errs.NewValueIsInvalidErrorWithCause("orderId", fmt.Errorf("%d is not positive", orderID))
	}
	parsed, statusErr := order.ParseStatus(status)
	if err = errors.Join(err, statusErr); err != nil {
		return UpdateOrderStatusCommand{}, err
	}
	return UpdateOrderStatusCommand{
		orderID:     orderID,
		status:      parsed,
		note:        strings.TrimSpace(note),
		suppressLog: suppressLog,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateOrderStatusCommandIsNotConstructed)
}

func (c UpdateOrderStatusCommand) OrderID() int64 { return c.orderID }

func (c UpdateOrderStatusCommand) Status() order.Status { return c.status }

func (c UpdateOrderStatusCommand) Note() string { return c.note }

func (c UpdateOrderStatusCommand) SuppressLog() bool { return c.suppressLog }
