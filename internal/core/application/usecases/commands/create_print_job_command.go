package commands

import (
	"errors"
	"slices"

	"buyback/internal/core/domain/model/printjob"
	"buyback/internal/pkg/guard"
)

var ErrCreatePrintJobCommandIsNotConstructed = errors.New(
	"CreatePrintJobCommand must be created via NewCreatePrintJobCommand constructor",
)

// CreatePrintJobCommand batches kit orders into one print folder.
type CreatePrintJobCommand struct { //nolint:recvcheck //using for validation
	orderIDs []int64

	guard guard.ConstructorGuard
}

func NewCreatePrintJobCommand(orderIDs []int64) (CreatePrintJobCommand, error) {
	if err := printjob.ValidateOrderIDs(orderIDs); err != nil {
		return CreatePrintJobCommand{}, err
	}
	return CreatePrintJobCommand{
		orderIDs: slices.Clone(orderIDs),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c CreatePrintJobCommand) Validate() error {
	return c.guard.Validate(ErrCreatePrintJobCommandIsNotConstructed)
}

func (c CreatePrintJobCommand) OrderIDs() []int64 { return slices.Clone(c.orderIDs) }
