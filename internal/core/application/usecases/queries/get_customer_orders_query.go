package queries

import (
	"errors"
	"strings"

	"buyback/internal/pkg/errs"
	"buyback/internal/pkg/guard"
)

var ErrGetCustomerOrdersQueryIsNotConstructed = errors.New(
	"GetCustomerOrdersQuery must be created via NewGetCustomerOrdersQuery constructor",
)

// GetCustomerOrdersQuery reads a customer's orders from the mirror. The
// mirror is eventually consistent and may lag the primary store.
type GetCustomerOrdersQuery struct {
	customerID string

	guard guard.ConstructorGuard
}

func NewGetCustomerOrdersQuery(customerID string) (GetCustomerOrdersQuery, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return GetCustomerOrdersQuery{}, errs.NewValueIsRequiredError("customerId")
	}
	return GetCustomerOrdersQuery{customerID: customerID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetCustomerOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetCustomerOrdersQueryIsNotConstructed)
}

func (q GetCustomerOrdersQuery) CustomerID() string { return q.customerID }

type CustomerOrderResponse struct {
	ID       int64          `json:"id"`
	Status   string         `json:"status"`
	Document map[string]any `json:"document"`
}
