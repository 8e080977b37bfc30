package queries

import (
	"errors"
	"fmt"

	"buyback/internal/core/domain/model/order"
	"buyback/internal/pkg/errs"
	"buyback/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery reads one order from the primary store.
type GetOrderQuery struct {
	orderID int64

	guard guard.ConstructorGuard
}

func NewGetOrderQuery(orderID int64) (GetOrderQuery, error) {
	if orderID <= 0 {
		return GetOrderQuery{}, errs.NewValueIsInvalidErrorWithCause("orderId", fmt.Errorf("%d is not positive", orderID))
	}
	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() int64 { return q.orderID }

// GetOrderQueryResponse is the full order document with its audit trail.
// Status is the canonical name; RawStatus is the stored spelling.
type GetOrderQueryResponse struct {
	ID          int64                    `json:"id"`
	Version     int64                    `json:"version"`
	Status      string                   `json:"status"`
	RawStatus   string                   `json:"rawStatus"`
	Document    map[string]any           `json:"document"`
	ActivityLog []order.ActivityLogEntry `json:"activityLog"`
}

// NewGetOrderQueryResponse renders an order for callers outside the core.
func NewGetOrderQueryResponse(o *order.Order) GetOrderQueryResponse {
	log := o.ActivityLog()
	if log == nil {
		log = []order.ActivityLogEntry{}
	}
	return GetOrderQueryResponse{
		ID:          o.ID(),
		Version:     o.Version(),
		Status:      o.Status().String(),
		RawStatus:   o.RawStatus(),
		Document:    o.Document(),
		ActivityLog: log,
	}
}
