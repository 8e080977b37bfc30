package queries

import (
	"context"

	"buyback/internal/core/domain/model/order"
	"buyback/internal/core/ports"
)

// GetTrackableOrdersQueryHandler matches every spelling of the trackable
// statuses, so orders still stored under a legacy name are polled too.
type GetTrackableOrdersQueryHandler struct {
	orders ports.OrderDocumentStore
}

func NewGetTrackableOrdersQueryHandler(orders ports.OrderDocumentStore) GetTrackableOrdersQueryHandler {
	return GetTrackableOrdersQueryHandler{orders: orders}
}

// Handle returns order ids in ascending order.
func (h GetTrackableOrdersQueryHandler) Handle(ctx context.Context, query GetTrackableOrdersQuery) ([]int64, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.orders.ListByStatuses(ctx, order.Spellings(order.TrackableStatuses...), query.Limit())
}
