package queries

import (
	"context"
	"slices"

	"buyback/internal/core/domain/model/order"
	"buyback/internal/core/ports"
)

type GetCustomerOrdersQueryHandler struct {
	mirror ports.CustomerMirror
}

func NewGetCustomerOrdersQueryHandler(mirror ports.CustomerMirror) GetCustomerOrdersQueryHandler {
	return GetCustomerOrdersQueryHandler{mirror: mirror}
}

// Handle returns the mirrored orders sorted by id.
func (h GetCustomerOrdersQueryHandler) Handle(ctx context.Context, query GetCustomerOrdersQuery) ([]CustomerOrderResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	docs, err := h.mirror.List(ctx, query.CustomerID())
	if err != nil {
		return nil, err
	}

	out := make([]CustomerOrderResponse, 0, len(docs))
	for id, doc := range docs {
		raw, _ := doc[order.KeyStatus].(string)
		status, ok := order.Canonicalize(raw)
		if !ok {
			status = order.Status(raw)
		}
		out = append(out, CustomerOrderResponse{ID: id, Status: string(status), Document: doc})
	}
	slices.SortFunc(out, func(a, b CustomerOrderResponse) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out, nil
}
