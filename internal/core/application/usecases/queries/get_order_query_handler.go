package queries

import (
	"context"

	"buyback/internal/core/domain/model/order"
	"buyback/internal/core/ports"
)

type GetOrderQueryHandler struct {
	orders ports.OrderDocumentStore
}

func NewGetOrderQueryHandler(orders ports.OrderDocumentStore) GetOrderQueryHandler {
	return GetOrderQueryHandler{orders: orders}
}

func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	stored, err := h.orders.Get(ctx, query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	o, err := order.FromDocument(stored.ID, stored.Version, stored.Document, stored.Log)
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	return NewGetOrderQueryResponse(o), nil
}
