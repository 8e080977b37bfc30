package queries

import (
	"context"

	"buyback/internal/core/ports"
)

type GetPromoCodeQueryHandler struct {
	promos ports.PromoStore
}

func NewGetPromoCodeQueryHandler(promos ports.PromoStore) GetPromoCodeQueryHandler {
	return GetPromoCodeQueryHandler{promos: promos}
}

func (h GetPromoCodeQueryHandler) Handle(ctx context.Context, query GetPromoCodeQuery) (GetPromoCodeQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetPromoCodeQueryResponse{}, err
	}

	p, err := h.promos.Get(ctx, query.Code())
	if err != nil {
		return GetPromoCodeQueryResponse{}, err
	}

	redemptions := make([]RedemptionResponse, 0, len(p.Redemptions()))
	for _, r := range p.Redemptions() {
		redemptions = append(redemptions, RedemptionResponse{
			OrderID:     r.OrderID,
			BonusAmount: r.BonusAmount,
			RedeemedAt:  r.RedeemedAt,
		})
	}

	return GetPromoCodeQueryResponse{
		Code:               p.Code(),
		UsesLeft:           p.UsesLeft(),
		BonusAmount:        p.BonusAmount(),
		RequiresEmailLabel: p.RequiresEmailLabel(),
		Redemptions:        redemptions,
		Eligible:           p.Eligible(),
	}, nil
}
