package queries

import (
	"errors"
	"time"

	"buyback/internal/core/domain/model/promo"
	"buyback/internal/pkg/errs"
	"buyback/internal/pkg/guard"
)

var ErrGetPromoCodeQueryIsNotConstructed = errors.New(
	"GetPromoCodeQuery must be created via NewGetPromoCodeQuery constructor",
)

// GetPromoCodeQuery is the usage and eligibility snapshot of a promo code.
type GetPromoCodeQuery struct {
	code string

	guard guard.ConstructorGuard
}

func NewGetPromoCodeQuery(code string) (GetPromoCodeQuery, error) {
	normalized := promo.NormalizeCode(code)
	if normalized == "" {
		return GetPromoCodeQuery{}, errs.NewValueIsRequiredError("code")
	}
	return GetPromoCodeQuery{code: normalized, guard: guard.NewConstructorGuard()}, nil
}

func (q GetPromoCodeQuery) Validate() error {
	return q.guard.Validate(ErrGetPromoCodeQueryIsNotConstructed)
}

func (q GetPromoCodeQuery) Code() string { return q.code }

type RedemptionResponse struct {
	OrderID     int64     `json:"orderId"`
	BonusAmount float64   `json:"bonusAmount"`
	RedeemedAt  time.Time `json:"redeemedAt"`
}

type GetPromoCodeQueryResponse struct {
	Code               string               `json:"code"`
	UsesLeft           int                  `json:"usesLeft"`
	BonusAmount        float64              `json:"bonusAmount"`
	RequiresEmailLabel bool                 `json:"requiresEmailLabel"`
	Redemptions        []RedemptionResponse `json:"redemptions"`
	Eligible           bool                 `json:"eligible"`
}
