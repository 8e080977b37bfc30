// Package promo models promo codes and their per-order redemptions.
package promo

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"buyback/internal/core/domain/model/order"
	"buyback/internal/pkg/errs"
)

var ErrPromoCodeIsNotConstructed = errors.New("PromoCode must be created via NewPromoCode or Restore")

// Redemption records that a code was applied to one order.
type Redemption struct {
	OrderID     int64
	BonusAmount float64
	RedeemedAt  time.Time
}

// PromoCode is a bonus offer with a limited number of uses. Redemptions are
// keyed by order id, so redeeming twice for the same order decrements once.
type PromoCode struct {
	code               string
	usesLeft           int
	bonusAmount        float64
	requiresEmailLabel bool
	redemptions        map[int64]Redemption
	version            int64

	isConstructed bool
}

// NewPromoCode creates a code with no redemptions.
func NewPromoCode(code string, usesLeft int, bonusAmount float64, requiresEmailLabel bool) (*PromoCode, error) {
	return Restore(code, usesLeft, bonusAmount, requiresEmailLabel, nil, 0)
}

// Restore rebuilds a stored code.
func Restore(
	code string,
	usesLeft int,
	bonusAmount float64,
	requiresEmailLabel bool,
	redemptions []Redemption,
	version int64,
) (*PromoCode, error) {
	p := &PromoCode{
		bonusAmount:        bonusAmount,
		requiresEmailLabel: requiresEmailLabel,
		redemptions:        make(map[int64]Redemption, len(redemptions)),
		version:            version,
		isConstructed:      true,
	}

	var err error
	p.code = NormalizeCode(code)
	if p.code == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("code"))
	}
	if usesLeft < 0 {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("usesLeft", usesLeft, 0, "unbounded"))
	}
	if bonusAmount < 0 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause("bonusAmount", fmt.Errorf("%v is negative", bonusAmount)))
	}
	if err != nil {
		return nil, err
	}
	p.usesLeft = usesLeft

	for _, r := range redemptions {
		p.redemptions[r.OrderID] = r
	}
	return p, nil
}

// NormalizeCode is the canonical form codes are stored under.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (p *PromoCode) Validate() error {
	if p == nil || !p.isConstructed {
		return ErrPromoCodeIsNotConstructed
	}
	return nil
}

func (p *PromoCode) Code() string             { return p.code }
func (p *PromoCode) UsesLeft() int            { return p.usesLeft }
func (p *PromoCode) BonusAmount() float64     { return p.bonusAmount }
func (p *PromoCode) RequiresEmailLabel() bool { return p.requiresEmailLabel }
func (p *PromoCode) Version() int64           { return p.version }

// Redemptions returns redemptions ordered by order id.
func (p *PromoCode) Redemptions() []Redemption {
	out := make([]Redemption, 0, len(p.redemptions))
	for _, r := range p.redemptions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out
}

// RedemptionFor returns the redemption recorded for orderID.
func (p *PromoCode) RedemptionFor(orderID int64) (Redemption, bool) {
	r, ok := p.redemptions[orderID]
	return r, ok
}

// Eligible reports whether the code still has uses left.
func (p *PromoCode) Eligible() bool {
	return p.usesLeft > 0
}

// CheckEligibility validates the code against an order's shipping preference
// without redeeming it.
func (p *PromoCode) CheckEligibility(pref order.ShippingPreference) error {
	if p.requiresEmailLabel && !pref.IsEmailLabel() {
		return errs.NewPromoIneligibleError(p.code,
			fmt.Sprintf("requires %q, order has %q", order.PreferenceEmailLabel, pref))
	}
	if p.usesLeft <= 0 {
		return errs.NewPromoExhaustedError(p.code)
	}
	return nil
}

// Redeem applies the code to orderID. A repeated redemption for the same
// order returns the existing record and reports replayed=true without
// touching usesLeft.
func (p *PromoCode) Redeem(orderID int64, pref order.ShippingPreference, now time.Time) (r Redemption, replayed bool, err error) {
	if existing, ok := p.redemptions[orderID]; ok {
		return existing, true, nil
	}
	if orderID <= 0 {
		return Redemption{}, false, errs.NewValueIsInvalidErrorWithCause("orderId", fmt.Errorf("%d is not positive", orderID))
	}
	if err = p.CheckEligibility(pref); err != nil {
		return Redemption{}, false, err
	}

	r = Redemption{OrderID: orderID, BonusAmount: p.bonusAmount, RedeemedAt: now.UTC()}
	p.usesLeft--
	p.redemptions[orderID] = r
	return r, false, nil
}

// Release gives back the use consumed by orderID. It reports false when the
// order holds no redemption of this code.
func (p *PromoCode) Release(orderID int64) bool {
	if _, ok := p.redemptions[orderID]; !ok {
		return false
	}
	delete(p.redemptions, orderID)
	p.usesLeft++
	return true
}
