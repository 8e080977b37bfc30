package memory

import (
	"context"
	"sync"

	"buyback/internal/core/domain/model/promo"
	"buyback/internal/core/ports"
	"buyback/internal/pkg/errs"
)

var _ ports.PromoStore = &PromoStore{}

type promoRow struct {
	usesLeft           int
	bonusAmount        float64
	requiresEmailLabel bool
	redemptions        []promo.Redemption
	version            int64
}

type PromoStore struct {
	mu   sync.Mutex
	rows map[string]promoRow
}

func NewPromoStore() *PromoStore {
	return &PromoStore{rows: make(map[string]promoRow)}
}

func (s *PromoStore) Get(ctx context.Context, code string) (*promo.PromoCode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := promo.NormalizeCode(code)

	s.mu.Lock()
	row, ok := s.rows[key]
	s.mu.Unlock()
	if !ok {
		return nil, errs.NewObjectNotFoundError("promoCode", key)
	}
	return promo.Restore(key, row.usesLeft, row.bonusAmount, row.requiresEmailLabel, row.redemptions, row.version)
}

func (s *PromoStore) CommitRedemption(
	ctx context.Context,
	code string,
	expectedVersion int64,
	usesLeft int,
	redemption promo.Redemption,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := promo.NormalizeCode(code)

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[key]
	if !ok {
		return errs.NewObjectNotFoundError("promoCode", key)
	}
	if row.version != expectedVersion {
		return errs.NewVersionConflictError("promo", key, expectedVersion)
	}
	row.usesLeft = usesLeft
	row.redemptions = append(append([]promo.Redemption(nil), row.redemptions...), redemption)
	row.version++
	s.rows[key] = row
	return nil
}

func (s *PromoStore) CommitRelease(
	ctx context.Context,
	code string,
	expectedVersion int64,
	usesLeft int,
	orderID int64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := promo.NormalizeCode(code)

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[key]
	if !ok {
		return errs.NewObjectNotFoundError("promoCode", key)
	}
	if row.version != expectedVersion {
		return errs.NewVersionConflictError("promo", key, expectedVersion)
	}
	kept := make([]promo.Redemption, 0, len(row.redemptions))
	for _, r := range row.redemptions {
		if r.OrderID != orderID {
			kept = append(kept, r)
		}
	}
	row.usesLeft = usesLeft
	row.redemptions = kept
	row.version++
	s.rows[key] = row
	return nil
}

func (s *PromoStore) Upsert(ctx context.Context, code *promo.PromoCode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := code.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	version := s.rows[code.Code()].version + 1
	s.rows[code.Code()] = promoRow{
		usesLeft:           code.UsesLeft(),
		bonusAmount:        code.BonusAmount(),
		requiresEmailLabel: code.RequiresEmailLabel(),
		redemptions:        code.Redemptions(),
		version:            version,
	}
	return nil
}
