// Package promorepo stores promo codes and their redemptions.
package promorepo

import (
	"context"
	"errors"
	"time"

	"buyback/internal/adapters/out/postgres/pgerr"
	"buyback/internal/core/domain/model/promo"
	"buyback/internal/core/ports"
	"buyback/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ ports.PromoStore = &GormPromoRepository{}

type PromoCodeDTO struct {
	Code               string  `gorm:"primaryKey"`
	UsesLeft           int     `gorm:"not null"`
	BonusAmount        float64 `gorm:"not null"`
	RequiresEmailLabel bool    `gorm:"not null"`
	Version            int64   `gorm:"not null"`
}

func (PromoCodeDTO) TableName() string {
	return "promo_codes"
}

// RedemptionDTO is keyed by code and order, so one order redeems a code once.
type RedemptionDTO struct {
	Code        string    `gorm:"primaryKey"`
	OrderID     int64     `gorm:"primaryKey;autoIncrement:false"`
	BonusAmount float64   `gorm:"not null"`
	RedeemedAt  time.Time `gorm:"not null"`
}

func (RedemptionDTO) TableName() string {
	return "promo_redemptions"
}

type GormPromoRepository struct {
	db *gorm.DB
}

func NewGormPromoRepository(db *gorm.DB) *GormPromoRepository {
	return &GormPromoRepository{db: db}
}

func (r *GormPromoRepository) Get(ctx context.Context, code string) (*promo.PromoCode, error) {
	key := promo.NormalizeCode(code)
	db := r.db.WithContext(ctx)

	var dto PromoCodeDTO
	if err := db.First(&dto, "code = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("promoCode", key)
		}
		return nil, err
	}

	var rows []RedemptionDTO
	if err := db.Where("code = ?", key).Order("redeemed_at, order_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	redemptions := make([]promo.Redemption, 0, len(rows))
	for _, row := range rows {
		redemptions = append(redemptions, promo.Redemption{
			OrderID:     row.OrderID,
			BonusAmount: row.BonusAmount,
			RedeemedAt:  row.RedeemedAt.UTC(),
		})
	}
	return promo.Restore(dto.Code, dto.UsesLeft, dto.BonusAmount, dto.RequiresEmailLabel, redemptions, dto.Version)
}

// CommitRedemption decrements the code and records the redemption in one
// transaction, guarded by the version read before redeeming.
func (r *GormPromoRepository) CommitRedemption(
	ctx context.Context,
	code string,
	expectedVersion int64,
	usesLeft int,
	redemption promo.Redemption,
) error {
	key := promo.NormalizeCode(code)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpVersion(tx, key, expectedVersion, usesLeft); err != nil {
			return err
		}
		row := RedemptionDTO{
			Code:        key,
			OrderID:     redemption.OrderID,
			BonusAmount: redemption.BonusAmount,
			RedeemedAt:  redemption.RedeemedAt.UTC(),
		}
		return tx.Create(&row).Error
	})
	if pgerr.IsUniqueViolation(err) || pgerr.IsRetryable(err) {
		return errs.NewVersionConflictError("promo", key, expectedVersion)
	}
	return err
}

// CommitRelease restores a use and deletes the redemption of orderID in one
// transaction, guarded like CommitRedemption.
func (r *GormPromoRepository) CommitRelease(
	ctx context.Context,
	code string,
	expectedVersion int64,
	usesLeft int,
	orderID int64,
) error {
	key := promo.NormalizeCode(code)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpVersion(tx, key, expectedVersion, usesLeft); err != nil {
			return err
		}
		return tx.Where("code = ? AND order_id = ?", key, orderID).Delete(&RedemptionDTO{}).Error
	})
	if pgerr.IsRetryable(err) {
		return errs.NewVersionConflictError("promo", key, expectedVersion)
	}
	return err
}

func bumpVersion(tx *gorm.DB, key string, expectedVersion int64, usesLeft int) error {
	result := tx.Model(&PromoCodeDTO{}).
		Where("code = ? AND version = ?", key, expectedVersion).
		Updates(map[string]any{"uses_left": usesLeft, "version": expectedVersion + 1})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&PromoCodeDTO{}).Where("code = ?", key).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("promoCode", key)
	}
	return errs.NewVersionConflictError("promo", key, expectedVersion)
}

// Upsert replaces the code and its redemption set and bumps the version.
func (r *GormPromoRepository) Upsert(ctx context.Context, code *promo.PromoCode) error {
	if err := code.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dto := PromoCodeDTO{
			Code:               code.Code(),
			UsesLeft:           code.UsesLeft(),
			BonusAmount:        code.BonusAmount(),
			RequiresEmailLabel: code.RequiresEmailLabel(),
			Version:            1,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "code"}},
			DoUpdates: clause.Assignments(map[string]any{
				"uses_left":            dto.UsesLeft,
				"bonus_amount":         dto.BonusAmount,
				"requires_email_label": dto.RequiresEmailLabel,
				"version":              gorm.Expr("promo_codes.version + 1"),
			}),
		}).Create(&dto).Error; err != nil {
			return err
		}

		if err := tx.Where("code = ?", dto.Code).Delete(&RedemptionDTO{}).Error; err != nil {
			return err
		}
		redemptions := code.Redemptions()
		if len(redemptions) == 0 {
			return nil
		}
		rows := make([]RedemptionDTO, 0, len(redemptions))
		for _, rd := range redemptions {
			rows = append(rows, RedemptionDTO{
				Code:        dto.Code,
				OrderID:     rd.OrderID,
				BonusAmount: rd.BonusAmount,
				RedeemedAt:  rd.RedeemedAt.UTC(),
			})
		}
		return tx.Create(&rows).Error
	})
}
