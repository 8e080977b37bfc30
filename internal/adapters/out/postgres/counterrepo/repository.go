// Package counterrepo stores the singleton counters behind order ids, print
// job folders and the label profile ring.
package counterrepo

import (
	"context"
	"errors"

	"buyback/internal/core/ports"
	"buyback/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ ports.CounterStore = &GormCounterRepository{}

// CounterDTO is one counter row.
type CounterDTO struct {
	Key     string `gorm:"primaryKey"`
	Value   int64  `gorm:"not null"`
	Version int64  `gorm:"not null"`
}

func (CounterDTO) TableName() string {
	return "counters"
}

type GormCounterRepository struct {
	db *gorm.DB
}

func NewGormCounterRepository(db *gorm.DB) *GormCounterRepository {
	return &GormCounterRepository{db: db}
}

func (r *GormCounterRepository) Read(ctx context.Context, key string) (ports.CounterState, error) {
	var dto CounterDTO
	if err := r.db.WithContext(ctx).First(&dto, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.CounterState{}, nil
		}
		return ports.CounterState{}, err
	}
	value := dto.Value
	return ports.CounterState{Value: &value, Version: dto.Version}, nil
}

// Commit inserts the counter when expectedVersion is 0 and updates it
// conditionally otherwise. Either way a lost race leaves no rows affected.
func (r *GormCounterRepository) Commit(ctx context.Context, key string, expectedVersion int64, value int64) error {
	db := r.db.WithContext(ctx)

	var result *gorm.DB
	if expectedVersion == 0 {
		dto := CounterDTO{Key: key, Value: value, Version: 1}
		result = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&dto)
	} else {
		result = db.Model(&CounterDTO{}).
			Where("key = ? AND version = ?", key, expectedVersion).
			Updates(map[string]any{"value": value, "version": expectedVersion + 1})
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewVersionConflictError("counter", key, expectedVersion)
	}
	return nil
}
