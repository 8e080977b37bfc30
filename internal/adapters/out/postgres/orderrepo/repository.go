package orderrepo

import (
	"context"
	"errors"

	"buyback/internal/adapters/out/postgres/pgerr"
	"buyback/internal/core/domain/model/order"
	"buyback/internal/core/ports"
	"buyback/internal/pkg/errs"

	"gorm.io/gorm"
)

var _ ports.OrderDocumentStore = &GormOrderRepository{}

// GormOrderRepository implements ports.OrderDocumentStore using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Get reads a document together with its full activity log.
func (r *GormOrderRepository) Get(ctx context.Context, id int64) (ports.StoredOrder, error) {
	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.StoredOrder{}, errs.NewObjectNotFoundError("order", id)
		}
		return ports.StoredOrder{}, err
	}

	var logs []ActivityLogDTO
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", id).
		Order("position").
		Find(&logs).Error; err != nil {
		return ports.StoredOrder{}, err
	}

	stored := ports.StoredOrder{
		ID:       dto.ID,
		Version:  dto.Version,
		Document: order.CloneDocument(dto.Document),
		Log:      make([]order.ActivityLogEntry, 0, len(logs)),
	}
	for _, l := range logs {
		stored.Log = append(stored.Log, l.toDomain())
	}
	return stored, nil
}

// Create inserts a new document at version 1. An existing id is reported as
// a version conflict.
func (r *GormOrderRepository) Create(
	ctx context.Context,
	id int64,
	doc map[string]any,
	entries []order.ActivityLogEntry,
) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dto := newOrderDTO(id, 1, doc)
		if err := tx.Create(&dto).Error; err != nil {
			return err
		}
		return appendLog(tx, id, 1, entries)
	})
	if pgerr.IsUniqueViolation(err) {
		return errs.NewVersionConflictError("order", id, 0)
	}
	return err
}

// Commit replaces the document and appends entries if the stored version is
// still expectedVersion. The conditional UPDATE takes the row lock, so log
// positions computed afterwards cannot collide.
func (r *GormOrderRepository) Commit(
	ctx context.Context,
	id int64,
	expectedVersion int64,
	doc map[string]any,
	entries []order.ActivityLogEntry,
) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dto := newOrderDTO(id, expectedVersion+1, doc)
		result := tx.Model(&OrderDTO{}).
			Where("id = ? AND version = ?", id, expectedVersion).
			Updates(map[string]any{
				"version":     dto.Version,
				"status":      dto.Status,
				"customer_id": dto.CustomerID,
				"document":    dto.Document,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return r.missOrConflict(tx, id, expectedVersion)
		}

		var last int64
		if err := tx.Model(&ActivityLogDTO{}).
			Where("order_id = ?", id).
			Select("COALESCE(MAX(position), 0)").
			Scan(&last).Error; err != nil {
			return err
		}
		return appendLog(tx, id, last+1, entries)
	})
	if pgerr.IsRetryable(err) {
		return errs.NewVersionConflictError("order", id, expectedVersion)
	}
	return err
}

// ListByStatuses returns ids whose stored status spelling is in statuses.
func (r *GormOrderRepository) ListByStatuses(ctx context.Context, statuses []string, limit int) ([]int64, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	query := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("status IN ?", statuses).
		Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var ids []int64
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormOrderRepository) missOrConflict(tx *gorm.DB, id, expectedVersion int64) error {
	var count int64
	if err := tx.Model(&OrderDTO{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("order", id)
	}
	return errs.NewVersionConflictError("order", id, expectedVersion)
}

func appendLog(tx *gorm.DB, orderID, firstPosition int64, entries []order.ActivityLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	dtos := logDTOs(orderID, firstPosition, entries)
	return tx.Create(&dtos).Error
}
