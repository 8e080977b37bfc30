// Package printjobrepo stores print job metadata.
package printjobrepo

import (
	"context"
	"errors"
	"time"

	"buyback/internal/core/domain/model/printjob"
	"buyback/internal/core/ports"
	"buyback/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var _ ports.PrintJobRepository = &GormPrintJobRepository{}

type PrintJobDTO struct {
	ID        string        `gorm:"type:uuid;primaryKey"`
	Sequence  int64         `gorm:"not null;uniqueIndex"`
	Folder    string        `gorm:"not null"`
	OrderIDs  pq.Int64Array `gorm:"type:bigint[];not null"`
	CreatedAt time.Time     `gorm:"not null;index"`
}

func (PrintJobDTO) TableName() string {
	return "print_jobs"
}

func fromDomain(job printjob.PrintJob) PrintJobDTO {
	return PrintJobDTO{
		ID:        job.ID,
		Sequence:  job.Sequence,
		Folder:    job.Folder,
		OrderIDs:  pq.Int64Array(append([]int64(nil), job.OrderIDs...)),
		CreatedAt: job.CreatedAt.UTC(),
	}
}

func (d PrintJobDTO) toDomain() printjob.PrintJob {
	return printjob.PrintJob{
		ID:        d.ID,
		Sequence:  d.Sequence,
		Folder:    d.Folder,
		OrderIDs:  []int64(d.OrderIDs),
		CreatedAt: d.CreatedAt.UTC(),
	}
}

type GormPrintJobRepository struct {
	db *gorm.DB
}

func NewGormPrintJobRepository(db *gorm.DB) *GormPrintJobRepository {
	return &GormPrintJobRepository{db: db}
}

func (r *GormPrintJobRepository) Add(ctx context.Context, job printjob.PrintJob) error {
	dto := fromDomain(job)
	return r.db.WithContext(ctx).Create(&dto).Error
}

func (r *GormPrintJobRepository) Get(ctx context.Context, id string) (printjob.PrintJob, error) {
	if _, err := uuid.Parse(id); err != nil {
		return printjob.PrintJob{}, errs.NewObjectNotFoundErrorWithCause("printJobID", id, err)
	}

	var dto PrintJobDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return printjob.PrintJob{}, errs.NewObjectNotFoundError("printJobID", id)
		}
		return printjob.PrintJob{}, err
	}
	return dto.toDomain(), nil
}

// List returns jobs created at or after since, oldest first.
func (r *GormPrintJobRepository) List(ctx context.Context, since time.Time) ([]printjob.PrintJob, error) {
	var dtos []PrintJobDTO
	if err := r.db.WithContext(ctx).
		Where("created_at >= ?", since.UTC()).
		Order("sequence").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	jobs := make([]printjob.PrintJob, 0, len(dtos))
	for _, dto := range dtos {
		jobs = append(jobs, dto.toDomain())
	}
	return jobs, nil
}
