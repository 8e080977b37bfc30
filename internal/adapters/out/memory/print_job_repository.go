package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"buyback/internal/core/domain/model/printjob"
	"buyback/internal/core/ports"
	"buyback/internal/pkg/errs"
)

var _ ports.PrintJobRepository = &PrintJobRepository{}

type PrintJobRepository struct {
	mu   sync.RWMutex
	jobs []printjob.PrintJob
}

func NewPrintJobRepository() *PrintJobRepository {
	return &PrintJobRepository{}
}

func (r *PrintJobRepository) Add(ctx context.Context, job printjob.PrintJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	job.OrderIDs = slices.Clone(job.OrderIDs)
	r.jobs = append(r.jobs, job)
	return nil
}

func (r *PrintJobRepository) Get(ctx context.Context, id string) (printjob.PrintJob, error) {
	if err := ctx.Err(); err != nil {
		return printjob.PrintJob{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, job := range r.jobs {
		if job.ID == id {
			job.OrderIDs = slices.Clone(job.OrderIDs)
			return job, nil
		}
	}
	return printjob.PrintJob{}, errs.NewObjectNotFoundError("printJobID", id)
}

// List returns jobs created at or after since, oldest first.
func (r *PrintJobRepository) List(ctx context.Context, since time.Time) ([]printjob.PrintJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []printjob.PrintJob
	for _, job := range r.jobs {
		if job.CreatedAt.Before(since) {
			continue
		}
		job.OrderIDs = slices.Clone(job.OrderIDs)
		out = append(out, job)
	}
	slices.SortFunc(out, func(a, b printjob.PrintJob) int { return int(a.Sequence - b.Sequence) })
	return out, nil
}
