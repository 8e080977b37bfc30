package queries

import (
	"context"

	"buyback/internal/core/domain/model/printjob"
	"buyback/internal/core/ports"
)

type ListPrintJobsQueryHandler struct {
	printJobs ports.PrintJobRepository
}

func NewListPrintJobsQueryHandler(printJobs ports.PrintJobRepository) ListPrintJobsQueryHandler {
	return ListPrintJobsQueryHandler{printJobs: printJobs}
}

// Handle returns the matching jobs oldest first, never nil.
func (h ListPrintJobsQueryHandler) Handle(ctx context.Context, query ListPrintJobsQuery) ([]printjob.PrintJob, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	jobs, err := h.printJobs.List(ctx, query.Since())
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []printjob.PrintJob{}
	}
	return jobs, nil
}
