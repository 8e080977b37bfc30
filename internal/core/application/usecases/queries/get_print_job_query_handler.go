package queries

import (
	"context"

	"buyback/internal/core/domain/model/printjob"
	"buyback/internal/core/ports"
)

type GetPrintJobQueryHandler struct {
	printJobs ports.PrintJobRepository
}

func NewGetPrintJobQueryHandler(printJobs ports.PrintJobRepository) GetPrintJobQueryHandler {
	return GetPrintJobQueryHandler{printJobs: printJobs}
}

func (h GetPrintJobQueryHandler) Handle(ctx context.Context, query GetPrintJobQuery) (printjob.PrintJob, error) {
	if err := query.Validate(); err != nil {
		return printjob.PrintJob{}, err
	}
	return h.printJobs.Get(ctx, query.ID())
}
