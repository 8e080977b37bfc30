package commands

import (
	"context"
	"errors"
	"fmt"

	"buyback/internal/core/application/recordstore"
	"buyback/internal/core/domain/model/kernel"
	"buyback/internal/core/domain/model/order"
	"buyback/internal/core/domain/model/printjob"
	"buyback/internal/pkg/errs"

	"go.uber.org/zap"
)

// CreatePrintJobCommandHandler allocates a print folder for a batch of orders
// waiting to be printed and marks each of them as sent.
type CreatePrintJobCommandHandler struct {
	store     RecordStore
	allocator SequenceAllocator
	logger    *zap.Logger
}

func NewCreatePrintJobCommandHandler(store RecordStore, allocator SequenceAllocator, logger *zap.Logger) CreatePrintJobCommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return CreatePrintJobCommandHandler{
		store:     store,
		allocator: allocator,
		logger:    logger.With(zap.String("component", "create_print_job")),
	}
}

// Handle checks every order before allocating anything. Orders that move out
// of kit_needs_printing between the check and their update are skipped and
// reported in the returned error; the job itself stands.
func (h *CreatePrintJobCommandHandler) Handle(ctx context.Context, cmd CreatePrintJobCommand) (printjob.PrintJob, error) {
	if err := cmd.Validate(); err != nil {
		return printjob.PrintJob{}, err
	}

	for _, id := range cmd.OrderIDs() {
		o, err := h.store.Get(ctx, id)
		if err != nil {
			return printjob.PrintJob{}, err
		}
		if err = awaitingPrint(o); err != nil {
			return printjob.PrintJob{}, err
		}
	}

	job, err := h.allocator.NextPrintJob(ctx, cmd.OrderIDs())
	if err != nil {
		return printjob.PrintJob{}, err
	}

	var failed error
	for _, id := range job.OrderIDs {
		fields := order.Fields{
			order.KeyStatus:     string(order.KitSent),
			order.KeyKitSentAt:  kernel.FormatTimestamp(job.CreatedAt),
			order.KeyPrintJobID: job.ID,
		}
		_, err = h.store.Apply(ctx, id, fields,
			recordstore.WithPrecondition(awaitingPrint),
			recordstore.WithLogEntries(order.NewActivityLogEntry(order.LogPrint,
				fmt.Sprintf("Printed in %s", job.Folder),
				map[string]any{"printJobId": job.ID, "folder": job.Folder, "sequence": job.Sequence})))
		if err != nil {
			h.logger.Warn("order not moved to kit_sent",
				zap.Int64("order_id", id),
				zap.String("print_job", job.Folder),
				zap.Error(err))
			failed = errors.Join(failed, fmt.Errorf("order %d: %w", id, err))
		}
	}

	h.logger.Info("print job created",
		zap.String("print_job_id", job.ID),
		zap.String("folder", job.Folder),
		zap.Int("orders", len(job.OrderIDs)))
	return job, failed
}

func awaitingPrint(o *order.Order) error {
	if o.Status() != order.KitNeedsPrinting {
		return errs.NewStateConflictError("order", o.ID(),
			fmt.Sprintf("status is %s, expected %s", o.RawStatus(), order.KitNeedsPrinting))
	}
	return nil
}
