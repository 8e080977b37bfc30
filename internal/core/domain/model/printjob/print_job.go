// Package printjob models bulk print batches of shipping kits.
package printjob

import (
	"errors"
	"fmt"
	"time"

	"buyback/internal/pkg/errs"

	"github.com/google/uuid"
)

// PrintJob is one batch of kit labels printed together. Its folder name is
// derived from a monotonic sequence.
type PrintJob struct {
	ID        string
	Sequence  int64
	Folder    string
	OrderIDs  []int64
	CreatedAt time.Time
}

// FolderName is the folder a job with sequence seq is printed into.
func FolderName(seq int64) string {
	return fmt.Sprintf("print-job-%d", seq)
}

// ValidateOrderIDs checks a batch request: at least one id, all positive, no duplicates.
func ValidateOrderIDs(orderIDs []int64) error {
	if len(orderIDs) == 0 {
		return errs.NewValueIsRequiredError("orderIds")
	}
	seen := make(map[int64]struct{}, len(orderIDs))
	var err error
	for _, id := range orderIDs {
		if id <= 0 {
			err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause("orderIds", fmt.Errorf("%d is not positive", id)))
			continue
		}
		if _, dup := seen[id]; dup {
			err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause("orderIds", fmt.Errorf("%d is listed twice", id)))
		}
		seen[id] = struct{}{}
	}
	return err
}

// New builds a print job for the given sequence.
func New(seq int64, orderIDs []int64, now time.Time) (PrintJob, error) {
	if seq <= 0 {
		return PrintJob{}, errs.NewValueIsInvalidErrorWithCause("sequence", fmt.Errorf("%d is not positive", seq))
	}
	if err := ValidateOrderIDs(orderIDs); err != nil {
		return PrintJob{}, err
	}
	return PrintJob{
		ID:        uuid.NewString(),
		Sequence:  seq,
		Folder:    FolderName(seq),
		OrderIDs:  append([]int64(nil), orderIDs...),
		CreatedAt: now.UTC(),
	}, nil
}
