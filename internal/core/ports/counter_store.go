package ports

import (
	"context"
	"time"

	"buyback/internal/core/domain/model/printjob"
	"buyback/internal/core/domain/model/promo"
)

// CounterState is a counter as read. Value is nil for a counter that has
// never been written; Version is 0 in that case.
type CounterState struct {
	Value   *int64
	Version int64
}

// CounterStore holds singleton counters. Commit writes value if the stored
// version still equals expectedVersion (0 means "must not exist yet") and
// returns errs.ErrVersionConflict otherwise.
type CounterStore interface {
	Read(ctx context.Context, key string) (CounterState, error)
	Commit(ctx context.Context, key string, expectedVersion int64, value int64) error
}

// PromoStore persists promo codes with optimistic versioning.
type PromoStore interface {
	// Get returns errs.ErrObjectNotFound for an unknown code.
	Get(ctx context.Context, code string) (*promo.PromoCode, error)

	// CommitRedemption stores the decremented usesLeft and the new
	// redemption if the code is still at expectedVersion.
	CommitRedemption(ctx context.Context, code string, expectedVersion int64, usesLeft int, redemption promo.Redemption) error

	// CommitRelease stores the restored usesLeft and drops the redemption of
	// orderID if the code is still at expectedVersion.
	CommitRelease(ctx context.Context, code string, expectedVersion int64, usesLeft int, orderID int64) error

	// Upsert seeds or replaces a code. It is not used on the redemption path.
	Upsert(ctx context.Context, code *promo.PromoCode) error
}

// PrintJobRepository stores print job metadata.
type PrintJobRepository interface {
	Add(ctx context.Context, job printjob.PrintJob) error
	Get(ctx context.Context, id string) (printjob.PrintJob, error)
	List(ctx context.Context, since time.Time) ([]printjob.PrintJob, error)
}
