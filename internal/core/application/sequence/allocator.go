// Package sequence hands out monotonic numbers and consumes limited promo
// uses. Every operation is a read-modify-write against a versioned store,
// retried on conflict, so concurrent callers never observe the same value.
package sequence

import (
	"context"
	"errors"
	"fmt"

	"buyback/internal/core/domain/model/kernel"
	"buyback/internal/core/domain/model/order"
	"buyback/internal/core/domain/model/printjob"
	"buyback/internal/core/domain/model/promo"
	"buyback/internal/core/ports"
	"buyback/internal/pkg/errs"
	"buyback/internal/pkg/metrics"

	"go.uber.org/zap"
)

// Well-known counters.
const (
	CounterOrders       = "orders"
	CounterPrintJobs    = "print_jobs"
	CounterLabelProfile = "label_profile"
)

const (
	DefaultOrderSeed   = 100000
	defaultMaxAttempts = 100
)

// Option configures an Allocator.
type Option func(*Allocator)

// WithSeed sets the value a never-written counter starts from. The first
// number handed out is seed+1.
func WithSeed(counterID string, seed int64) Option {
	return func(a *Allocator) {
		a.seeds[counterID] = seed
	}
}

type Allocator struct {
	counters    ports.CounterStore
	promos      ports.PromoStore
	printJobs   ports.PrintJobRepository
	clock       kernel.Clock
	logger      *zap.Logger
	seeds       map[string]int64
	maxAttempts int
}

func NewAllocator(
	counters ports.CounterStore,
	promos ports.PromoStore,
	printJobs ports.PrintJobRepository,
	clock kernel.Clock,
	logger *zap.Logger,
	opts ...Option,
) *Allocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Allocator{
		counters:    counters,
		promos:      promos,
		printJobs:   printJobs,
		clock:       clock,
		logger:      logger.With(zap.String("component", "sequence_allocator")),
		seeds:       map[string]int64{CounterOrders: DefaultOrderSeed},
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Next returns (current ?? seed) + 1 for counterID and persists it.
func (a *Allocator) Next(ctx context.Context, counterID string) (int64, error) {
	if counterID == "" {
		return 0, errs.NewValueIsRequiredError("counterId")
	}
	return a.advance(ctx, counterID, func(current *int64) int64 {
		if current == nil {
			return a.seeds[counterID] + 1
		}
		return *current + 1
	})
}

// NextInRing returns the next slot of a ring of the given size, starting at
// 0. It is used to rotate between shipping account profiles.
func (a *Allocator) NextInRing(ctx context.Context, counterID string, size int) (int, error) {
	if counterID == "" {
		return 0, errs.NewValueIsRequiredError("counterId")
	}
	if size <= 0 {
		return 0, errs.NewValueIsOutOfRangeError("size", size, 1, "unbounded")
	}
	next, err := a.advance(ctx, counterID, func(current *int64) int64 {
		if current == nil {
			return 0
		}
		return (*current + 1) % int64(size)
	})
	return int(next), err
}

func (a *Allocator) advance(ctx context.Context, counterID string, step func(*int64) int64) (int64, error) {
	for attempt := 1; ; attempt++ {
		state, err := a.counters.Read(ctx, counterID)
		if err != nil {
			return 0, err
		}
		next := step(state.Value)

		err = a.counters.Commit(ctx, counterID, state.Version, next)
		if err == nil {
			metrics.SequencesIssuedTotal.WithLabelValues(counterID).Inc()
			return next, nil
		}
		if !errors.Is(err, errs.ErrVersionConflict) {
			return 0, err
		}
		metrics.VersionConflictsTotal.WithLabelValues("counters").Inc()
		if attempt >= a.maxAttempts {
			return 0, fmt.Errorf("counter %s: giving up after %d attempts: %w", counterID, attempt, err)
		}
	}
}

// RedeemPromo consumes one use of code for orderID. Ineligible orders get
// PromoIneligible, codes without uses left get PromoExhausted, and neither
// changes the code. Redeeming again for the same order returns the recorded
// redemption without consuming another use.
func (a *Allocator) RedeemPromo(
	ctx context.Context,
	code string,
	orderID int64,
	pref order.ShippingPreference,
) (promo.Redemption, error) {
	if promo.NormalizeCode(code) == "" {
		return promo.Redemption{}, errs.NewValueIsRequiredError("promoCode")
	}

	for attempt := 1; ; attempt++ {
		p, err := a.promos.Get(ctx, code)
		if err != nil {
			return promo.Redemption{}, err
		}
		version := p.Version()

		redemption, replayed, err := p.Redeem(orderID, pref, a.clock.Now())
		if err != nil {
			return promo.Redemption{}, err
		}
		if replayed {
			return redemption, nil
		}

		err = a.promos.CommitRedemption(ctx, p.Code(), version, p.UsesLeft(), redemption)
		if err == nil {
			a.logger.Info("promo code redeemed",
				zap.String("code", p.Code()),
				zap.Int64("order_id", orderID),
				zap.Int("uses_left", p.UsesLeft()))
			return redemption, nil
		}
		if !errors.Is(err, errs.ErrVersionConflict) {
			return promo.Redemption{}, err
		}
		metrics.VersionConflictsTotal.WithLabelValues("promo_codes").Inc()
		if attempt >= a.maxAttempts {
			return promo.Redemption{}, fmt.Errorf("promo %s: giving up after %d attempts: %w", p.Code(), attempt, err)
		}
	}
}

// ReleasePromo undoes the redemption of code by orderID, giving the use back.
// Releasing a redemption that does not exist is a no-op.
func (a *Allocator) ReleasePromo(ctx context.Context, code string, orderID int64) error {
	for attempt := 1; ; attempt++ {
		p, err := a.promos.Get(ctx, code)
		if err != nil {
			return err
		}
		version := p.Version()
		if !p.Release(orderID) {
			return nil
		}

		err = a.promos.CommitRelease(ctx, p.Code(), version, p.UsesLeft(), orderID)
		if err == nil {
			a.logger.Info("promo redemption released",
				zap.String("code", p.Code()),
				zap.Int64("order_id", orderID),
				zap.Int("uses_left", p.UsesLeft()))
			return nil
		}
		if !errors.Is(err, errs.ErrVersionConflict) {
			return err
		}
		metrics.VersionConflictsTotal.WithLabelValues("promo_codes").Inc()
		if attempt >= a.maxAttempts {
			return fmt.Errorf("promo %s: giving up after %d attempts: %w", p.Code(), attempt, err)
		}
	}
}

// SeedPromo stores code unless a code of that name already exists, in which
// case the stored uses and redemptions are kept. It reports whether code
// was written.
func (a *Allocator) SeedPromo(ctx context.Context, code *promo.PromoCode) (bool, error) {
	if err := code.Validate(); err != nil {
		return false, err
	}
	_, err := a.promos.Get(ctx, code.Code())
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, errs.ErrObjectNotFound):
		return false, err
	}
	if err = a.promos.Upsert(ctx, code); err != nil {
		return false, err
	}
	a.logger.Info("promo code seeded",
		zap.String("code", code.Code()),
		zap.Int("uses_left", code.UsesLeft()))
	return true, nil
}

// NextPrintJob allocates a print job sequence and stores the job record.
func (a *Allocator) NextPrintJob(ctx context.Context, orderIDs []int64) (printjob.PrintJob, error) {
	if err := printjob.ValidateOrderIDs(orderIDs); err != nil {
		return printjob.PrintJob{}, err
	}

	seq, err := a.Next(ctx, CounterPrintJobs)
	if err != nil {
		return printjob.PrintJob{}, err
	}
	job, err := printjob.New(seq, orderIDs, a.clock.Now())
	if err != nil {
		return printjob.PrintJob{}, err
	}
	if err = a.printJobs.Add(ctx, job); err != nil {
		return printjob.PrintJob{}, fmt.Errorf("store print job %d: %w", seq, err)
	}
	return job, nil
}
