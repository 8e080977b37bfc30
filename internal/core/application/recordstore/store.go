// Package recordstore is the only sanctioned mutation path for orders. Every
// change is merged into the primary document together with its audit log
// entries, then mirrored into the per-customer view.
//
// The primary commit and the log append are atomic. The mirror write happens
// afterwards and may fail on its own: mirror reads can be stale and are never
// authoritative.
package recordstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"buyback/internal/core/domain/model/kernel"
	"buyback/internal/core/domain/model/order"
	"buyback/internal/core/ports"
	"buyback/internal/pkg/errs"
	"buyback/internal/pkg/metrics"

	"go.uber.org/zap"
)

const defaultMaxAttempts = 25

// MutateFunc computes a patch from a fresh read of the order. It may run more
// than once when a commit loses an optimistic race, so it must not have side
// effects.
type MutateFunc func(o *order.Order) (order.Fields, []order.ActivityLogEntry, error)

// Store is the dual-write record store.
type Store struct {
	orders      ports.OrderDocumentStore
	mirror      ports.CustomerMirror
	clock       kernel.Clock
	logger      *zap.Logger
	maxAttempts int
}

// New creates a Store. mirror may be nil, in which case no mirror is kept.
func New(orders ports.OrderDocumentStore, mirror ports.CustomerMirror, clock kernel.Clock, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		orders:      orders,
		mirror:      mirror,
		clock:       clock,
		logger:      logger.With(zap.String("component", "record_store")),
		maxAttempts: defaultMaxAttempts,
	}
}

// Get reads an order from the primary store.
func (s *Store) Get(ctx context.Context, id int64) (*order.Order, error) {
	stored, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return order.FromDocument(stored.ID, stored.Version, stored.Document, stored.Log)
}

// Create writes a new order document. fields must carry a known status.
func (s *Store) Create(ctx context.Context, id int64, fields order.Fields, opts ...Option) (*order.Order, error) {
	o := collect(opts)

	raw, ok := fields[order.KeyStatus]
	if !ok || raw == nil {
		return nil, errs.NewValueIsRequiredError(order.KeyStatus)
	}
	status, err := order.ParseStatus(fmt.Sprint(raw))
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	stamp := kernel.FormatTimestamp(now)
	patch := fields.Clone()
	patch[order.KeyStatus] = string(status)
	patch[order.KeyCreatedAt] = stamp
	patch[order.KeyUpdatedAt] = stamp
	patch[order.KeyLastStatusUpdateAt] = stamp

	var entries []order.ActivityLogEntry
	if !o.suppressStatusLog {
		entries = append(entries, order.StatusChangedEntry(status))
	}
	entries = normalizeEntries(append(entries, o.entries...), now)

	doc := order.Merge(nil, patch)
	if err = s.orders.Create(ctx, id, doc, entries); err != nil {
		return nil, err
	}
	metrics.StatusTransitionsTotal.WithLabelValues(string(status)).Inc()

	s.mirrorWrite(ctx, id, doc)
	return s.reread(ctx, id, 1, doc, entries, nil)
}

// Apply merges fields into the order. It is Mutate with a constant patch.
func (s *Store) Apply(ctx context.Context, id int64, fields order.Fields, opts ...Option) (*order.Order, error) {
	return s.Mutate(ctx, id, func(*order.Order) (order.Fields, []order.ActivityLogEntry, error) {
		return fields, nil, nil
	}, opts...)
}

// Mutate reads the order, computes a patch with fn, and commits it.
//
// The server timestamp is merged into every patch. When the patch carries a
// status that differs from the stored spelling, lastStatusUpdateAt is stamped
// and a "Status changed to X" entry is synthesized unless suppressed. Set-once
// timestamps that already hold a value are dropped from the patch unless
// WithCorrection is given. On a version conflict the whole cycle is retried
// against a fresh read.
func (s *Store) Mutate(ctx context.Context, id int64, fn MutateFunc, opts ...Option) (*order.Order, error) {
	o := collect(opts)

	for attempt := 1; ; attempt++ {
		stored, err := s.orders.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		current, err := order.FromDocument(stored.ID, stored.Version, stored.Document, stored.Log)
		if err != nil {
			return nil, err
		}

		for _, check := range o.preconditions {
			if err = check(current); err != nil {
				return nil, err
			}
		}

		fields, fnEntries, err := fn(current)
		if err != nil {
			return nil, err
		}

		patch, entries, changedTo, err := s.prepare(current, fields, append(fnEntries, o.entries...), o)
		if err != nil {
			return nil, err
		}

		doc := order.Merge(stored.Document, patch)
		err = s.orders.Commit(ctx, id, stored.Version, doc, entries)
		if errors.Is(err, errs.ErrVersionConflict) {
			metrics.VersionConflictsTotal.WithLabelValues("orders").Inc()
			if attempt >= s.maxAttempts {
				return nil, fmt.Errorf("order %d: giving up after %d attempts: %w", id, attempt, err)
			}
			s.logger.Debug("order commit lost a race, retrying",
				zap.Int64("order_id", id), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, err
		}

		if changedTo != order.StatusUnknown {
			metrics.StatusTransitionsTotal.WithLabelValues(string(changedTo)).Inc()
		}

		s.mirrorWrite(ctx, id, doc)
		return s.reread(ctx, id, stored.Version+1, doc, entries, stored.Log)
	}
}

func (s *Store) prepare(
	current *order.Order,
	fields order.Fields,
	entries []order.ActivityLogEntry,
	o options,
) (order.Fields, []order.ActivityLogEntry, order.Status, error) {
	patch := fields.Clone()
	now := s.clock.Now()
	stamp := kernel.FormatTimestamp(now)
	changedTo := order.StatusUnknown

	var synthesized []order.ActivityLogEntry
	if raw, ok := patch[order.KeyStatus]; ok {
		var rawString string
		switch v := raw.(type) {
		case string:
			rawString = v
		case order.Status:
			rawString = string(v)
		default:
			return nil, nil, changedTo, errs.NewValueIsInvalidErrorWithCause(order.KeyStatus,
				fmt.Errorf("%v is not a string", raw))
		}
		status, err := order.ParseStatus(rawString)
		if err != nil {
			return nil, nil, changedTo, err
		}
		patch[order.KeyStatus] = string(status)

		if string(status) != current.RawStatus() {
			patch[order.KeyLastStatusUpdateAt] = stamp
			if status != current.Status() {
				changedTo = status
			}
			if !o.suppressStatusLog {
				synthesized = append(synthesized, order.StatusChangedEntry(status))
			}
		}
	}

	if !o.correction {
		for _, key := range order.SetOnceKeys {
			if _, ok := patch[key]; ok && current.HasValue(key) {
				delete(patch, key)
			}
		}
	}

	patch[order.KeyUpdatedAt] = stamp
	return patch, normalizeEntries(append(synthesized, entries...), now), changedTo, nil
}

// mirrorWrite copies doc into the customer's view. Failures are logged and
// counted but never returned.
func (s *Store) mirrorWrite(ctx context.Context, id int64, doc map[string]any) {
	if s.mirror == nil {
		return
	}
	customerID, _ := doc[order.KeyCustomerID].(string)
	if customerID == "" {
		return
	}
	if err := s.mirror.Put(ctx, customerID, id, doc); err != nil {
		metrics.MirrorWriteFailuresTotal.Inc()
		s.logger.Warn("customer mirror write failed",
			zap.Int64("order_id", id),
			zap.String("customer_id", customerID),
			zap.Error(err))
	}
}

// reread returns the committed order as the primary store now has it. If the
// read fails the committed state is rebuilt locally.
func (s *Store) reread(
	ctx context.Context,
	id, version int64,
	doc map[string]any,
	entries, previous []order.ActivityLogEntry,
) (*order.Order, error) {
	fresh, err := s.Get(ctx, id)
	if err == nil {
		return fresh, nil
	}
	s.logger.Warn("re-read after commit failed, returning committed state",
		zap.Int64("order_id", id), zap.Error(err))
	log := append(append([]order.ActivityLogEntry(nil), previous...), entries...)
	return order.FromDocument(id, version, doc, log)
}

func normalizeEntries(entries []order.ActivityLogEntry, at time.Time) []order.ActivityLogEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]order.ActivityLogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Normalize(at))
	}
	return out
}
