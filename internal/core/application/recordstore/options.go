package recordstore

import "buyback/internal/core/domain/model/order"

type options struct {
	entries           []order.ActivityLogEntry
	suppressStatusLog bool
	preconditions     []func(*order.Order) error
	correction        bool
}

// Option tunes a single Apply, Mutate or Create call.
type Option func(*options)

// WithLogEntries appends caller-supplied entries to the activity log.
func WithLogEntries(entries ...order.ActivityLogEntry) Option {
	return func(o *options) {
		o.entries = append(o.entries, entries...)
	}
}

// SuppressStatusLog skips the synthesized "Status changed to X" entry.
func SuppressStatusLog() Option {
	return func(o *options) {
		o.suppressStatusLog = true
	}
}

// WithPrecondition is checked against every fresh read, including the reads
// of optimistic retries. A failing precondition aborts without writing.
func WithPrecondition(check func(*order.Order) error) Option {
	return func(o *options) {
		o.preconditions = append(o.preconditions, check)
	}
}

// WithCorrection allows set-once timestamps to be overwritten or cleared.
func WithCorrection() Option {
	return func(o *options) {
		o.correction = true
	}
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
