// Package ports defines the contracts between the buyback core and its
// infrastructure: document stores, counters, mirrors and carrier providers.
package ports

import (
	"context"

	"buyback/internal/core/domain/model/order"
)

// StoredOrder is an order document as read from the primary store.
type StoredOrder struct {
	ID       int64
	Version  int64
	Document map[string]any
	Log      []order.ActivityLogEntry
}

// OrderDocumentStore is the primary, schemaless order record store.
//
// Commit replaces the document and appends log entries in one atomic step,
// provided the stored version still equals expectedVersion. On a lost race it
// returns errs.ErrVersionConflict and changes nothing. The log is append-only:
// implementations never edit or remove entries.
type OrderDocumentStore interface {
	// Get returns errs.ErrObjectNotFound for an unknown id.
	Get(ctx context.Context, id int64) (StoredOrder, error)

	// Create stores a new document at version 1.
	Create(ctx context.Context, id int64, doc map[string]any, entries []order.ActivityLogEntry) error

	Commit(ctx context.Context, id int64, expectedVersion int64, doc map[string]any, entries []order.ActivityLogEntry) error

	// ListByStatuses returns ids of orders whose stored status is one of
	// the given spellings, ascending.
	ListByStatuses(ctx context.Context, statuses []string, limit int) ([]int64, error)
}

// CustomerMirror is the denormalized per-customer copy of order documents.
// Writes are best effort and may lag the primary store.
type CustomerMirror interface {
	Put(ctx context.Context, customerID string, orderID int64, doc map[string]any) error
	List(ctx context.Context, customerID string) (map[int64]map[string]any, error)
}
