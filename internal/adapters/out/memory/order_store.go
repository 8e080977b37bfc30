package memory

import (
	"context"
	"slices"
	"sync"

	"buyback/internal/core/domain/model/order"
	"buyback/internal/core/ports"
	"buyback/internal/pkg/errs"
)

var _ ports.OrderDocumentStore = &OrderStore{}

type orderRow struct {
	version int64
	doc     map[string]any
	log     []order.ActivityLogEntry
}

// OrderStore keeps order documents in a map guarded by a mutex. Documents are
// deep-copied on the way in and out.
type OrderStore struct {
	mu   sync.RWMutex
	rows map[int64]*orderRow
}

func NewOrderStore() *OrderStore {
	return &OrderStore{rows: make(map[int64]*orderRow)}
}

func (s *OrderStore) Get(ctx context.Context, id int64) (ports.StoredOrder, error) {
	if err := ctx.Err(); err != nil {
		return ports.StoredOrder{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[id]
	if !ok {
		return ports.StoredOrder{}, errs.NewObjectNotFoundError("orderID", id)
	}
	return ports.StoredOrder{
		ID:       id,
		Version:  row.version,
		Document: order.CloneDocument(row.doc),
		Log:      slices.Clone(row.log),
	}, nil
}

func (s *OrderStore) Create(ctx context.Context, id int64, doc map[string]any, entries []order.ActivityLogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rows[id]; exists {
		return errs.NewVersionConflictError("order", id, 0)
	}
	s.rows[id] = &orderRow{
		version: 1,
		doc:     order.CloneDocument(doc),
		log:     slices.Clone(entries),
	}
	return nil
}

func (s *OrderStore) Commit(
	ctx context.Context,
	id int64,
	expectedVersion int64,
	doc map[string]any,
	entries []order.ActivityLogEntry,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return errs.NewObjectNotFoundError("orderID", id)
	}
	if row.version != expectedVersion {
		return errs.NewVersionConflictError("order", id, expectedVersion)
	}
	row.version++
	row.doc = order.CloneDocument(doc)
	row.log = append(row.log, entries...)
	return nil
}

func (s *OrderStore) ListByStatuses(ctx context.Context, statuses []string, limit int) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []int64
	for id, row := range s.rows {
		status, _ := row.doc[order.KeyStatus].(string)
		if slices.Contains(statuses, status) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}
