package memory

import (
	"context"
	"sync"

	"buyback/internal/core/ports"
	"buyback/internal/pkg/errs"
)

var _ ports.CounterStore = &CounterStore{}

type counterRow struct {
	value   int64
	version int64
}

type CounterStore struct {
	mu   sync.Mutex
	rows map[string]counterRow
}

func NewCounterStore() *CounterStore {
	return &CounterStore{rows: make(map[string]counterRow)}
}

func (s *CounterStore) Read(ctx context.Context, key string) (ports.CounterState, error) {
	if err := ctx.Err(); err != nil {
		return ports.CounterState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[key]
	if !ok {
		return ports.CounterState{}, nil
	}
	value := row.value
	return ports.CounterState{Value: &value, Version: row.version}, nil
}

func (s *CounterStore) Commit(ctx context.Context, key string, expectedVersion int64, value int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.rows[key]
	if row.version != expectedVersion {
		return errs.NewVersionConflictError("counter", key, expectedVersion)
	}
	s.rows[key] = counterRow{value: value, version: expectedVersion + 1}
	return nil
}
