package memory

import (
	"context"
	"sync"

	"buyback/internal/core/domain/model/order"
	"buyback/internal/core/ports"
)

var _ ports.CustomerMirror = &CustomerMirror{}

// CustomerMirror is the per-customer view kept in memory. FailWith makes
// every subsequent Put fail, which tests use to exercise the best-effort path.
type CustomerMirror struct {
	mu      sync.RWMutex
	byOwner map[string]map[int64]map[string]any
	failErr error
}

func NewCustomerMirror() *CustomerMirror {
	return &CustomerMirror{byOwner: make(map[string]map[int64]map[string]any)}
}

func (m *CustomerMirror) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

func (m *CustomerMirror) Put(ctx context.Context, customerID string, orderID int64, doc map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failErr != nil {
		return m.failErr
	}
	orders, ok := m.byOwner[customerID]
	if !ok {
		orders = make(map[int64]map[string]any)
		m.byOwner[customerID] = orders
	}
	orders[orderID] = order.CloneDocument(doc)
	return nil
}

func (m *CustomerMirror) List(ctx context.Context, customerID string) (map[int64]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[int64]map[string]any, len(m.byOwner[customerID]))
	for id, doc := range m.byOwner[customerID] {
		out[id] = order.CloneDocument(doc)
	}
	return out, nil
}
