package commands_test

import (
	"context"
	"testing"
	"time"

	"buyback/internal/adapters/out/memory"
	"buyback/internal/core/application/recordstore"
	"buyback/internal/core/application/sequence"
	"buyback/internal/core/domain/model/kernel"
	"buyback/internal/core/domain/model/tracking"
	"buyback/internal/core/ports"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var checkTime = time.Date(2024, 10, 2, 15, 4, 5, 0, time.UTC)

type MockTrackingProvider struct {
	mock.Mock
	name string
}

func (m *MockTrackingProvider) Name() string { return m.name }

func (m *MockTrackingProvider) Track(ctx context.Context, req ports.TrackRequest) (tracking.Response, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(tracking.Response), args.Error(1)
}

type MockLabelProvider struct{ mock.Mock }

func (m *MockLabelProvider) CreateLabel(ctx context.Context, req ports.LabelRequest) (ports.LabelResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.LabelResult), args.Error(1)
}

func (m *MockLabelProvider) VoidLabel(ctx context.Context, labelID string) error {
	args := m.Called(ctx, labelID)
	return args.Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, n ports.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// env is a record store and allocator over the memory adapters.
type env struct {
	orders    *memory.OrderStore
	mirror    *memory.CustomerMirror
	promos    *memory.PromoStore
	printJobs *memory.PrintJobRepository
	store     *recordstore.Store
	allocator *sequence.Allocator
	clock     *clock.Mock
}

func newEnv(t *testing.T) env {
	t.Helper()
	clk := clock.NewMock()
	clk.Add(checkTime.Sub(clk.Now()))
	e := env{
		orders:    memory.NewOrderStore(),
		mirror:    memory.NewCustomerMirror(),
		promos:    memory.NewPromoStore(),
		printJobs: memory.NewPrintJobRepository(),
		clock:     clk,
	}
	e.store = recordstore.New(e.orders, e.mirror, clk, zap.NewNop())
	e.allocator = sequence.NewAllocator(memory.NewCounterStore(), e.promos, e.printJobs, clk, zap.NewNop())
	return e
}

func (e env) seed(t *testing.T, id int64, doc map[string]any) {
	t.Helper()
	require.NoError(t, e.orders.Create(t.Context(), id, doc, nil))
}

func (e env) doc(t *testing.T, id int64) ports.StoredOrder {
	t.Helper()
	stored, err := e.orders.Get(t.Context(), id)
	require.NoError(t, err)
	return stored
}

func customerAddress(t *testing.T) kernel.Address {
	t.Helper()
	addr, err := kernel.NewAddress("Ann Lee", "1 Main St", "", "Austin", "TX", "73301", "US")
	require.NoError(t, err)
	return addr
}
