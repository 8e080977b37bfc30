package recordstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"buyback/internal/adapters/out/memory"
	"buyback/internal/core/application/recordstore"
	"buyback/internal/core/domain/model/order"
	"buyback/internal/core/ports"
	"buyback/internal/pkg/errs"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2024, 10, 2, 15, 4, 5, 0, time.UTC)

type MockOrderDocumentStore struct{ mock.Mock }

func (m *MockOrderDocumentStore) Get(ctx context.Context, id int64) (ports.StoredOrder, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ports.StoredOrder), args.Error(1)
}

func (m *MockOrderDocumentStore) Create(ctx context.Context, id int64, doc map[string]any, entries []order.ActivityLogEntry) error {
	args := m.Called(ctx, id, doc, entries)
	return args.Error(0)
}

func (m *MockOrderDocumentStore) Commit(
	ctx context.Context,
	id int64,
	expectedVersion int64,
	doc map[string]any,
	entries []order.ActivityLogEntry,
) error {
	args := m.Called(ctx, id, expectedVersion, doc, entries)
	return args.Error(0)
}

func (m *MockOrderDocumentStore) ListByStatuses(ctx context.Context, statuses []string, limit int) ([]int64, error) {
	args := m.Called(ctx, statuses, limit)
	return args.Get(0).([]int64), args.Error(1)
}

func newFixture(t *testing.T, doc map[string]any) (*recordstore.Store, *memory.OrderStore, *memory.CustomerMirror) {
	t.Helper()
	orders := memory.NewOrderStore()
	mirror := memory.NewCustomerMirror()
	if doc != nil {
		require.NoError(t, orders.Create(t.Context(), 100001, doc, nil))
	}
	clk := clock.NewMock()
	clk.Add(now.Sub(clk.Now()))
	return recordstore.New(orders, mirror, clk, zap.NewNop()), orders, mirror
}

func TestStore_Apply_StatusChangeIsLoggedAndStamped(t *testing.T) {
	store, _, mirror := newFixture(t, map[string]any{
		"status":     "kit_sent",
		"customerId": "cust-1",
	})

	got, err := store.Apply(t.Context(), 100001, order.Fields{"status": "kit_delivered", "kitDeliveredAt": "2024-10-02T15:00:00Z"})
	require.NoError(t, err)

	assert.Equal(t, order.KitDelivered, got.Status())
	assert.Equal(t, int64(2), got.Version())
	assert.Equal(t, "2024-10-02T15:04:05Z", got.Text(order.KeyUpdatedAt))
	assert.Equal(t, "2024-10-02T15:04:05Z", got.Text(order.KeyLastStatusUpdateAt))

	log := got.ActivityLog()
	require.Len(t, log, 1)
	assert.Equal(t, order.LogStatus, log[0].Type)
	assert.Equal(t, "Status changed to kit_delivered", log[0].Message)
	assert.Equal(t, now, log[0].At)

	mirrored, err := mirror.List(t.Context(), "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "kit_delivered", mirrored[100001]["status"])
}

func TestStore_Apply_SameStatusAddsNoStatusEntry(t *testing.T) {
	store, _, _ := newFixture(t, map[string]any{"status": "kit_sent"})

	got, err := store.Apply(t.Context(), 100001, order.Fields{"status": "kit_sent", "note": "x"})
	require.NoError(t, err)

	assert.Empty(t, got.ActivityLog())
	assert.False(t, got.HasValue(order.KeyLastStatusUpdateAt))
	assert.Equal(t, "2024-10-02T15:04:05Z", got.Text(order.KeyUpdatedAt))
}

func TestStore_Apply_SuppressedStatusLogKeepsCallerEntries(t *testing.T) {
	store, _, _ := newFixture(t, map[string]any{"status": "kit_sent"})

	entry := order.NewActivityLogEntry(order.LogTracking, "Tracking moved kit to kit_delivered", nil)
	got, err := store.Apply(t.Context(), 100001, order.Fields{"status": "kit_delivered"},
		recordstore.SuppressStatusLog(), recordstore.WithLogEntries(entry))
	require.NoError(t, err)

	log := got.ActivityLog()
	require.Len(t, log, 1)
	assert.Equal(t, entry.ID, log[0].ID)
	assert.Equal(t, order.LogTracking, log[0].Type)
}

func TestStore_Apply_LegacySpellingIsCanonicalizedOnWrite(t *testing.T) {
	store, _, _ := newFixture(t, map[string]any{"status": "kit_delivered"})

	got, err := store.Apply(t.Context(), 100001, order.Fields{"status": "kit_on_the_way_to_us"})
	require.NoError(t, err)

	assert.Equal(t, "phone_on_the_way", got.RawStatus())
}

func TestStore_Apply_UnknownStatusIsRejected(t *testing.T) {
	store, orders, _ := newFixture(t, map[string]any{"status": "kit_sent"})

	_, err := store.Apply(t.Context(), 100001, order.Fields{"status": "teleported"})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))

	stored, err := orders.Get(t.Context(), 100001)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
}

func TestStore_Apply_SetOnceTimestamps(t *testing.T) {
	store, _, _ := newFixture(t, map[string]any{
		"status":     "kit_sent",
		"kitSentAt":  "2024-09-30T10:00:00Z",
		"receivedAt": "2024-09-30T11:00:00Z",
	})

	got, err := store.Apply(t.Context(), 100001, order.Fields{
		"kitSentAt":      "2024-10-02T15:00:00Z",
		"kitDeliveredAt": "2024-10-02T15:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-09-30T10:00:00Z", got.Text(order.KeyKitSentAt))
	assert.Equal(t, "2024-10-02T15:00:00Z", got.Text(order.KeyKitDeliveredAt))

	got, err = store.Apply(t.Context(), 100001, order.Fields{
		"kitSentAt":  "2024-10-01T08:00:00Z",
		"receivedAt": nil,
	}, recordstore.WithCorrection())
	require.NoError(t, err)
	assert.Equal(t, "2024-10-01T08:00:00Z", got.Text(order.KeyKitSentAt))
	assert.False(t, got.HasValue(order.KeyReceivedAt))
}

func TestStore_Apply_PreconditionFailureWritesNothing(t *testing.T) {
	store, orders, _ := newFixture(t, map[string]any{"status": "completed"})
	conflict := errs.NewStateConflictError("order", 100001, "terminal")

	_, err := store.Apply(t.Context(), 100001, order.Fields{"status": "received"},
		recordstore.WithPrecondition(func(o *order.Order) error {
			if o.Status().IsTerminal() {
				return conflict
			}
			return nil
		}))
	require.ErrorIs(t, err, errs.ErrStateConflict)

	stored, err := orders.Get(t.Context(), 100001)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
}

func TestStore_Apply_MirrorFailureDoesNotFailTheRequest(t *testing.T) {
	store, orders, mirror := newFixture(t, map[string]any{"status": "kit_sent", "customerId": "cust-1"})
	mirror.FailWith(assert.AnError)

	got, err := store.Apply(t.Context(), 100001, order.Fields{"status": "kit_delivered"})
	require.NoError(t, err)
	assert.Equal(t, order.KitDelivered, got.Status())

	stored, err := orders.Get(t.Context(), 100001)
	require.NoError(t, err)
	assert.Equal(t, "kit_delivered", stored.Document["status"])
}

func TestStore_Apply_RetriesOnVersionConflict(t *testing.T) {
	ctx := t.Context()
	docs := &MockOrderDocumentStore{}
	clk := clock.NewMock()
	clk.Add(now.Sub(clk.Now()))
	store := recordstore.New(docs, nil, clk, zap.NewNop())

	v1 := ports.StoredOrder{ID: 100001, Version: 1, Document: map[string]any{"status": "kit_sent"}}
	v2 := ports.StoredOrder{ID: 100001, Version: 2, Document: map[string]any{"status": "kit_sent", "note": "concurrent"}}
	v3 := ports.StoredOrder{ID: 100001, Version: 3, Document: map[string]any{"status": "kit_delivered", "note": "concurrent"}}

	mock.InOrder(
		docs.On("Get", ctx, int64(100001)).Return(v1, nil).Once(),
		docs.On("Commit", ctx, int64(100001), int64(1), mock.Anything, mock.Anything).
			Return(errs.NewVersionConflictError("order", 100001, 1)).Once(),
		docs.On("Get", ctx, int64(100001)).Return(v2, nil).Once(),
		docs.On("Commit", ctx, int64(100001), int64(2), mock.MatchedBy(func(doc map[string]any) bool {
			return doc["note"] == "concurrent" && doc["status"] == "kit_delivered"
		}), mock.Anything).Return(nil).Once(),
		docs.On("Get", ctx, int64(100001)).Return(v3, nil).Once(),
	)

	got, err := store.Apply(ctx, 100001, order.Fields{"status": "kit_delivered"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Version())
	docs.AssertExpectations(t)
}

func TestStore_Apply_ConcurrentWritersBothLand(t *testing.T) {
	store, orders, _ := newFixture(t, map[string]any{"status": "kit_sent"})

	var wg sync.WaitGroup
	for _, key := range []string{"printedBy", "checkedBy"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Apply(t.Context(), 100001, order.Fields{key: "ops"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := orders.Get(t.Context(), 100001)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.Version)
	assert.Equal(t, "ops", stored.Document["printedBy"])
	assert.Equal(t, "ops", stored.Document["checkedBy"])
}

func TestStore_Create(t *testing.T) {
	store, _, mirror := newFixture(t, nil)

	got, err := store.Create(t.Context(), 100002, order.Fields{"status": "order_pending", "customerId": "cust-9"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), got.Version())
	assert.Equal(t, order.OrderPending, got.Status())
	assert.Equal(t, "2024-10-02T15:04:05Z", got.Text(order.KeyCreatedAt))
	require.Len(t, got.ActivityLog(), 1)

	mirrored, err := mirror.List(t.Context(), "cust-9")
	require.NoError(t, err)
	assert.Contains(t, mirrored, int64(100002))

	_, err = store.Create(t.Context(), 100003, order.Fields{"customerId": "cust-9"})
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}
