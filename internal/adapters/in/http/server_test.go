package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "buyback/internal/adapters/in/http"
	"buyback/internal/adapters/out/memory"
	"buyback/internal/core/application/recordstore"
	"buyback/internal/core/application/sequence"
	"buyback/internal/core/application/usecases/commands"
	"buyback/internal/core/application/usecases/queries"
	"buyback/internal/core/domain/model/promo"
	"buyback/internal/core/domain/model/tracking"
	"buyback/internal/core/domain/services"
	"buyback/internal/core/ports"
	"buyback/internal/pkg/errs"

	"github.com/facebookgo/clock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockTrackingProvider struct {
	mock.Mock
}

func (m *MockTrackingProvider) Name() string {
	return "primary"
}

func (m *MockTrackingProvider) Track(ctx context.Context, req ports.TrackRequest) (tracking.Response, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(tracking.Response), args.Error(1)
}

type fixture struct {
	echo      *echo.Echo
	orders    *memory.OrderStore
	promos    *memory.PromoStore
	mirror    *memory.CustomerMirror
	printJobs *memory.PrintJobRepository
	tracker   *MockTrackingProvider
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	clk := clock.NewMock()
	clk.Add(time.Date(2024, 10, 2, 15, 4, 5, 0, time.UTC).Sub(clk.Now()))
	log := zap.NewNop()

	f := fixture{
		orders:    memory.NewOrderStore(),
		promos:    memory.NewPromoStore(),
		mirror:    memory.NewCustomerMirror(),
		printJobs: memory.NewPrintJobRepository(),
		tracker:   new(MockTrackingProvider),
	}
	store := recordstore.New(f.orders, f.mirror, clk, log)
	allocator := sequence.NewAllocator(memory.NewCounterStore(), f.promos, f.printJobs, clk, log)

	server := httpadapter.NewServer(httpadapter.CommandHandlers{
		CreateOrder:       commands.NewCreateOrderCommandHandler(store, allocator, log),
		UpdateOrderStatus: commands.NewUpdateOrderStatusCommandHandler(store, log),
		GenerateLabel:     commands.NewGenerateLabelCommandHandler(store, allocator, nil, nil, clk, log),
		VoidLabels:        commands.NewVoidLabelsCommandHandler(store, nil, clk, log),
		RefreshTracking: commands.NewRefreshTrackingCommandHandler(store, services.NewDirectionResolver("usps"),
			services.NewTransitionEngine(), f.tracker, nil, memory.NewNotifier(log), clk, log),
		CreatePrintJob: commands.NewCreatePrintJobCommandHandler(store, allocator, log),
	}, httpadapter.QueryHandlers{
		GetOrder:          queries.NewGetOrderQueryHandler(f.orders),
		GetPromoCode:      queries.NewGetPromoCodeQueryHandler(f.promos),
		GetCustomerOrders: queries.NewGetCustomerOrdersQueryHandler(f.mirror),
		GetPrintJob:       queries.NewGetPrintJobQueryHandler(f.printJobs),
		ListPrintJobs:     queries.NewListPrintJobsQueryHandler(f.printJobs),
	}, log)

	e, err := server.NewEcho()
	require.NoError(t, err)
	f.echo = e
	return f
}

func (f fixture) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)

	var decoded map[string]any
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec.Code, decoded
}

const createOrderBody = `{
	"customerId": "cust-1",
	"shippingPreference": "Shipping Kit Requested",
	"device": {"model": "iPhone 14", "storage": "128GB", "quotedPrice": 310},
	"address": {"name": "Ann Lee", "street1": "1 Main St", "city": "Austin", "state": "TX", "postalCode": "73301"}
}`

func TestHealth(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())
}

func TestCreateOrder_ThenGet(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodPost, "/orders", createOrderBody)
	require.Equal(t, http.StatusCreated, code, body)
	created := body["order"].(map[string]any)
	assert.Equal(t, float64(100001), created["id"])
	assert.Equal(t, "order_pending", created["status"])

	code, body = f.do(t, http.MethodGet, "/orders/100001", "")
	require.Equal(t, http.StatusOK, code)
	got := body["order"].(map[string]any)
	assert.Equal(t, "cust-1", got["document"].(map[string]any)["customerId"])
	assert.NotEmpty(t, got["activityLog"])

	code, body = f.do(t, http.MethodGet, "/customers/cust-1/orders", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["orders"], 1)
}

func TestCreateOrder_InvalidBody(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodPost, "/orders", `{"shippingPreference": "Carrier Pigeon"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", body["code"])
}

func TestCreateOrder_ExhaustedPromo(t *testing.T) {
	f := newFixture(t)
	code, err := promo.NewPromoCode("SPENT", 0, 10, false)
	require.NoError(t, err)
	require.NoError(t, f.promos.Upsert(t.Context(), code))

	status, body := f.do(t, http.MethodPost, "/orders",
		strings.Replace(createOrderBody, `"customerId"`, `"promoCode": "spent", "customerId"`, 1))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "promo_exhausted", body["code"])
}

func TestGetOrder_Errors(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/orders/424242", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", body["code"])

	code, body = f.do(t, http.MethodGet, "/orders/abc", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", body["code"])
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orders.Create(t.Context(), 100001, map[string]any{"status": "received", "customerId": "cust-1"}, nil))

	code, body := f.do(t, http.MethodPost, "/orders/100001/status", `{"status": "teleported"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", body["code"])

	code, body = f.do(t, http.MethodPost, "/orders/100001/status", `{"status": "complete", "note": "paid out"}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "completed", body["order"].(map[string]any)["status"])

	code, body = f.do(t, http.MethodPost, "/orders/100001/status", `{"status": "imei_checked"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "state_conflict", body["code"])
}

func TestRefreshTracking(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orders.Create(t.Context(), 100001, map[string]any{
		"status":                 "kit_sent",
		"shippingPreference":     "Shipping Kit Requested",
		"outboundTrackingNumber": "9400OUT",
	}, nil))
	outbound := mock.MatchedBy(func(req ports.TrackRequest) bool { return req.TrackingNumber == "9400OUT" })
	f.tracker.On("Track", mock.Anything, outbound).
		Return(tracking.ParseResponse(map[string]any{"status_code": "DE"}), nil).Once()

	code, body := f.do(t, http.MethodPost, "/refresh-tracking", `{"orderId": 100001}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "kit_delivered", body["status"])
	assert.Equal(t, "kit_sent", body["previousStatus"])
	assert.Equal(t, true, body["changed"])
	assert.Equal(t, "outbound", body["direction"])
	assert.Equal(t, true, body["delivered"])
	f.tracker.AssertExpectations(t)
}

func TestRefreshTracking_ProviderFailureLeavesOrder(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orders.Create(t.Context(), 100001, map[string]any{
		"status":                 "kit_sent",
		"shippingPreference":     "Shipping Kit Requested",
		"outboundTrackingNumber": "9400OUT",
	}, nil))
	f.tracker.On("Track", mock.Anything, mock.Anything).
		Return(tracking.Response{}, errs.NewProviderTransientError("primary", "track", 503, "down", nil)).Once()

	code, body := f.do(t, http.MethodPost, "/refresh-tracking", `{"orderId": 100001}`)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "provider_unavailable", body["code"])
	assert.Equal(t, float64(100001), body["orderId"])
	assert.Equal(t, "kit_sent", body["status"])

	stored, err := f.orders.Get(t.Context(), 100001)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
}

func TestRefreshTracking_NoTrackingNumber(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orders.Create(t.Context(), 100001, map[string]any{"status": "order_pending"}, nil))

	code, body := f.do(t, http.MethodPost, "/refresh-tracking", `{"orderId": 100001}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "no_tracking_number", body["code"])
	assert.Equal(t, "order_pending", body["status"])
}

func TestGenerateLabel_WithoutProvider(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orders.Create(t.Context(), 100001, map[string]any{"status": "order_pending"}, nil))

	code, body := f.do(t, http.MethodPost, "/orders/100001/labels", `{"slot": "outbound"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "credentials_missing", body["code"])
}

func TestVoidLabel_RequiresLabels(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodPost, "/orders/100001/void-label", `{"labels": []}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", body["code"])
}

func TestGetPromoCode(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodGet, "/promo-codes/NOPE", "")
	assert.Equal(t, http.StatusNotFound, code)

	p, err := promo.NewPromoCode("SPRING25", 3, 25, true)
	require.NoError(t, err)
	require.NoError(t, f.promos.Upsert(t.Context(), p))

	code, body := f.do(t, http.MethodGet, "/promo-codes/spring25", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "SPRING25", body["code"])
	assert.Equal(t, float64(3), body["usesLeft"])
	assert.Equal(t, true, body["eligible"])
}

func TestCreatePrintJob(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orders.Create(t.Context(), 100001, map[string]any{"status": "kit_needs_printing"}, nil))
	require.NoError(t, f.orders.Create(t.Context(), 100002, map[string]any{"status": "order_pending"}, nil))

	code, body := f.do(t, http.MethodPost, "/print-jobs", `{"orderIds": [100001, 100002]}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "state_conflict", body["code"])

	code, body = f.do(t, http.MethodPost, "/print-jobs", `{"orderIds": [100001]}`)
	require.Equal(t, http.StatusCreated, code, body)
	job := body["job"].(map[string]any)
	assert.Equal(t, "print-job-1", job["folder"])
	assert.Nil(t, body["warnings"])

	stored, err := f.orders.Get(t.Context(), 100001)
	require.NoError(t, err)
	assert.Equal(t, "kit_sent", stored.Document["status"])
}

func TestPrintJobs_GetAndList(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orders.Create(t.Context(), 100001, map[string]any{"status": "kit_needs_printing"}, nil))

	code, body := f.do(t, http.MethodGet, "/print-jobs", "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Empty(t, body["jobs"])

	code, body = f.do(t, http.MethodPost, "/print-jobs", `{"orderIds": [100001]}`)
	require.Equal(t, http.StatusCreated, code, body)
	id := body["job"].(map[string]any)["id"].(string)

	code, body = f.do(t, http.MethodGet, "/print-jobs/"+id, "")
	require.Equal(t, http.StatusOK, code, body)
	job := body["job"].(map[string]any)
	assert.Equal(t, "print-job-1", job["folder"])
	assert.Equal(t, []any{float64(100001)}, job["orderIds"])

	code, body = f.do(t, http.MethodGet, "/print-jobs?since=2024-10-02T00:00:00Z", "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Len(t, body["jobs"], 1)

	code, body = f.do(t, http.MethodGet, "/print-jobs?since=2024-10-03T00:00:00Z", "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Empty(t, body["jobs"])

	code, body = f.do(t, http.MethodGet, "/print-jobs?since=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", body["code"])

	code, body = f.do(t, http.MethodGet, "/print-jobs/unknown", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", body["code"])
}
