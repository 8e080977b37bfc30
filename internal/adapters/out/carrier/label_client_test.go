package carrier_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"buyback/internal/adapters/out/carrier"
	"buyback/internal/core/domain/model/kernel"
	"buyback/internal/core/ports"
	"buyback/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLabelClient(t *testing.T, handler http.HandlerFunc) *carrier.LabelClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return carrier.NewLabelClient(carrier.Config{
		Name:       "labels",
		BaseURL:    srv.URL,
		APIKey:     "secret",
		KeySetting: "LABEL_PROVIDER_API_KEY",
	}, srv.Client())
}

func address(t *testing.T, name string) kernel.Address {
	t.Helper()
	a, err := kernel.NewAddress(name, "1 Main St", "", "Austin", "TX", "78701", "US")
	require.NoError(t, err)
	return a
}

func TestLabelClient_CreateLabel(t *testing.T) {
	client := newLabelClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/labels", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		shipment := body["shipment"].(map[string]any)
		assert.Equal(t, "usps_priority_mail", shipment["service_code"])
		assert.Equal(t, "Warehouse", shipment["ship_to"].(map[string]any)["name"])

		_, _ = w.Write([]byte(`{"label_id":"se-1","tracking_number":"9400","label_download":{"pdf":"https://labels/se-1.pdf"}}`))
	})

	res, err := client.CreateLabel(t.Context(), ports.LabelRequest{
		FromAddress: address(t, "Customer"),
		ToAddress:   address(t, "Warehouse"),
		CarrierCode: "usps",
		ServiceCode: "usps_priority_mail",
		WeightOz:    8,
	})
	require.NoError(t, err)
	assert.Equal(t, "se-1", res.LabelID)
	assert.Equal(t, "9400", res.TrackingNumber)
	assert.Equal(t, "https://labels/se-1.pdf", res.DownloadURL)
	assert.Equal(t, "usps", res.CarrierCode)
	assert.Equal(t, "usps_priority_mail", res.ServiceCode)
}

func TestLabelClient_CreateLabel_IncompleteAnswerFails(t *testing.T) {
	client := newLabelClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"label_id":"se-1"}`))
	})

	_, err := client.CreateLabel(t.Context(), ports.LabelRequest{
		FromAddress: address(t, "Customer"),
		ToAddress:   address(t, "Warehouse"),
	})
	assert.ErrorIs(t, err, errs.ErrProviderFailed)
}

func TestLabelClient_VoidLabel(t *testing.T) {
	client := newLabelClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		if r.URL.Path == "/v1/labels/se-1/void" {
			_, _ = w.Write([]byte(`{"approved":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"approved":false,"message":"label already used"}`))
	})

	require.NoError(t, client.VoidLabel(t.Context(), "se-1"))

	err := client.VoidLabel(t.Context(), "se-2")
	assert.ErrorIs(t, err, errs.ErrProviderFailed)
	assert.ErrorContains(t, err, "label already used")
}

func TestLabelClient_VoidLabel_ServerErrorIsTransient(t *testing.T) {
	client := newLabelClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := client.VoidLabel(t.Context(), "se-1")
	assert.ErrorIs(t, err, errs.ErrProviderTransient)
}
