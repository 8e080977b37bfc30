package tracking_test

import (
	"testing"

	"buyback/internal/core/domain/model/tracking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_DeliveredCodeIgnoresDescriptionCasing(t *testing.T) {
	descriptions := []string{"", "delivered", "DELIVERED", "Left at front door", "iN TrAnSiT", "Accepted"}

	for _, desc := range descriptions {
		t.Run(desc, func(t *testing.T) {
			got := tracking.Classify(tracking.Response{StatusCode: "DE", StatusDescription: desc})

			assert.True(t, got.Delivered)
		})
	}
}

func TestClassify_DeliveredByDescription(t *testing.T) {
	got := tracking.Classify(tracking.Response{StatusDescription: "Your item was DELIVERED in or at the mailbox"})

	assert.True(t, got.Delivered)
	assert.False(t, got.InTransit)
	assert.Equal(t, tracking.Delivered, got.Canonical)
}

func TestClassify_AcceptedScan(t *testing.T) {
	t.Run("without_eta_is_not_transit", func(t *testing.T) {
		descriptions := []string{"", "Shipment accepted", "In transit", "Arrived at facility", "Out for delivery"}
		for _, desc := range descriptions {
			got := tracking.Classify(tracking.Response{StatusCode: "AC", StatusDescription: desc})

			assert.False(t, got.InTransit, desc)
			assert.True(t, got.AcceptedWithoutETA, desc)
			assert.True(t, got.Moving(), desc)
		}
	})

	t.Run("with_eta_signals_transit", func(t *testing.T) {
		got := tracking.Classify(tracking.Response{StatusCode: "AC", EstimatedDelivery: "2024-10-04"})

		assert.True(t, got.InTransit)
		assert.False(t, got.AcceptedWithoutETA)
	})

	t.Run("shipment_accepted_code_without_eta", func(t *testing.T) {
		got := tracking.Classify(tracking.Response{StatusCode: "shipment_accepted"})

		assert.True(t, got.AcceptedWithoutETA)
		assert.False(t, got.InTransit)
	})

	t.Run("acceptance_phrase_without_eta_is_weak_movement", func(t *testing.T) {
		got := tracking.Classify(tracking.Response{StatusDescription: "USPS in possession of item, acceptance pending"})

		assert.False(t, got.InTransit)
		assert.True(t, got.AcceptedWithoutETA)
	})

	t.Run("acceptance_phrase_with_eta_is_transit", func(t *testing.T) {
		got := tracking.Classify(tracking.Response{
			StatusDescription: "Accepted at USPS Origin Facility",
			EstimatedDelivery: "2024-10-04",
		})

		assert.True(t, got.InTransit)
		assert.False(t, got.AcceptedWithoutETA)
	})
}

func TestClassify_TransitSignals(t *testing.T) {
	tests := []struct {
		name string
		resp tracking.Response
		want bool
	}{
		{"transit code", tracking.Response{StatusCode: "IT"}, true},
		{"lower case transit code", tracking.Response{StatusCode: "of"}, true},
		{"keyword", tracking.Response{StatusDescription: "In transit to destination facility"}, true},
		{"out for delivery", tracking.Response{StatusDescription: "Out for Delivery"}, true},
		{"keyword with delivered", tracking.Response{StatusDescription: "Departed, delivered soon"}, false},
		{"label only", tracking.Response{StatusCode: "LC", StatusDescription: "Shipping label created"}, false},
		{"empty", tracking.Response{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tracking.Classify(tt.resp).InTransit)
		})
	}
}

func TestClassify_IsPure(t *testing.T) {
	resp := tracking.Response{
		StatusCode:        "IT",
		StatusDescription: "Inbound in transit",
		EstimatedDelivery: "2024-10-04",
		LastUpdated:       "2024-10-01T10:00:00Z",
	}

	first := tracking.Classify(resp)
	second := tracking.Classify(resp)

	assert.Equal(t, first, second)
	assert.Equal(t, "2024-10-04", first.EstimatedDelivery)
	assert.Equal(t, tracking.InTransit, first.Canonical)
}

func TestParseResponse_FieldAliases(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want tracking.Response
	}{
		{
			name: "snake case provider",
			raw: map[string]any{
				"status_code":             "IT",
				"status_description":      "In transit",
				"estimated_delivery_date": "2024-10-04",
				"updated_at":              "2024-10-01T10:00:00Z",
			},
			want: tracking.Response{
				StatusCode:        "IT",
				StatusDescription: "In transit",
				EstimatedDelivery: "2024-10-04",
				LastUpdated:       "2024-10-01T10:00:00Z",
			},
		},
		{
			name: "camel case provider",
			raw: map[string]any{
				"statusCode":        "DE",
				"statusDescription": "Delivered",
				"estimatedDelivery": "2024-10-04",
				"lastUpdated":       "2024-10-03",
			},
			want: tracking.Response{
				StatusCode:        "DE",
				StatusDescription: "Delivered",
				EstimatedDelivery: "2024-10-04",
				LastUpdated:       "2024-10-03",
			},
		},
		{
			name: "nested tracking status",
			raw: map[string]any{
				"eta": "2024-10-05",
				"tracking_status": map[string]any{
					"status":         "TRANSIT",
					"status_details": "Departed facility",
					"status_date":    "2024-10-02T08:00:00Z",
				},
			},
			want: tracking.Response{
				StatusCode:        "TRANSIT",
				StatusDescription: "Departed facility",
				EstimatedDelivery: "2024-10-05",
				LastUpdated:       "2024-10-02T08:00:00Z",
			},
		},
		{
			name: "missing everything",
			raw:  map[string]any{"carrier_code": "usps"},
			want: tracking.Response{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tracking.ParseResponse(tt.raw))
		})
	}
}

func TestParseResponse_NewestEventFillsGaps(t *testing.T) {
	raw := map[string]any{
		"events": []any{
			map[string]any{"occurred_at": "2024-10-01T09:00:00Z", "status_code": "AC", "description": "Accepted"},
			map[string]any{"occurred_at": "2024-10-02T09:00:00Z", "status_code": "IT", "description": "Arrived at hub", "city_locality": "Memphis"},
			"garbage",
			map[string]any{"description": "No timestamp"},
		},
	}

	got := tracking.ParseResponse(raw)

	require.Len(t, got.Events, 3)
	assert.Equal(t, "IT", got.StatusCode)
	assert.Equal(t, "Arrived at hub", got.StatusDescription)
	assert.Equal(t, "2024-10-02T09:00:00Z", got.LastUpdated)
	assert.Equal(t, "Memphis", got.Events[1].Location)
}

func TestParseResponse_TopLevelFieldsWinOverEvents(t *testing.T) {
	raw := map[string]any{
		"status_description": "Out for delivery",
		"events": []any{
			map[string]any{"timestamp": "2024-10-02T09:00:00Z", "code": "IT", "description": "Arrived"},
		},
	}

	got := tracking.ParseResponse(raw)

	assert.Empty(t, got.StatusCode)
	assert.Equal(t, "Out for delivery", got.StatusDescription)
	assert.Equal(t, "2024-10-02T09:00:00Z", got.LastUpdated)
}

func TestParseResponse_NilAndNumbers(t *testing.T) {
	assert.Equal(t, tracking.Response{}, tracking.ParseResponse(nil))

	got := tracking.ParseResponse(map[string]any{"code": float64(200), "description": "ok"})
	assert.Equal(t, "200", got.StatusCode)
}
