package ports

import (
	"context"

	"buyback/internal/core/domain/model/kernel"
	"buyback/internal/core/domain/model/tracking"
)

// TrackRequest asks a carrier about one tracking number.
type TrackRequest struct {
	TrackingNumber string
	CarrierCode    string
}

// TrackingProvider fetches tracking from a carrier aggregator.
//
// Errors: errs.ErrCredentialsMissing when the provider is not configured,
// errs.ErrProviderTransient for timeouts, transport failures, 429 and 5xx,
// errs.ErrProviderFailed for any other non-success answer.
type TrackingProvider interface {
	Name() string
	Track(ctx context.Context, req TrackRequest) (tracking.Response, error)
}

// LabelRequest asks a label provider for a shipping label.
type LabelRequest struct {
	FromAddress kernel.Address
	ToAddress   kernel.Address
	CarrierCode string
	ServiceCode string
	PackageCode string
	WeightOz    float64
	Profile     string
}

// LabelResult is a created label.
type LabelResult struct {
	LabelID        string
	TrackingNumber string
	LabelData      string
	DownloadURL    string
	CarrierCode    string
	ServiceCode    string
}

// LabelProvider creates and voids shipping labels.
type LabelProvider interface {
	CreateLabel(ctx context.Context, req LabelRequest) (LabelResult, error)
	VoidLabel(ctx context.Context, labelID string) error
}

// Notification is a structured message for the email/ticketing collaborator.
// The core decides that a notification is due and what it contains; rendering
// is the collaborator's job.
type Notification struct {
	Kind       string         `json:"kind"`
	OrderID    int64          `json:"orderId"`
	CustomerID string         `json:"customerId,omitempty"`
	Status     string         `json:"status"`
	Data       map[string]any `json:"data,omitempty"`
}

// Notifier hands notifications to the collaborator. Delivery is at most once.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
