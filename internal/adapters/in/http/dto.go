package http

import (
	"time"

	"buyback/internal/core/application/usecases/commands"
	"buyback/internal/core/application/usecases/queries"
	"buyback/internal/core/domain/model/printjob"
)

type DeviceRequest struct {
	Model       string  `json:"model"`
	Storage     string  `json:"storage"`
	Condition   string  `json:"condition"`
	QuotedPrice float64 `json:"quotedPrice"`
}

type AddressRequest struct {
	Name       string `json:"name"`
	Street1    string `json:"street1"`
	Street2    string `json:"street2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type CreateOrderRequest struct {
	CustomerID         string         `json:"customerId"`
	ShippingPreference string         `json:"shippingPreference"`
	Device             DeviceRequest  `json:"device"`
	Address            AddressRequest `json:"address"`
	PromoCode          string         `json:"promoCode"`
}

type UpdateOrderStatusRequest struct {
	Status      string `json:"status"`
	Note        string `json:"note"`
	SuppressLog bool   `json:"suppressLog"`
}

type GenerateLabelRequest struct {
	Slot string `json:"slot"`
}

type VoidLabelRequest struct {
	Labels       []string `json:"labels"`
	RetryPending bool     `json:"retryPending"`
}

type RefreshTrackingRequest struct {
	OrderID int64 `json:"orderId"`
}

type CreatePrintJobRequest struct {
	OrderIDs []int64 `json:"orderIds"`
}

type OrderResponse struct {
	Order queries.GetOrderQueryResponse `json:"order"`
}

type LabelResponse struct {
	Label map[string]any `json:"label"`
}

type VoidLabelResponse struct {
	Results []commands.VoidResult `json:"results"`
}

type RefreshTrackingResponse struct {
	OrderID        int64  `json:"orderId"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previousStatus"`
	Changed        bool   `json:"changed"`
	Direction      string `json:"direction"`
	Delivered      bool   `json:"delivered"`
	Provider       string `json:"provider,omitempty"`
}

// RefreshTrackingFailure is returned when a refresh fails. Status is the
// stored status, which the failed refresh left untouched.
type RefreshTrackingFailure struct {
	ErrorResponse
	OrderID int64  `json:"orderId"`
	Status  string `json:"status,omitempty"`
}

type PrintJob struct {
	ID        string    `json:"id"`
	Sequence  int64     `json:"sequence"`
	Folder    string    `json:"folder"`
	OrderIDs  []int64   `json:"orderIds"`
	CreatedAt time.Time `json:"createdAt"`
}

// PrintJobResponse carries the job. Warnings lists orders that could not be
// moved to kit_sent after the job was allocated.
type PrintJobResponse struct {
	Job      PrintJob `json:"job"`
	Warnings []string `json:"warnings,omitempty"`
}

type PrintJobsResponse struct {
	Jobs []PrintJob `json:"jobs"`
}

// VoidLabelFailure is returned when voiding stops at a failing slot.
type VoidLabelFailure struct {
	ErrorResponse
	Results []commands.VoidResult `json:"results"`
}

type CustomerOrdersResponse struct {
	Orders []queries.CustomerOrderResponse `json:"orders"`
}

func newPrintJob(job printjob.PrintJob) PrintJob {
	return PrintJob{
		ID:        job.ID,
		Sequence:  job.Sequence,
		Folder:    job.Folder,
		OrderIDs:  job.OrderIDs,
		CreatedAt: job.CreatedAt,
	}
}

func newRefreshTrackingResponse(res commands.RefreshTrackingResult) RefreshTrackingResponse {
	return RefreshTrackingResponse{
		OrderID:        res.OrderID,
		Status:         res.Status,
		PreviousStatus: res.PreviousStatus,
		Changed:        res.Changed,
		Direction:      string(res.Direction),
		Delivered:      res.Delivered,
		Provider:       res.Provider,
	}
}
