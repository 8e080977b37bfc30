package carrier

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"buyback/internal/core/domain/model/kernel"
	"buyback/internal/core/ports"
	"buyback/internal/pkg/errs"
)

var _ ports.LabelProvider = &LabelClient{}

// LabelClient creates and voids shipping labels.
type LabelClient struct {
	client *client
}

func NewLabelClient(cfg Config, hc *http.Client) *LabelClient {
	return &LabelClient{client: newClient(cfg, hc)}
}

type addressPayload struct {
	Name          string `json:"name"`
	Phone         string `json:"phone,omitempty"`
	AddressLine1  string `json:"address_line1"`
	AddressLine2  string `json:"address_line2,omitempty"`
	CityLocality  string `json:"city_locality"`
	StateProvince string `json:"state_province"`
	PostalCode    string `json:"postal_code"`
	CountryCode   string `json:"country_code"`
}

func newAddressPayload(a kernel.Address) addressPayload {
	return addressPayload{
		Name:          a.Name(),
		Phone:         a.Phone(),
		AddressLine1:  a.Street1(),
		AddressLine2:  a.Street2(),
		CityLocality:  a.City(),
		StateProvince: a.State(),
		PostalCode:    a.PostalCode(),
		CountryCode:   a.Country(),
	}
}

type weightPayload struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type packagePayload struct {
	PackageCode string        `json:"package_code,omitempty"`
	Weight      weightPayload `json:"weight"`
}

type shipmentPayload struct {
	CarrierCode string           `json:"carrier_code,omitempty"`
	ServiceCode string           `json:"service_code,omitempty"`
	ShipFrom    addressPayload   `json:"ship_from"`
	ShipTo      addressPayload   `json:"ship_to"`
	Packages    []packagePayload `json:"packages"`
}

type createLabelRequest struct {
	Shipment    shipmentPayload `json:"shipment"`
	LabelFormat string          `json:"label_format"`
}

type createLabelResponse struct {
	LabelID        string `json:"label_id"`
	TrackingNumber string `json:"tracking_number"`
	CarrierCode    string `json:"carrier_code"`
	ServiceCode    string `json:"service_code"`
	LabelData      string `json:"label_data"`
	LabelDownload  struct {
		PDF  string `json:"pdf"`
		Href string `json:"href"`
	} `json:"label_download"`
}

type voidLabelResponse struct {
	Approved bool   `json:"approved"`
	Message  string `json:"message"`
}

func (c *LabelClient) CreateLabel(ctx context.Context, req ports.LabelRequest) (ports.LabelResult, error) {
	payload := createLabelRequest{
		Shipment: shipmentPayload{
			CarrierCode: req.CarrierCode,
			ServiceCode: req.ServiceCode,
			ShipFrom:    newAddressPayload(req.FromAddress),
			ShipTo:      newAddressPayload(req.ToAddress),
			Packages: []packagePayload{{
				PackageCode: req.PackageCode,
				Weight:      weightPayload{Value: req.WeightOz, Unit: "ounce"},
			}},
		},
		LabelFormat: "pdf",
	}

	var resp createLabelResponse
	if err := c.client.do(ctx, "create_label", http.MethodPost, "/v1/labels", payload, &resp); err != nil {
		return ports.LabelResult{}, err
	}
	if resp.LabelID == "" || resp.TrackingNumber == "" {
		return ports.LabelResult{}, errs.NewProviderFailedError(c.client.cfg.Name, "create_label", http.StatusOK,
			"response is missing label_id or tracking_number")
	}

	download := resp.LabelDownload.PDF
	if download == "" {
		download = resp.LabelDownload.Href
	}
	carrierCode := resp.CarrierCode
	if carrierCode == "" {
		carrierCode = req.CarrierCode
	}
	serviceCode := resp.ServiceCode
	if serviceCode == "" {
		serviceCode = req.ServiceCode
	}
	return ports.LabelResult{
		LabelID:        resp.LabelID,
		TrackingNumber: resp.TrackingNumber,
		LabelData:      resp.LabelData,
		DownloadURL:    download,
		CarrierCode:    carrierCode,
		ServiceCode:    serviceCode,
	}, nil
}

// VoidLabel asks the provider to void a label. A refusal is a failed call
// carrying the provider's message.
func (c *LabelClient) VoidLabel(ctx context.Context, labelID string) error {
	labelID = strings.TrimSpace(labelID)
	if labelID == "" {
		return errs.NewValueIsRequiredError("labelId")
	}

	var resp voidLabelResponse
	path := "/v1/labels/" + url.PathEscape(labelID) + "/void"
	if err := c.client.do(ctx, "void_label", http.MethodPut, path, nil, &resp); err != nil {
		return err
	}
	if !resp.Approved {
		return errs.NewProviderFailedError(c.client.cfg.Name, "void_label", http.StatusOK, resp.Message)
	}
	return nil
}
