package order

import (
	"errors"
	"fmt"
	"strings"

	"buyback/internal/core/domain/model/kernel"
	"buyback/internal/pkg/errs"
)

// Device is the item a customer sends in, with the price quoted at checkout.
type Device struct {
	Model       string
	Storage     string
	Condition   string
	QuotedPrice float64
}

func (d Device) Validate() error {
	var err error
	if strings.TrimSpace(d.Model) == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("device.model"))
	}
	if d.QuotedPrice < 0 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause("device.quotedPrice",
			fmt.Errorf("%v is negative", d.QuotedPrice)))
	}
	return err
}

func (d Device) ToMap() map[string]any {
	return map[string]any{
		"model":       d.Model,
		"storage":     d.Storage,
		"condition":   d.Condition,
		"quotedPrice": d.QuotedPrice,
	}
}

// NewOrderFields builds the document of a freshly created order.
func NewOrderFields(customerID string, pref ShippingPreference, device Device, address kernel.Address) (Fields, error) {
	var err error
	if strings.TrimSpace(customerID) == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError(KeyCustomerID))
	}
	if strings.TrimSpace(string(pref)) == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError(KeyShippingPreference))
	}
	err = errors.Join(err, device.Validate(), address.Validate())
	if err != nil {
		return nil, err
	}

	return Fields{
		KeyStatus:             string(OrderPending),
		KeyCustomerID:         strings.TrimSpace(customerID),
		KeyShippingPreference: strings.TrimSpace(string(pref)),
		KeyDevice:             device.ToMap(),
		KeyShippingAddress:    address.ToMap(),
	}, nil
}
