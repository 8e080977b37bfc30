package commands

import (
	"errors"
	"strings"

	"buyback/internal/core/domain/model/kernel"
	"buyback/internal/core/domain/model/order"
	"buyback/internal/core/domain/model/promo"
	"buyback/internal/pkg/errs"
	"buyback/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand registers a new buyback order for a customer's device.
//
// Example:
//
//	addr, _ := kernel.NewAddress("Ann Lee", "1 Main St", "", "Austin", "TX", "73301", "US")
//	cmd, err := NewCreateOrderCommand("cust-1", order.PreferenceShippingKit,
//	    order.Device{Model: "iPhone 14", QuotedPrice: 310}, addr, "SPRING25")
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	created, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	customerID         string
	shippingPreference order.ShippingPreference
	device             order.Device
	address            kernel.Address
	promoCode          string

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the order data. promoCode is optional.
func NewCreateOrderCommand(
	customerID string,
	shippingPreference order.ShippingPreference,
	device order.Device,
	address kernel.Address,
	promoCode string,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCustomerID(customerID),
		cmd.setShippingPreference(shippingPreference),
		cmd.setDevice(device),
		cmd.setAddress(address),
	); err != nil {
		return CreateOrderCommand{}, err
	}
	cmd.promoCode = promo.NormalizeCode(promoCode)

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) CustomerID() string { return c.customerID }

func (c CreateOrderCommand) ShippingPreference() order.ShippingPreference { return c.shippingPreference }

func (c CreateOrderCommand) Device() order.Device { return c.device }

func (c CreateOrderCommand) Address() kernel.Address { return c.address }

// PromoCode returns the normalized promo code, or "" when none was given.
func (c CreateOrderCommand) PromoCode() string { return c.promoCode }

func (c *CreateOrderCommand) setCustomerID(customerID string) error {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return errs.NewValueIsRequiredError("customerId")
	}
	c.customerID = customerID
	return nil
}

func (c *CreateOrderCommand) setShippingPreference(pref order.ShippingPreference) error {
	if !pref.RequiresKit() && !pref.IsEmailLabel() {
		return errs.NewValueIsInvalidError("shippingPreference")
	}
	c.shippingPreference = pref
	return nil
}

func (c *CreateOrderCommand) setDevice(device order.Device) error {
	if err := device.Validate(); err != nil {
		return err
	}
	c.device = device
	return nil
}

func (c *CreateOrderCommand) setAddress(address kernel.Address) error {
	if err := address.Validate(); err != nil {
		return err
	}
	c.address = address
	return nil
}
