package kernel

import (
	"errors"
	"strings"

	"buyback/internal/pkg/errs"
	"buyback/internal/pkg/guard"
)

// ErrAddressIsNotConstructed is returned when an Address was declared as a zero value.
var ErrAddressIsNotConstructed = errs.NewValueIsRequiredError(
	"address must be created via NewAddress constructor")

// Address is a postal address for one end of a shipment.
//
// Example:
//
//	addr, err := kernel.NewAddress("Jane Doe", "1 Main St", "", "Austin", "TX", "78701", "US")
//	if err != nil {
//	    // Handle validation error
//	}
type Address struct { //nolint:recvcheck //using for validation
	name       string
	street1    string
	street2    string
	city       string
	state      string
	postalCode string
	country    string
	phone      string

	guard guard.ConstructorGuard
}

// NewAddress validates and builds an Address. Name, street1, city, state and
// postal code are required; country defaults to "US".
func NewAddress(name, street1, street2, city, state, postalCode, country string) (Address, error) {
	addr := Address{
		street2: strings.TrimSpace(street2),
		country: strings.ToUpper(strings.TrimSpace(country)),
		guard:   guard.NewConstructorGuard(),
	}
	if addr.country == "" {
		addr.country = "US"
	}

	if err := errors.Join(
		required(&addr.name, "name", name),
		required(&addr.street1, "street1", street1),
		required(&addr.city, "city", city),
		required(&addr.state, "state", state),
		required(&addr.postalCode, "postalCode", postalCode),
	); err != nil {
		return Address{}, err
	}

	return addr, nil
}

// WithPhone returns a copy of the address carrying a contact phone number.
func (a Address) WithPhone(phone string) Address {
	a.phone = strings.TrimSpace(phone)
	return a
}

// Validate reports whether the address was built by NewAddress.
func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

func (a Address) Name() string       { return a.name }
func (a Address) Street1() string    { return a.street1 }
func (a Address) Street2() string    { return a.street2 }
func (a Address) City() string       { return a.city }
func (a Address) State() string      { return a.state }
func (a Address) PostalCode() string { return a.postalCode }
func (a Address) Country() string    { return a.country }
func (a Address) Phone() string      { return a.phone }

// IsEqual compares two addresses field by field.
func (a Address) IsEqual(other Address) bool {
	return a.name == other.name &&
		a.street1 == other.street1 &&
		a.street2 == other.street2 &&
		a.city == other.city &&
		a.state == other.state &&
		a.postalCode == other.postalCode &&
		a.country == other.country &&
		a.phone == other.phone
}

// ToMap renders the address in the shape label providers accept.
func (a Address) ToMap() map[string]any {
	return map[string]any{
		"name":       a.name,
		"street1":    a.street1,
		"street2":    a.street2,
		"city":       a.city,
		"state":      a.state,
		"postalCode": a.postalCode,
		"country":    a.country,
		"phone":      a.phone,
	}
}

// AddressFromMap reads an address stored on an order document. Keys follow ToMap.
func AddressFromMap(m map[string]any) (Address, error) {
	get := func(key string) string {
		s, _ := m[key].(string)
		return s
	}
	addr, err := NewAddress(get("name"), get("street1"), get("street2"),
		get("city"), get("state"), get("postalCode"), get("country"))
	if err != nil {
		return Address{}, err
	}
	return addr.WithPhone(get("phone")), nil
}

func required(dst *string, param, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errs.NewValueIsRequiredError(param)
	}
	*dst = value
	return nil
}
