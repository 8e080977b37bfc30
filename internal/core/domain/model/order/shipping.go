package order

import (
	"fmt"
	"strings"

	"buyback/internal/pkg/errs"
)

// ShippingPreference is how the customer asked to send the device in.
type ShippingPreference string

const (
	PreferenceShippingKit ShippingPreference = "Shipping Kit Requested"
	PreferenceEmailLabel  ShippingPreference = "Email Label Requested"
)

// RequiresKit reports whether the business mails a shipping kit first.
func (p ShippingPreference) RequiresKit() bool {
	return strings.EqualFold(strings.TrimSpace(string(p)), string(PreferenceShippingKit))
}

// IsEmailLabel reports whether the customer prints an emailed label.
func (p ShippingPreference) IsEmailLabel() bool {
	return strings.EqualFold(strings.TrimSpace(string(p)), string(PreferenceEmailLabel))
}

// Slot names a position in an order's label map.
type Slot string

const (
	SlotOutbound Slot = "outbound"
	SlotInbound  Slot = "inbound"
	SlotEmail    Slot = "email"
	SlotReturn   Slot = "return"
)

// Slots lists every slot in display order.
var Slots = []Slot{SlotOutbound, SlotInbound, SlotEmail, SlotReturn}

// ParseSlot validates a slot name.
func ParseSlot(raw string) (Slot, error) {
	s := Slot(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Slots {
		if s == known {
			return s, nil
		}
	}
	return "", errs.NewValueIsInvalidErrorWithCause("slot", fmt.Errorf("%q is not one of outbound, inbound, email, return", raw))
}

// IsInboundSide reports whether a label in this slot carries the device to us.
func (s Slot) IsInboundSide() bool {
	return s == SlotInbound || s == SlotEmail || s == SlotReturn
}
