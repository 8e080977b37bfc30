package tracking

import (
	"fmt"
	"strings"

	"buyback/internal/pkg/errs"
)

// Leg is one physical direction of a shipment.
type Leg string

const (
	// Outbound is business to customer: the shipping kit or the emailed label.
	Outbound Leg = "outbound"
	// Inbound is customer to business: the device on its way to the warehouse.
	Inbound Leg = "inbound"
)

// ParseLeg accepts "outbound" or "inbound" in any case.
func ParseLeg(s string) (Leg, error) {
	switch Leg(strings.ToLower(strings.TrimSpace(s))) {
	case Outbound:
		return Outbound, nil
	case Inbound:
		return Inbound, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("leg", fmt.Errorf("%q is not outbound or inbound", s))
	}
}

func (l Leg) String() string {
	return string(l)
}
