package services

import (
	"strings"

	"buyback/internal/core/domain/model/order"
	"buyback/internal/core/domain/model/tracking"
	"buyback/internal/pkg/errs"
)

// Direction is the leg a tracking check targets, with the number and carrier to ask about.
type Direction struct {
	Leg            tracking.Leg
	TrackingNumber string
	CarrierCode    string
}

// DirectionResolver decides which leg of an order the next tracking check is
// evaluated against.
//
// Business rules:
//   - With both tracking numbers, a kit order is checked inbound once the
//     last snapshot was inbound or the status is an inbound-tracking status;
//     every other order is checked outbound
//   - With one tracking number, its leg is used
//   - With none, the check fails with NoTrackingNumber
//
// Carrier resolution priority: per-leg carrier field, label record of that
// leg, any label record with a carrier, then the configured default.
type DirectionResolver struct {
	defaultCarrier string
}

// NewDirectionResolver creates a resolver falling back to defaultCarrier.
func NewDirectionResolver(defaultCarrier string) DirectionResolver {
	return DirectionResolver{defaultCarrier: strings.TrimSpace(defaultCarrier)}
}

// Resolve picks the leg, tracking number and carrier for o.
func (r DirectionResolver) Resolve(o *order.Order) (Direction, error) {
	if err := o.Validate(); err != nil {
		return Direction{}, err
	}

	outbound := o.OutboundTrackingNumber()
	inbound := o.InboundTrackingNumber()

	var leg tracking.Leg
	switch {
	case outbound != "" && inbound != "":
		leg = tracking.Outbound
		if r.prefersInbound(o) {
			leg = tracking.Inbound
		}
	case outbound != "":
		leg = tracking.Outbound
	case inbound != "":
		leg = tracking.Inbound
	default:
		return Direction{}, errs.NewNoTrackingNumberError(o.ID())
	}

	number := outbound
	if leg == tracking.Inbound {
		number = inbound
	}

	return Direction{
		Leg:            leg,
		TrackingNumber: number,
		CarrierCode:    r.carrierFor(o, leg),
	}, nil
}

func (r DirectionResolver) prefersInbound(o *order.Order) bool {
	if !o.ShippingPreference().RequiresKit() {
		return false
	}
	if snap, ok := o.TrackingSnapshot(); ok && snap.Direction == tracking.Inbound {
		return true
	}
	return o.Status().IsInboundTracking()
}

func (r DirectionResolver) carrierFor(o *order.Order, leg tracking.Leg) string {
	explicit := o.OutboundCarrierCode()
	legSlots := []order.Slot{order.SlotOutbound}
	if leg == tracking.Inbound {
		explicit = o.InboundCarrierCode()
		legSlots = []order.Slot{order.SlotInbound, order.SlotEmail, order.SlotReturn}
	}
	if explicit != "" {
		return explicit
	}

	for _, slot := range legSlots {
		if label, ok := o.Label(slot); ok && label.CarrierCode != "" {
			return label.CarrierCode
		}
	}

	for _, slot := range order.Slots {
		if label, ok := o.Label(slot); ok && label.CarrierCode != "" {
			return label.CarrierCode
		}
	}

	return r.defaultCarrier
}
