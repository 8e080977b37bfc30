package services

import (
	"fmt"
	"time"

	"buyback/internal/core/domain/model/kernel"
	"buyback/internal/core/domain/model/order"
	"buyback/internal/core/domain/model/tracking"
)

// Observation is one classified tracking response for a resolved leg.
type Observation struct {
	Direction      Direction
	Provider       string
	Classification tracking.Classification
}

// Transition is the outcome of a tracking check. Fields always carries the
// new kitTrackingStatus snapshot, and carries a status only when it differs
// from the stored spelling.
type Transition struct {
	From       order.Status
	To         order.Status
	Changed    bool
	Fields     order.Fields
	LogEntries []order.ActivityLogEntry
}

// TransitionEngine is the tracking state machine.
//
// Outbound leg:
//   - delivered: kit_delivered, stamp kitDeliveredAt
//   - moving: kit_on_the_way_to_customer, stamp kitSentAt if unset
//   - otherwise: kit_sent unless already there, stamp kitSentAt if unset
//
// Inbound leg:
//   - delivered: delivered_to_us, stamp kitDeliveredToUsAt (kit orders) or
//     receivedAt and autoReceived (label orders)
//   - moving: phone_on_the_way, replacing any legacy spelling
//   - otherwise: reset to the baseline milestone unless the status is locked
//
// A check never moves an order backwards along its leg, and never changes
// the status of an order whose device has already been received.
type TransitionEngine struct{}

func NewTransitionEngine() TransitionEngine {
	return TransitionEngine{}
}

// Next computes the transition for o given the observation at time now.
func (e TransitionEngine) Next(o *order.Order, obs Observation, now time.Time) Transition {
	stamp := kernel.FormatTimestamp(now)
	c := obs.Classification

	fields := order.Fields{}
	snapshot := tracking.NewSnapshot(c, obs.Direction.Leg, obs.Direction.TrackingNumber,
		obs.Direction.CarrierCode, obs.Provider, stamp)
	fields[order.KeyKitTrackingStatus] = snapshot.ToMap()

	setOnce := func(key string) {
		if !o.HasValue(key) {
			fields[key] = stamp
		}
	}

	from := o.Status()
	to := from

	switch obs.Direction.Leg {
	case tracking.Outbound:
		to = e.outbound(o, c, setOnce)
	case tracking.Inbound:
		to = e.inbound(o, c, setOnce, fields)
	}

	if from.IsPostReceipt() {
		to = from
	}

	t := Transition{From: from, To: to, Changed: to != from, Fields: fields}
	normalize := obs.Direction.Leg == tracking.Inbound && c.Moving() && to == order.PhoneOnTheWay
	if (t.Changed || normalize) && to != order.StatusUnknown && string(to) != o.RawStatus() {
		fields[order.KeyStatus] = string(to)
	}
	if t.Changed {
		t.LogEntries = append(t.LogEntries, order.NewActivityLogEntry(order.LogTracking,
			fmt.Sprintf("Tracking update on %s leg: %s", obs.Direction.Leg, describe(c)),
			map[string]any{
				"leg":            string(obs.Direction.Leg),
				"trackingNumber": obs.Direction.TrackingNumber,
				"carrierCode":    obs.Direction.CarrierCode,
				"canonicalCode":  string(c.Canonical),
				"from":           from.String(),
				"to":             string(to),
			}))
	}
	return t
}

func (e TransitionEngine) outbound(o *order.Order, c tracking.Classification, setOnce func(string)) order.Status {
	current := o.Status()
	var (
		target order.Status
		stamp  string
	)

	switch {
	case c.Delivered:
		target, stamp = order.KitDelivered, order.KeyKitDeliveredAt
	case c.Moving():
		target, stamp = order.KitOnTheWayToCustomer, order.KeyKitSentAt
	case current != order.KitSent:
		target, stamp = order.KitSent, order.KeyKitSentAt
	default:
		return current
	}

	// Unlike the literal "no movement resets to kit_sent" rule, a scan
	// without movement never takes an order back from a later outbound
	// milestone such as kit_delivered. Refused moves stamp nothing.
	if outboundRank(target) < outboundRank(current) {
		return current
	}
	setOnce(stamp)
	return target
}

func (e TransitionEngine) inbound(o *order.Order, c tracking.Classification, setOnce func(string), fields order.Fields) order.Status {
	current := o.Status()
	kit := o.ShippingPreference().RequiresKit()

	switch {
	case c.Delivered:
		if inboundRank(current) > inboundRank(order.DeliveredToUs) {
			return current
		}
		if kit {
			setOnce(order.KeyKitDeliveredToUsAt)
		} else {
			setOnce(order.KeyReceivedAt)
			if !o.HasValue(order.KeyReceivedAt) {
				fields[order.KeyAutoReceived] = true
			}
		}
		return order.DeliveredToUs
	case c.Moving():
		if inboundRank(current) > inboundRank(order.PhoneOnTheWay) {
			return current
		}
		return order.PhoneOnTheWay
	case current.IsLocked():
		return current
	default:
		return baseline(o, kit)
	}
}

// baseline is the furthest milestone the order is known to have reached
// before the device was shipped in.
func baseline(o *order.Order, kit bool) order.Status {
	if !kit {
		return order.LabelGenerated
	}
	if o.HasValue(order.KeyKitDeliveredAt) {
		return order.KitDelivered
	}
	return order.KitSent
}

func outboundRank(s order.Status) int {
	switch s {
	case order.KitSent:
		return 1
	case order.KitOnTheWayToCustomer:
		return 2
	case order.KitDelivered:
		return 3
	}
	if s.IsLocked() || s.IsPostReceipt() || s == order.DeliveredToUs {
		return 4
	}
	return 0
}

func inboundRank(s order.Status) int {
	switch {
	case s.IsPostReceipt():
		return 3
	case s == order.DeliveredToUs:
		return 2
	case s == order.PhoneOnTheWay:
		return 1
	default:
		return 0
	}
}

func describe(c tracking.Classification) string {
	switch {
	case c.StatusDescription != "":
		return c.StatusDescription
	case c.StatusCode != "":
		return c.StatusCode
	default:
		return string(c.Canonical)
	}
}
