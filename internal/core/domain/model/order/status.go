package order

import (
	"fmt"
	"sort"
	"strings"

	"buyback/internal/pkg/errs"
)

// Status is a canonical order lifecycle state.
//
//	order_pending ─┬─> label_generated ───────────────────────────────┐
//	               └─> shipping_kit_requested ─> kit_needs_printing   │
//	                   ─> kit_sent ─> kit_on_the_way_to_customer      │
//	                   ─> kit_delivered ──────────────────────────────┤
//	                                                                  v
//	        phone_on_the_way ─> delivered_to_us ─> received ─> imei_checked
//	        ─> emailed | blacklisted | re-offered-* ─> completed | cancelled
type Status string

const (
	StatusUnknown Status = ""

	OrderPending          Status = "order_pending"
	LabelGenerated        Status = "label_generated"
	ShippingKitRequested  Status = "shipping_kit_requested"
	KitNeedsPrinting      Status = "kit_needs_printing"
	KitSent               Status = "kit_sent"
	KitOnTheWayToCustomer Status = "kit_on_the_way_to_customer"
	KitDelivered          Status = "kit_delivered"
	PhoneOnTheWay         Status = "phone_on_the_way"
	DeliveredToUs         Status = "delivered_to_us"
	Received              Status = "received"
	ImeiChecked           Status = "imei_checked"
	Emailed               Status = "emailed"
	Blacklisted           Status = "blacklisted"
	ReOfferedPending      Status = "re-offered-pending"
	ReOfferedAccepted     Status = "re-offered-accepted"
	ReOfferedDeclined     Status = "re-offered-declined"
	Completed             Status = "completed"
	Cancelled             Status = "cancelled"
	Voided                Status = "voided"
)

// statusAliases lists every known spelling per canonical status. The
// canonical name itself is implied.
var statusAliases = map[Status][]string{
	OrderPending:          {"pending", "new", "order_placed"},
	LabelGenerated:        {"label_created", "email_label_sent", "label_sent"},
	ShippingKitRequested:  {"kit_requested"},
	KitNeedsPrinting:      {"needs_printing", "kit_print_pending"},
	KitSent:               {"kit_shipped", "shipping_kit_sent"},
	KitOnTheWayToCustomer: {"kit_on_the_way", "kit_in_transit"},
	KitDelivered:          {"kit_delivered_to_customer"},
	PhoneOnTheWay:         {"kit_on_the_way_to_us", "phone_on_the_way_to_us", "device_on_the_way", "phone_in_transit"},
	DeliveredToUs:         {"kit_delivered_to_us", "phone_delivered_to_us", "device_delivered"},
	Received:              {"device_received", "phone_received"},
	ImeiChecked:           {"imei_check_complete", "imei_verified"},
	Emailed:               {"offer_emailed"},
	Blacklisted:           {"imei_blacklisted"},
	ReOfferedPending:      {"re_offered_pending", "reoffered_pending", "re-offered"},
	ReOfferedAccepted:     {"re_offered_accepted", "reoffered_accepted"},
	ReOfferedDeclined:     {"re_offered_declined", "reoffered_declined"},
	Completed:             {"complete", "paid"},
	Cancelled:             {"canceled"},
	Voided:                {"void"},
}

// aliasIndex maps a normalized spelling to its canonical status. Built once.
var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string]Status {
	idx := make(map[string]Status)
	for canonical, aliases := range statusAliases {
		idx[normalizeStatus(string(canonical))] = canonical
		for _, alias := range aliases {
			key := normalizeStatus(alias)
			if existing, ok := idx[key]; ok && existing != canonical {
				panic(fmt.Sprintf("status alias %q maps to both %s and %s", alias, existing, canonical))
			}
			idx[key] = canonical
		}
	}
	return idx
}

func normalizeStatus(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.Join(strings.Fields(s), "_")
}

// Canonicalize resolves any known spelling to its canonical status. Unknown
// spellings return StatusUnknown and false.
func Canonicalize(raw string) (Status, bool) {
	s, ok := aliasIndex[normalizeStatus(raw)]
	return s, ok
}

// ParseStatus is the strict form of Canonicalize used on every write.
func ParseStatus(raw string) (Status, error) {
	if strings.TrimSpace(raw) == "" {
		return StatusUnknown, errs.NewValueIsRequiredError("status")
	}
	s, ok := Canonicalize(raw)
	if !ok {
		return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a known order status", raw))
	}
	return s, nil
}

// Spellings returns the canonical name followed by every alias, sorted. Stores
// use it to match documents written with legacy spellings.
func (s Status) Spellings() []string {
	out := []string{string(s)}
	aliases := append([]string(nil), statusAliases[s]...)
	sort.Strings(aliases)
	return append(out, aliases...)
}

// Spellings expands several statuses at once.
func Spellings(statuses ...Status) []string {
	var out []string
	for _, s := range statuses {
		out = append(out, s.Spellings()...)
	}
	return out
}

func (s Status) String() string {
	if s == StatusUnknown {
		return "unknown"
	}
	return string(s)
}

// Validate reports whether s is one of the canonical statuses.
func (s Status) Validate() error {
	if _, ok := statusAliases[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a canonical status", string(s)))
	}
	return nil
}

// IsTerminal reports whether no further status change is allowed.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled || s == Voided
}

// IsLocked reports whether an inbound tracking check without movement must
// leave the status alone. Legacy aliases are covered through canonicalization.
//
// The set is maintained by hand. A status added after received must be added
// to postReceipt as well or a stale scan could move it backwards.
func (s Status) IsLocked() bool {
	switch s {
	case PhoneOnTheWay, DeliveredToUs, Received, Completed:
		return true
	default:
		return false
	}
}

// IsPostReceipt reports whether the device is already in the warehouse, or
// the order is finished. Tracking refreshes never change these statuses.
func (s Status) IsPostReceipt() bool {
	_, ok := postReceipt[s]
	return ok
}

var postReceipt = map[Status]struct{}{
	Received:          {},
	ImeiChecked:       {},
	Emailed:           {},
	Blacklisted:       {},
	ReOfferedPending:  {},
	ReOfferedAccepted: {},
	ReOfferedDeclined: {},
	Completed:         {},
	Cancelled:         {},
	Voided:            {},
}

// InboundTrackingStatuses are the states in which a kit order with both
// tracking numbers is checked against the inbound leg.
var InboundTrackingStatuses = []Status{KitDelivered, PhoneOnTheWay, DeliveredToUs, Received}

// TrackableStatuses are the states the scheduled poll refreshes.
var TrackableStatuses = []Status{KitSent, KitOnTheWayToCustomer, KitDelivered, LabelGenerated, PhoneOnTheWay}

// IsInboundTracking reports whether s is in InboundTrackingStatuses.
func (s Status) IsInboundTracking() bool {
	for _, candidate := range InboundTrackingStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}
