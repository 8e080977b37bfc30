package order

import (
	"errors"
	"fmt"
	"strings"

	"buyback/internal/core/domain/model/kernel"
	"buyback/internal/core/domain/model/tracking"
	"buyback/internal/pkg/errs"
)

// ErrOrderIsNotConstructed is returned when an Order was not built by FromDocument.
var ErrOrderIsNotConstructed = errors.New("Order must be created via FromDocument")

// Order is a read-only view over a stored order document. It is the aggregate
// root: labels and the activity log belong to it exclusively.
//
// The raw status spelling is kept next to its canonical form so that legacy
// documents can be read without rewriting them. Mutation happens only through
// the record store, which receives a Fields patch and commits it.
type Order struct {
	id      int64
	version int64
	doc     map[string]any
	log     []ActivityLogEntry

	rawStatus string
	status    Status

	isConstructed bool
}

// FromDocument builds an Order from its stored form. An unknown status
// spelling is tolerated and reads as StatusUnknown.
func FromDocument(id int64, version int64, doc map[string]any, log []ActivityLogEntry) (*Order, error) {
	if id <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("order id", fmt.Errorf("%d is not positive", id))
	}

	o := &Order{
		id:            id,
		version:       version,
		doc:           CloneDocument(doc),
		log:           append([]ActivityLogEntry(nil), log...),
		isConstructed: true,
	}
	o.rawStatus, _ = o.doc[KeyStatus].(string)
	o.status, _ = Canonicalize(o.rawStatus)
	return o, nil
}

// Validate ensures the order was built by FromDocument.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) ID() int64 { return o.id }

// Version is the store's optimistic concurrency token for this read.
func (o *Order) Version() int64 { return o.version }

// Status is the canonical status, or StatusUnknown for an unrecognized spelling.
func (o *Order) Status() Status { return o.status }

// RawStatus is the status exactly as stored.
func (o *Order) RawStatus() string { return o.rawStatus }

func (o *Order) CustomerID() string { return o.Text(KeyCustomerID) }

func (o *Order) ShippingPreference() ShippingPreference {
	return ShippingPreference(o.Text(KeyShippingPreference))
}

func (o *Order) OutboundTrackingNumber() string { return o.Text(KeyOutboundTrackingNumber) }

// InboundTrackingNumber falls back to the legacy trackingNumber key.
func (o *Order) InboundTrackingNumber() string {
	if n := o.Text(KeyInboundTrackingNumber); n != "" {
		return n
	}
	return o.Text(KeyTrackingNumber)
}

func (o *Order) OutboundCarrierCode() string { return o.Text(KeyOutboundCarrierCode) }
func (o *Order) InboundCarrierCode() string  { return o.Text(KeyInboundCarrierCode) }

// TrackingSnapshot returns the last stored classifier snapshot.
func (o *Order) TrackingSnapshot() (tracking.Snapshot, bool) {
	m, ok := o.doc[KeyKitTrackingStatus].(map[string]any)
	if !ok {
		return tracking.Snapshot{}, false
	}
	return tracking.SnapshotFromMap(m), true
}

// Label returns the label held in slot.
func (o *Order) Label(slot Slot) (LabelRecord, bool) {
	labels, _ := o.doc[KeyLabels].(map[string]any)
	m, ok := labels[string(slot)].(map[string]any)
	if !ok {
		return LabelRecord{}, false
	}
	return LabelFromMap(m), true
}

// Labels returns every filled slot.
func (o *Order) Labels() map[Slot]LabelRecord {
	out := make(map[Slot]LabelRecord)
	for _, slot := range Slots {
		if l, ok := o.Label(slot); ok {
			out[slot] = l
		}
	}
	return out
}

// ShippingAddress returns the customer's address, if one was recorded.
func (o *Order) ShippingAddress() (kernel.Address, error) {
	m, ok := o.doc[KeyShippingAddress].(map[string]any)
	if !ok {
		return kernel.Address{}, errs.NewValueIsRequiredError(KeyShippingAddress)
	}
	return kernel.AddressFromMap(m)
}

// HasValue reports whether key holds a non-empty value.
func (o *Order) HasValue(key string) bool {
	v, ok := Lookup(o.doc, key)
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// Text reads a string value; anything else reads as "".
func (o *Order) Text(key string) string {
	v, _ := Lookup(o.doc, key)
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// Bool reads a boolean value.
func (o *Order) Bool(key string) bool {
	v, _ := Lookup(o.doc, key)
	b, _ := v.(bool)
	return b
}

// WasNotified reports whether a notification for status was already emitted.
func (o *Order) WasNotified(status Status) bool {
	m, _ := o.doc[KeyNotifiedStatuses].(map[string]any)
	_, ok := m[string(status)]
	return ok
}

// Document returns a deep copy of the stored document.
func (o *Order) Document() map[string]any {
	return CloneDocument(o.doc)
}

// ActivityLog returns the audit trail in insertion order.
func (o *Order) ActivityLog() []ActivityLogEntry {
	return append([]ActivityLogEntry(nil), o.log...)
}
