package order

import (
	"encoding/json"
	"strings"
)

// Document keys referenced by the core. The store imposes no schema.
const (
	KeyStatus                 = "status"
	KeyLastStatusUpdateAt     = "lastStatusUpdateAt"
	KeyUpdatedAt              = "updatedAt"
	KeyCreatedAt              = "createdAt"
	KeyCustomerID             = "customerId"
	KeyShippingPreference     = "shippingPreference"
	KeyShippingAddress        = "shippingAddress"
	KeyDevice                 = "device"
	KeyOutboundTrackingNumber = "outboundTrackingNumber"
	KeyInboundTrackingNumber  = "inboundTrackingNumber"
	KeyTrackingNumber         = "trackingNumber"
	KeyOutboundCarrierCode    = "outboundCarrierCode"
	KeyInboundCarrierCode     = "inboundCarrierCode"
	KeyKitTrackingStatus      = "kitTrackingStatus"
	KeyLabels                 = "labels"
	KeyKitSentAt              = "kitSentAt"
	KeyKitDeliveredAt         = "kitDeliveredAt"
	KeyKitDeliveredToUsAt     = "kitDeliveredToUsAt"
	KeyReceivedAt             = "receivedAt"
	KeyLabelGeneratedAt       = "labelGeneratedAt"
	KeyAutoReceived           = "autoReceived"
	KeyPromoCode              = "promoCode"
	KeyPromoBonus             = "promoBonus"
	KeyPrintJobID             = "printJobId"
	KeyNotifiedStatuses       = "notifiedStatuses"
)

// SetOnceKeys are timestamps that are never overwritten once non-empty,
// unless the caller asks for an explicit correction.
var SetOnceKeys = []string{
	KeyCreatedAt,
	KeyKitSentAt,
	KeyKitDeliveredAt,
	KeyKitDeliveredToUsAt,
	KeyReceivedAt,
	KeyLabelGeneratedAt,
}

// Fields is a partial update of an order document. A nil value clears the
// key. Dotted keys ("labels.outbound") address nested maps.
type Fields map[string]any

// Status returns the status carried by the patch, if any.
func (f Fields) Status() (string, bool) {
	s, ok := f[KeyStatus].(string)
	return s, ok
}

// Clone returns a shallow copy.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge applies patch to a deep copy of doc and returns the result. doc is
// not modified.
func Merge(doc map[string]any, patch Fields) map[string]any {
	out := CloneDocument(doc)
	for key, value := range patch {
		path := strings.Split(key, ".")
		setPath(out, path, normalizeValue(value))
	}
	return out
}

func setPath(m map[string]any, path []string, value any) {
	if len(path) == 1 {
		if value == nil {
			delete(m, path[0])
			return
		}
		m[path[0]] = value
		return
	}

	child, ok := m[path[0]].(map[string]any)
	if !ok {
		if value == nil {
			return
		}
		child = make(map[string]any)
		m[path[0]] = child
	}
	setPath(child, path[1:], value)
}

// normalizeValue turns typed values (structs, typed maps) into the plain JSON
// shapes documents are stored in.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case nil, string, bool, float64, map[string]any, []any:
		return t
	case Fields:
		return map[string]any(t)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

// CloneDocument deep-copies a JSON-shaped document.
func CloneDocument(doc map[string]any) map[string]any {
	if doc == nil {
		return make(map[string]any)
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneDocument(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return t
	}
}

// Lookup reads a dotted path from a document.
func Lookup(doc map[string]any, key string) (any, bool) {
	var cur any = doc
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
