package tracking

// Snapshot is the last classifier result stored on an order as
// kitTrackingStatus. It is written on every successful refresh, whether or
// not the order status changed.
type Snapshot struct {
	StatusCode        string
	StatusDescription string
	CanonicalCode     Code
	EstimatedDelivery string
	LastUpdated       string
	Direction         Leg
	TrackingNumber    string
	CarrierCode       string
	Provider          string
	CheckedAt         string
	Delivered         bool
	InTransit         bool
}

// NewSnapshot records a classification for the given leg.
func NewSnapshot(c Classification, leg Leg, trackingNumber, carrierCode, provider, checkedAt string) Snapshot {
	return Snapshot{
		StatusCode:        c.StatusCode,
		StatusDescription: c.StatusDescription,
		CanonicalCode:     c.Canonical,
		EstimatedDelivery: c.EstimatedDelivery,
		LastUpdated:       c.LastUpdated,
		Direction:         leg,
		TrackingNumber:    trackingNumber,
		CarrierCode:       carrierCode,
		Provider:          provider,
		CheckedAt:         checkedAt,
		Delivered:         c.Delivered,
		InTransit:         c.Moving(),
	}
}

// ToMap renders the snapshot as a document value. Empty strings are omitted.
func (s Snapshot) ToMap() map[string]any {
	m := map[string]any{
		"delivered": s.Delivered,
		"inTransit": s.InTransit,
	}
	put := func(key, value string) {
		if value != "" {
			m[key] = value
		}
	}
	put("statusCode", s.StatusCode)
	put("statusDescription", s.StatusDescription)
	put("canonicalCode", string(s.CanonicalCode))
	put("estimatedDelivery", s.EstimatedDelivery)
	put("lastUpdated", s.LastUpdated)
	put("direction", string(s.Direction))
	put("trackingNumber", s.TrackingNumber)
	put("carrierCode", s.CarrierCode)
	put("provider", s.Provider)
	put("checkedAt", s.CheckedAt)
	return m
}

// SnapshotFromMap reads a stored snapshot. Unknown or missing keys are left zero.
func SnapshotFromMap(m map[string]any) Snapshot {
	str := func(key string) string {
		s, _ := m[key].(string)
		return s
	}
	flag := func(key string) bool {
		b, _ := m[key].(bool)
		return b
	}
	return Snapshot{
		StatusCode:        str("statusCode"),
		StatusDescription: str("statusDescription"),
		CanonicalCode:     Code(str("canonicalCode")),
		EstimatedDelivery: str("estimatedDelivery"),
		LastUpdated:       str("lastUpdated"),
		Direction:         Leg(str("direction")),
		TrackingNumber:    str("trackingNumber"),
		CarrierCode:       str("carrierCode"),
		Provider:          str("provider"),
		CheckedAt:         str("checkedAt"),
		Delivered:         flag("delivered"),
		InTransit:         flag("inTransit"),
	}
}
