package order

import (
	"fmt"

	"buyback/internal/pkg/errs"
)

// VoidStatus is the void lifecycle of a label: active -> pending_void -> voided.
type VoidStatus string

const (
	VoidActive  VoidStatus = "active"
	VoidPending VoidStatus = "pending_void"
	VoidDone    VoidStatus = "voided"
)

func (v VoidStatus) rank() int {
	switch v {
	case VoidActive, "":
		return 0
	case VoidPending:
		return 1
	case VoidDone:
		return 2
	default:
		return -1
	}
}

// CanMoveTo reports whether next is a legal forward step from v. Staying in
// place is not a move.
func (v VoidStatus) CanMoveTo(next VoidStatus) bool {
	return v.rank() >= 0 && next.rank() == v.rank()+1
}

// LabelRecord is a shipping label stored in one of an order's slots.
type LabelRecord struct {
	ID             string
	TrackingNumber string
	DownloadURL    string
	CarrierCode    string
	ServiceCode    string
	Status         string
	VoidStatus     VoidStatus
	GeneratedAt    string
	VoidedAt       string
	Profile        string
}

// MoveVoidStatus returns a copy of the label with the void status advanced.
func (l LabelRecord) MoveVoidStatus(next VoidStatus) (LabelRecord, error) {
	if !l.VoidStatus.CanMoveTo(next) {
		return LabelRecord{}, errs.NewStateConflictError("label", l.ID,
			fmt.Sprintf("void status cannot move from %q to %q", l.voidStatus(), next))
	}
	l.VoidStatus = next
	return l, nil
}

func (l LabelRecord) voidStatus() VoidStatus {
	if l.VoidStatus == "" {
		return VoidActive
	}
	return l.VoidStatus
}

// ToMap renders the label as a document value.
func (l LabelRecord) ToMap() map[string]any {
	m := map[string]any{"voidStatus": string(l.voidStatus())}
	put := func(key, value string) {
		if value != "" {
			m[key] = value
		}
	}
	put("id", l.ID)
	put("trackingNumber", l.TrackingNumber)
	put("downloadUrl", l.DownloadURL)
	put("carrierCode", l.CarrierCode)
	put("serviceCode", l.ServiceCode)
	put("status", l.Status)
	put("generatedAt", l.GeneratedAt)
	put("voidedAt", l.VoidedAt)
	put("profile", l.Profile)
	return m
}

// LabelFromMap reads a stored label. A missing voidStatus reads as active.
func LabelFromMap(m map[string]any) LabelRecord {
	str := func(key string) string {
		s, _ := m[key].(string)
		return s
	}
	l := LabelRecord{
		ID:             str("id"),
		TrackingNumber: str("trackingNumber"),
		DownloadURL:    str("downloadUrl"),
		CarrierCode:    str("carrierCode"),
		ServiceCode:    str("serviceCode"),
		Status:         str("status"),
		VoidStatus:     VoidStatus(str("voidStatus")),
		GeneratedAt:    str("generatedAt"),
		VoidedAt:       str("voidedAt"),
		Profile:        str("profile"),
	}
	l.VoidStatus = l.voidStatus()
	return l
}
