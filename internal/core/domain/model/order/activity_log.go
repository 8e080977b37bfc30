package order

import (
	"time"

	"github.com/google/uuid"
)

// Activity log entry types.
const (
	LogStatus   = "status"
	LogTracking = "tracking"
	LogLabel    = "label"
	LogVoid     = "void"
	LogNote     = "note"
	LogPrint    = "print"
	LogPromo    = "promo"
)

// ActivityLogEntry is one immutable audit record. ID is unique per entry and
// At is assigned by the record store when the entry is committed.
type ActivityLogEntry struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
	At       time.Time      `json:"at"`
}

// NewActivityLogEntry builds an entry with a fresh id. The timestamp is left
// for the record store.
func NewActivityLogEntry(entryType, message string, metadata map[string]any) ActivityLogEntry {
	return ActivityLogEntry{
		ID:       uuid.NewString(),
		Type:     entryType,
		Message:  message,
		Metadata: metadata,
	}
}

// StatusChangedEntry is the entry synthesized for every status change.
func StatusChangedEntry(to Status) ActivityLogEntry {
	return NewActivityLogEntry(LogStatus, "Status changed to "+string(to), map[string]any{"status": string(to)})
}

// Normalize fills the id and timestamp and defaults the type, returning the
// entry ready to be appended.
func (e ActivityLogEntry) Normalize(at time.Time) ActivityLogEntry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Type == "" {
		e.Type = LogNote
	}
	if e.At.IsZero() {
		e.At = at
	}
	e.At = e.At.UTC()
	return e
}
