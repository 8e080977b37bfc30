package kernel

import (
	"time"

	"github.com/facebookgo/clock"
)

// TimestampLayout is the layout used for every timestamp stored on an order document.
const TimestampLayout = time.RFC3339Nano

// Clock is the time source for server-assigned timestamps. Production code
// uses NewSystemClock; tests pass clock.NewMock() so timestamps are deterministic.
type Clock interface {
	Now() time.Time
}

// NewSystemClock returns a Clock backed by the wall clock.
func NewSystemClock() Clock {
	return clock.New()
}

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
