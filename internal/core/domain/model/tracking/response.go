package tracking

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Event is one scan in a carrier's tracking history.
type Event struct {
	OccurredAt  string `json:"occurredAt,omitempty"`
	StatusCode  string `json:"statusCode,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

// Response is a provider answer reduced to the fields the classifier reads.
// Any field may be empty.
type Response struct {
	StatusCode        string  `json:"statusCode,omitempty"`
	StatusDescription string  `json:"statusDescription,omitempty"`
	EstimatedDelivery string  `json:"estimatedDelivery,omitempty"`
	LastUpdated       string  `json:"lastUpdated,omitempty"`
	Events            []Event `json:"events,omitempty"`
}

var (
	codeKeys        = []string{"status_code", "statusCode", "code", "status"}
	descriptionKeys = []string{"status_description", "statusDescription", "description", "status_details", "status_detail"}
	etaKeys         = []string{"estimated_delivery_date", "estimatedDelivery", "estimated_delivery", "eta"}
	updatedKeys     = []string{"updated_at", "lastUpdated", "last_updated", "status_date", "ship_date"}
	eventListKeys   = []string{"events", "tracking_history", "trackingHistory"}
	eventTimeKeys   = []string{"occurred_at", "occurredAt", "timestamp", "status_date"}
	eventLocKeys    = []string{"city_locality", "location", "city"}
)

// ParseResponse reads a decoded JSON tracking response from either provider.
// Field names are matched against the known aliases of each provider. A nested
// "tracking_status" object is consulted after the top level. When code and
// description are both absent the newest event supplies them, and when no
// update time is given the newest event's time is used.
func ParseResponse(raw map[string]any) Response {
	if raw == nil {
		return Response{}
	}

	sources := []map[string]any{raw}
	if nested, ok := raw["tracking_status"].(map[string]any); ok {
		sources = append(sources, nested)
	}

	resp := Response{
		StatusCode:        firstString(sources, codeKeys),
		StatusDescription: firstString(sources, descriptionKeys),
		EstimatedDelivery: firstString(sources, etaKeys),
		LastUpdated:       firstString(sources, updatedKeys),
		Events:            parseEvents(raw),
	}

	if newest, ok := newestEvent(resp.Events); ok {
		if resp.StatusCode == "" && resp.StatusDescription == "" {
			resp.StatusCode = newest.StatusCode
			resp.StatusDescription = newest.Description
		}
		if resp.LastUpdated == "" {
			resp.LastUpdated = newest.OccurredAt
		}
	}

	return resp
}

func parseEvents(raw map[string]any) []Event {
	var list []any
	for _, key := range eventListKeys {
		if l, ok := raw[key].([]any); ok {
			list = l
			break
		}
	}
	if len(list) == 0 {
		return nil
	}

	events := make([]Event, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		src := []map[string]any{m}
		events = append(events, Event{
			OccurredAt:  firstString(src, eventTimeKeys),
			StatusCode:  firstString(src, codeKeys),
			Description: firstString(src, descriptionKeys),
			Location:    firstString(src, eventLocKeys),
		})
	}
	return events
}

// newestEvent picks the event with the latest parseable time. Events without
// a parseable time lose to any event that has one; among equals the first in
// provider order wins.
func newestEvent(events []Event) (Event, bool) {
	if len(events) == 0 {
		return Event{}, false
	}

	idx := make([]int, len(events))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ta, okA := parseTime(events[idx[a]].OccurredAt)
		tb, okB := parseTime(events[idx[b]].OccurredAt)
		switch {
		case okA && okB:
			return ta.After(tb)
		case okA:
			return true
		default:
			return false
		}
	})
	return events[idx[0]], true
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func firstString(sources []map[string]any, keys []string) string {
	for _, src := range sources {
		for _, key := range keys {
			if s := stringify(src[key]); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case map[string]any, []any:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
