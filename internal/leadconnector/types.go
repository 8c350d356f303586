// Package leadconnector is a small client for the LeadConnector calendar API.
package leadconnector

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// FreeSlotsQuery selects a calendar and an epoch-millisecond window.
type FreeSlotsQuery struct {
	StartDateMillis int64
	EndDateMillis   int64
	CalendarID      string // empty uses the client default
}

// Response is the raw upstream answer, relayed as-is by the proxy.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

type daySlots struct {
	Slots []string `json:"slots"`
}

// ParseFreeSlots reads the per-day slot map that the free-slots endpoint
// returns ({"2006-01-02":{"slots":[...]}}). Keys that are not dates, such as
// traceId, are ignored. Slots are returned in ascending order.
func ParseFreeSlots(body []byte) ([]time.Time, error) {
	var days map[string]json.RawMessage
	if err := json.Unmarshal(body, &days); err != nil {
		return nil, fmt.Errorf("leadconnector: decode free slots: %w", err)
	}

	var out []time.Time
	for key, raw := range days {
		if _, err := time.Parse(time.DateOnly, key); err != nil {
			continue
		}
		var day daySlots
		if err := json.Unmarshal(raw, &day); err != nil {
			return nil, fmt.Errorf("leadconnector: decode slots for %s: %w", key, err)
		}
		for _, s := range day.Slots {
			ts, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return nil, fmt.Errorf("leadconnector: parse slot %q: %w", s, err)
			}
			out = append(out, ts)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}
