package contact

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
)

func validPayload() map[string]any {
	return map[string]any{
		"firstName":       "Ada",
		"lastName":        "Lovelace",
		"dateOfBirth":     "1950-12-10",
		"email":           "ada@example.ca",
		"countryCode":     "CA",
		"phone":           "(780) 555-0100",
		"postalCode":      "12345",
		"appointmentDate": "2026-10-21",
		"appointmentTime": "2026-10-21T09:00:00-06:00",
		"message":         "Looking for weekday companionship care.",
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

type recordingNotifier struct {
	mu   sync.Mutex
	subs []Submission
	err  error
}

func (n *recordingNotifier) NotifySubmission(_ context.Context, sub Submission) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, sub)
	return n.err
}
