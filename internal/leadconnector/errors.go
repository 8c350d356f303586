package leadconnector

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when no API key is available.
	ErrNotConfigured = errors.New("leadconnector: api key not configured")
	// ErrTransport covers unreachable upstreams and unreadable or non-JSON bodies.
	ErrTransport = errors.New("leadconnector: upstream unavailable")
)

// APIError is a non-2xx answer from LeadConnector.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("leadconnector: api returned %d: %s", e.StatusCode, e.Message)
}
