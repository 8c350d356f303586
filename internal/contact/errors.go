package contact

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTransport is returned when the upstream could not be reached or read.
var ErrTransport = errors.New("contact: upstream unavailable")

// Issues itemises shape violations, keyed by JSON field name.
type Issues struct {
	FormErrors  []string            `json:"formErrors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

func newIssues() *Issues {
	return &Issues{FormErrors: []string{}, FieldErrors: map[string][]string{}}
}

func (i *Issues) addField(field, msg string) {
	i.FieldErrors[field] = append(i.FieldErrors[field], msg)
}

func (i *Issues) empty() bool {
	return len(i.FormErrors) == 0 && len(i.FieldErrors) == 0
}

// ShapeError is returned when a request body does not match the submission shape.
type ShapeError struct {
	Issues *Issues
}

func (e *ShapeError) Error() string {
	parts := append([]string(nil), e.Issues.FormErrors...)
	for field, msgs := range e.Issues.FieldErrors {
		parts = append(parts, field+": "+strings.Join(msgs, ", "))
	}
	return "contact: invalid payload: " + strings.Join(parts, "; ")
}

// UpstreamError carries a non-2xx answer from the submission target.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("contact: upstream rejected submission with status %d", e.Status)
}
