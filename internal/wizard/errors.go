package wizard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrSubmitInFlight = errors.New("wizard: submission already in flight")
	ErrNotReviewStep  = errors.New("wizard: submit is only allowed from the review step")
	ErrLastStep       = errors.New("wizard: already on the last step")
	ErrUnknownField   = errors.New("wizard: unknown field")
	ErrUnknownCountry = errors.New("wizard: unknown country")
)

// StepError lists why a step could not be left, keyed by field name.
type StepError struct {
	Step   Step
	Fields map[string]string
}

func (e *StepError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("wizard: step %d incomplete: %s", e.Step, strings.Join(names, ", "))
}
