// Package validation holds the pure field checks used by the contact wizard.
package validation

// Status is the outcome of validating one field.
type Status int

const (
	// Idle means the field is empty and should render neither success nor error.
	Idle Status = iota
	Valid
	Invalid
)

func (s Status) String() string {
	switch s {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "idle"
	}
}

// Result pairs a status with a human readable reason.
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the field passed validation.
func (r Result) OK() bool { return r.Status == Valid }

func valid() Result { return Result{Status: Valid} }

func invalid(msg string) Result { return Result{Status: Invalid, Message: msg} }

// Fail builds an invalid result; used by validators outside this package.
func Fail(msg string) Result { return invalid(msg) }

// Pass builds a valid result.
func Pass() Result { return valid() }
