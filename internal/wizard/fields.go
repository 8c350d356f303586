package wizard

import (
	"strings"

	"github.com/wolfman30/harbor-homecare-web/internal/phone"
	"github.com/wolfman30/harbor-homecare-web/internal/validation"
)

// Step is a page of the contact wizard.
type Step int

const (
	StepPatient     Step = 1
	StepAppointment Step = 2
	StepReview      Step = 3
)

func (s Step) String() string {
	switch s {
	case StepPatient:
		return "patient"
	case StepAppointment:
		return "appointment"
	case StepReview:
		return "review"
	default:
		return "unknown"
	}
}

// Field names match the JSON keys of contact.Submission.
const (
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldDateOfBirth     = "dateOfBirth"
	FieldPatientLiaison  = "patientLiaison"
	FieldEmail           = "email"
	FieldPhone           = "phone"
	FieldPostalCode      = "postalCode"
	FieldMessage         = "message"
	FieldAppointmentDate = "appointmentDate"
	FieldAppointmentTime = "appointmentTime"
)

// MinMessageLength is the shortest accepted message, in characters.
const MinMessageLength = 10

var knownFields = map[string]bool{
	FieldFirstName: true, FieldLastName: true, FieldDateOfBirth: true,
	FieldPatientLiaison: true, FieldEmail: true, FieldPhone: true,
	FieldPostalCode: true, FieldMessage: true,
	FieldAppointmentDate: true, FieldAppointmentTime: true,
}

// liveResult is the as-you-type status of a field. Fields without a live
// check stay Idle until the step is validated.
func liveResult(field, value string, country phone.Rule) validation.Result {
	switch field {
	case FieldEmail:
		return validation.Email(value)
	case FieldPhone:
		return country.Validate(value)
	case FieldPostalCode:
		if strings.TrimSpace(value) == "" {
			return validation.Result{Status: validation.Idle}
		}
		return validation.PostalCode(value)
	default:
		return validation.Result{Status: validation.Idle}
	}
}

// checkPatient validates step 1. Only failures are returned.
func checkPatient(values map[string]string, country phone.Rule) map[string]validation.Result {
	failed := map[string]validation.Result{}
	require := func(field, label string) {
		if r := validation.Required(values[field], label); !r.OK() {
			failed[field] = r
		}
	}
	require(FieldFirstName, "First name")
	require(FieldLastName, "Last name")
	require(FieldDateOfBirth, "Date of birth")

	if strings.TrimSpace(values[FieldEmail]) == "" {
		failed[FieldEmail] = validation.Fail("Email is required")
	} else if r := validation.Email(values[FieldEmail]); !r.OK() {
		failed[FieldEmail] = r
	}

	if strings.TrimSpace(values[FieldPhone]) == "" {
		failed[FieldPhone] = validation.Fail("Phone number is required")
	} else if r := country.Validate(values[FieldPhone]); !r.OK() {
		failed[FieldPhone] = r
	}

	if r := validation.MinLength(values[FieldMessage], MinMessageLength, "Message"); !r.OK() {
		failed[FieldMessage] = r
	}

	if strings.TrimSpace(values[FieldPostalCode]) != "" {
		if r := validation.PostalCode(values[FieldPostalCode]); !r.OK() {
			failed[FieldPostalCode] = r
		}
	}
	return failed
}

func checkAppointment(values map[string]string) map[string]validation.Result {
	failed := map[string]validation.Result{}
	if r := validation.Required(values[FieldAppointmentDate], "Appointment date"); !r.OK() {
		failed[FieldAppointmentDate] = r
	}
	if r := validation.Required(values[FieldAppointmentTime], "Appointment time"); !r.OK() {
		failed[FieldAppointmentTime] = r
	}
	return failed
}

func stepError(step Step, failed map[string]validation.Result) *StepError {
	if len(failed) == 0 {
		return nil
	}
	fields := make(map[string]string, len(failed))
	for name, r := range failed {
		fields[name] = r.Message
	}
	return &StepError{Step: step, Fields: fields}
}
