// Package contact validates contact/appointment submissions and forwards
// them to the configured CRM webhook.
package contact

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Submission is one completed contact/appointment request.
type Submission struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	DateOfBirth     string `json:"dateOfBirth"`
	PatientLiaison  string `json:"patientLiaison,omitempty"`
	Email           string `json:"email"`
	CountryCode     string `json:"countryCode"`
	Phone           string `json:"phone"`
	PostalCode      string `json:"postalCode,omitempty"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	Message         string `json:"message"`
}

// FullName joins first and last name.
func (s Submission) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// shape mirrors Submission with pointers so absent keys can be told apart
// from empty strings.
type shape struct {
	FirstName       *string `json:"firstName" validate:"required"`
	LastName        *string `json:"lastName" validate:"required"`
	DateOfBirth     *string `json:"dateOfBirth" validate:"required"`
	PatientLiaison  *string `json:"patientLiaison"`
	Email           *string `json:"email" validate:"required,email"`
	CountryCode     *string `json:"countryCode" validate:"required"`
	Phone           *string `json:"phone" validate:"required"`
	PostalCode      *string `json:"postalCode"`
	AppointmentDate *string `json:"appointmentDate" validate:"required"`
	AppointmentTime *string `json:"appointmentTime" validate:"required"`
	Message         *string `json:"message" validate:"required"`
}

func (s shape) submission() Submission {
	return Submission{
		FirstName:       deref(s.FirstName),
		LastName:        deref(s.LastName),
		DateOfBirth:     deref(s.DateOfBirth),
		PatientLiaison:  deref(s.PatientLiaison),
		Email:           deref(s.Email),
		CountryCode:     deref(s.CountryCode),
		Phone:           deref(s.Phone),
		PostalCode:      deref(s.PostalCode),
		AppointmentDate: deref(s.AppointmentDate),
		AppointmentTime: deref(s.AppointmentTime),
		Message:         deref(s.Message),
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func shapeValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Decode parses a JSON body into a Submission. Shape violations come back as
// *ShapeError with every offending field listed.
func Decode(body []byte) (Submission, error) {
	issues := newIssues()

	// A literal null decodes into the zero struct without error.
	if string(bytes.TrimSpace(body)) == "null" {
		issues.FormErrors = append(issues.FormErrors, "Expected object, received null")
		return Submission{}, &ShapeError{Issues: issues}
	}

	var raw shape
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr) && typeErr.Field != "":
			issues.addField(typeErr.Field, "Expected "+typeErr.Type.String()+", received "+typeErr.Value)
		case errors.As(err, &typeErr):
			issues.FormErrors = append(issues.FormErrors, "Expected object, received "+typeErr.Value)
			return Submission{}, &ShapeError{Issues: issues}
		case errors.Is(err, io.EOF):
			issues.FormErrors = append(issues.FormErrors, "Request body is empty")
			return Submission{}, &ShapeError{Issues: issues}
		default:
			issues.FormErrors = append(issues.FormErrors, "Malformed JSON body")
			return Submission{}, &ShapeError{Issues: issues}
		}
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		issues.FormErrors = append(issues.FormErrors, "Unexpected data after JSON object")
		return Submission{}, &ShapeError{Issues: issues}
	}

	if err := shapeValidator().Struct(raw); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Submission{}, err
		}
		for _, fe := range verrs {
			if _, seen := issues.FieldErrors[fe.Field()]; seen {
				continue
			}
			issues.addField(fe.Field(), issueMessage(fe))
		}
	}

	if !issues.empty() {
		return Submission{}, &ShapeError{Issues: issues}
	}
	return raw.submission(), nil
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "email":
		return "Invalid email"
	default:
		return "Invalid value"
	}
}
