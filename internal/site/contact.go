package site

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/wolfman30/harbor-homecare-web/internal/phone"
	"github.com/wolfman30/harbor-homecare-web/internal/validation"
	"github.com/wolfman30/harbor-homecare-web/internal/wizard"
)

// WizardCookie carries the contact wizard session id.
const WizardCookie = "harbor_contact"

// SlotLister lists bookable times for a day.
type SlotLister interface {
	Configured() bool
	Location() *time.Location
	DaySlots(ctx context.Context, day time.Time) ([]time.Time, error)
}

var step1Fields = []string{
	wizard.FieldFirstName, wizard.FieldLastName, wizard.FieldDateOfBirth,
	wizard.FieldPatientLiaison, wizard.FieldEmail, wizard.FieldPhone,
	wizard.FieldPostalCode, wizard.FieldMessage,
}

var step2Fields = []string{wizard.FieldAppointmentDate, wizard.FieldAppointmentTime}

type fieldView struct {
	Value  string
	Status validation.Result
}

type slotView struct {
	Value    string
	Label    string
	Selected bool
}

type contactView struct {
	Step           wizard.Step
	Fields         map[string]fieldView
	Countries      []phone.Rule
	Country        phone.Rule
	Banner         bool
	BannerDuration time.Duration
	Notice         string
	SlotsEnabled   bool
	Slots          []slotView
	SlotsError     string
	MinDate        string
}

// Contact serves GET and POST /contact. Form posts carry an "action" of
// "next", "back", "submit", "country" or "slots".
func (s *Site) Contact(w http.ResponseWriter, r *http.Request) {
	id, wz := s.wizardFor(w, r)

	status := http.StatusOK
	var notice string
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		notice, status = s.applyForm(r, wz)
	} else {
		// A page load starts over; entered details do not survive navigation.
		wz.Restart()
	}

	s.logger.Debug("site: contact page", "session_id", id, "step", wz.Step().String())
	s.render(w, status, "contact", s.title("Contact Us"), "/contact", s.contactView(r.Context(), wz, notice))
}

func (s *Site) wizardFor(w http.ResponseWriter, r *http.Request) (string, *wizard.Wizard) {
	var existing string
	if c, err := r.Cookie(WizardCookie); err == nil {
		existing = c.Value
	}
	id, wz := s.wizards.GetOrCreate(existing)
	if id != existing {
		http.SetCookie(w, &http.Cookie{
			Name:     WizardCookie,
			Value:    id,
			Path:     "/contact",
			HttpOnly: true,
			Secure:   s.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return id, wz
}

// applyForm copies posted fields into the wizard and performs the action.
func (s *Site) applyForm(r *http.Request, wz *wizard.Wizard) (string, int) {
	countryChanged := false
	if code := r.PostForm.Get("countryCode"); code != "" && code != wz.Country().Code {
		if err := wz.SelectCountry(code); err != nil {
			return "Please choose a country from the list.", http.StatusUnprocessableEntity
		}
		countryChanged = true
	}

	fields := step1Fields
	if wz.Step() == wizard.StepAppointment {
		fields = step2Fields
	}
	for _, f := range fields {
		// The posted phone was typed for the previous country.
		if countryChanged && f == wizard.FieldPhone {
			continue
		}
		if vals, ok := r.PostForm[f]; ok && len(vals) > 0 {
			_ = wz.Update(f, vals[0])
		}
	}

	switch r.PostForm.Get("action") {
	case "next":
		var stepErr *wizard.StepError
		if err := wz.Advance(); errors.As(err, &stepErr) {
			return "Please fix the highlighted fields to continue.", http.StatusUnprocessableEntity
		}
	case "back":
		wz.Retreat()
	case "submit":
		err := wz.Submit(r.Context())
		var stepErr *wizard.StepError
		switch {
		case err == nil:
		case errors.Is(err, wizard.ErrSubmitInFlight):
			return "Your request is already being sent.", http.StatusConflict
		case errors.As(err, &stepErr):
			return "Some details are missing. Please go back and complete them.", http.StatusUnprocessableEntity
		default:
			s.logger.Error("site: contact submission failed", "error", err)
			return "We couldn't send your request. Please try again in a moment.", http.StatusBadGateway
		}
	}
	return "", http.StatusOK
}

func (s *Site) contactView(ctx context.Context, wz *wizard.Wizard, notice string) contactView {
	values := wz.Fields()
	fields := make(map[string]fieldView, len(step1Fields)+len(step2Fields))
	for _, f := range append(append([]string{}, step1Fields...), step2Fields...) {
		fields[f] = fieldView{Value: values[f], Status: wz.Status(f)}
	}

	now := s.now()
	v := contactView{
		Step:           wz.Step(),
		Fields:         fields,
		Countries:      phone.Countries(),
		Country:        wz.Country(),
		Banner:         wz.BannerVisible(now),
		BannerDuration: wz.BannerDuration(),
		Notice:         notice,
		MinDate:        now.Format(time.DateOnly),
	}

	if v.Step == wizard.StepAppointment && s.slots != nil && s.slots.Configured() {
		v.SlotsEnabled = true
		if date := values[wizard.FieldAppointmentDate]; date != "" {
			v.Slots, v.SlotsError = s.listSlots(ctx, date, values[wizard.FieldAppointmentTime])
		}
	}
	return v
}

func (s *Site) listSlots(ctx context.Context, date, selected string) ([]slotView, string) {
	day, err := time.ParseInLocation(time.DateOnly, date, s.slots.Location())
	if err != nil {
		return nil, "Please pick a valid date."
	}
	times, err := s.slots.DaySlots(ctx, day)
	if err != nil {
		s.logger.Warn("site: free slots unavailable", "error", err, "date", date)
		return nil, "We couldn't load available times. Please try again or enter a preferred time."
	}
	if len(times) == 0 {
		return nil, "No times are available on this day. Please choose another date."
	}
	out := make([]slotView, 0, len(times))
	for _, t := range times {
		value := t.Format(time.RFC3339)
		out = append(out, slotView{Value: value, Label: t.Format("3:04 PM"), Selected: value == selected})
	}
	return out, ""
}
