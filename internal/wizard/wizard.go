// Package wizard drives the three-step contact form: patient details,
// appointment choice, then review and submit.
package wizard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/harbor-homecare-web/internal/contact"
	"github.com/wolfman30/harbor-homecare-web/internal/observability/metrics"
	"github.com/wolfman30/harbor-homecare-web/internal/phone"
	"github.com/wolfman30/harbor-homecare-web/internal/validation"
	"github.com/wolfman30/harbor-homecare-web/pkg/logging"
)

const defaultBannerDuration = 5 * time.Second

// Submitter delivers a completed submission.
type Submitter interface {
	Submit(ctx context.Context, sub contact.Submission) error
}

// Option customises a Wizard.
type Option func(*Wizard)

func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

func WithMetrics(m *metrics.SiteMetrics) Option {
	return func(w *Wizard) { w.metrics = m }
}

func WithLogger(l *logging.Logger) Option {
	return func(w *Wizard) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithBannerDuration sets how long the success banner stays up.
func WithBannerDuration(d time.Duration) Option {
	return func(w *Wizard) {
		if d > 0 {
			w.bannerDuration = d
		}
	}
}

// Wizard holds one visitor's form state. It is safe for concurrent use.
type Wizard struct {
	submitter      Submitter
	metrics        *metrics.SiteMetrics
	logger         *logging.Logger
	now            func() time.Time
	bannerDuration time.Duration

	mu          sync.Mutex
	step        Step
	country     phone.Rule
	values      map[string]string
	results     map[string]validation.Result
	submitting  bool
	bannerUntil time.Time
}

// New starts a wizard on step 1 with the default country selected.
func New(submitter Submitter, opts ...Option) *Wizard {
	if submitter == nil {
		panic("wizard: submitter cannot be nil")
	}
	w := &Wizard{
		submitter:      submitter,
		logger:         logging.Default(),
		now:            time.Now,
		bannerDuration: defaultBannerDuration,
		step:           StepPatient,
		country:        phone.MustLookup(phone.DefaultCountry),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.reset()
	return w
}

func (w *Wizard) reset() {
	w.values = make(map[string]string, len(knownFields))
	w.results = make(map[string]validation.Result, len(knownFields))
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) Country() phone.Rule {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.country
}

func (w *Wizard) Value(field string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.values[field]
}

// Fields returns a copy of the entered values.
func (w *Wizard) Fields() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]string, len(w.values))
	for k, v := range w.values {
		out[k] = v
	}
	return out
}

// Status returns the latest validation result for field.
func (w *Wizard) Status(field string) validation.Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.results[field]
}

// Submitting reports whether a submission is in flight.
func (w *Wizard) Submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

// Update stores value for field and re-runs that field's check. Phone input
// is reformatted in the selected country's mask.
func (w *Wizard) Update(field, value string) error {
	if !knownFields[field] {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if field == FieldPhone {
		value = w.country.Format(value)
	}
	w.values[field] = value
	w.results[field] = liveResult(field, value, w.country)
	return nil
}

// SelectCountry switches the phone country and clears the phone field.
func (w *Wizard) SelectCountry(code string) error {
	rule, ok := phone.Lookup(code)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCountry, code)
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	w.country = rule
	delete(w.values, FieldPhone)
	delete(w.results, FieldPhone)
	return nil
}

// Advance moves to the next step when the current one is complete. On
// failure the step is unchanged and a *StepError lists the problems.
func (w *Wizard) Advance() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var failed map[string]validation.Result
	var transition string
	switch w.step {
	case StepPatient:
		failed = checkPatient(w.values, w.country)
		transition = "patient_to_appointment"
	case StepAppointment:
		failed = checkAppointment(w.values)
		transition = "appointment_to_review"
	default:
		return ErrLastStep
	}

	for field, r := range failed {
		w.results[field] = r
	}
	if err := stepError(w.step, failed); err != nil {
		w.metrics.ObserveWizard(transition, false)
		return err
	}
	w.metrics.ObserveWizard(transition, true)
	w.step++
	return nil
}

// Retreat goes back one step, keeping all entered data.
func (w *Wizard) Retreat() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step > StepPatient {
		w.step--
	}
}

// Submit sends the collected data. On success the form is cleared, the
// wizard returns to step 1 and the success banner is shown. On failure
// nothing changes so the visitor can retry.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return ErrSubmitInFlight
	}
	if w.step != StepReview {
		w.mu.Unlock()
		return ErrNotReviewStep
	}
	if err := stepError(StepPatient, checkPatient(w.values, w.country)); err != nil {
		w.mu.Unlock()
		w.metrics.ObserveWizard("submit", false)
		return err
	}
	if err := stepError(StepAppointment, checkAppointment(w.values)); err != nil {
		w.mu.Unlock()
		w.metrics.ObserveWizard("submit", false)
		return err
	}
	sub := w.submission()
	w.submitting = true
	w.mu.Unlock()

	err := w.submitter.Submit(ctx, sub)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
	w.metrics.ObserveWizard("submit", err == nil)
	if err != nil {
		w.logger.Warn("wizard: submission failed", "error", err)
		return fmt.Errorf("wizard: submit: %w", err)
	}

	w.reset()
	w.step = StepPatient
	w.bannerUntil = w.now().Add(w.bannerDuration)
	return nil
}

// Restart clears the form and returns to step 1 with the default country, as
// for a visitor arriving fresh. A pending success banner is kept. It does
// nothing while a submission is in flight.
func (w *Wizard) Restart() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitting {
		return
	}
	w.reset()
	w.step = StepPatient
	w.country = phone.MustLookup(phone.DefaultCountry)
}

// BannerVisible reports whether the success banner should show at now.
func (w *Wizard) BannerVisible(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.bannerUntil.IsZero() && now.Before(w.bannerUntil)
}

// BannerDuration is how long the success banner stays visible.
func (w *Wizard) BannerDuration() time.Duration {
	return w.bannerDuration
}

func (w *Wizard) submission() contact.Submission {
	v := func(field string) string { return strings.TrimSpace(w.values[field]) }

	phoneNumber := v(FieldPhone)
	if e164, err := w.country.E164(phoneNumber); err == nil {
		phoneNumber = e164
	}
	postal := v(FieldPostalCode)
	if postal != "" {
		postal = validation.DigitsOnly(postal)
	}
	return contact.Submission{
		FirstName:       v(FieldFirstName),
		LastName:        v(FieldLastName),
		DateOfBirth:     v(FieldDateOfBirth),
		PatientLiaison:  v(FieldPatientLiaison),
		Email:           v(FieldEmail),
		CountryCode:     w.country.Code,
		Phone:           phoneNumber,
		PostalCode:      postal,
		AppointmentDate: v(FieldAppointmentDate),
		AppointmentTime: v(FieldAppointmentTime),
		Message:         v(FieldMessage),
	}
}
