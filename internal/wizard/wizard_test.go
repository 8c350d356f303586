package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wolfman30/harbor-homecare-web/internal/contact"
	"github.com/wolfman30/harbor-homecare-web/internal/validation"
)

type recordingSubmitter struct {
	mu   sync.Mutex
	subs []contact.Submission
	err  error
}

func (r *recordingSubmitter) Submit(_ context.Context, sub contact.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, sub)
	return r.err
}

func fillPatient(t *testing.T, w *Wizard) {
	t.Helper()
	for field, value := range map[string]string{
		FieldFirstName:   "Ada",
		FieldLastName:    "Lovelace",
		FieldDateOfBirth: "1950-12-10",
		FieldEmail:       "ada@example.ca",
		FieldPhone:       "7805550100",
		FieldMessage:     "Weekday companionship, please.",
	} {
		require.NoError(t, w.Update(field, value))
	}
}

func fillAppointment(t *testing.T, w *Wizard) {
	t.Helper()
	require.NoError(t, w.Update(FieldAppointmentDate, "2026-10-21"))
	require.NoError(t, w.Update(FieldAppointmentTime, "2026-10-21T09:00:00-06:00"))
}

func TestUpdate_LiveValidation(t *testing.T) {
	w := New(&recordingSubmitter{})

	require.NoError(t, w.Update(FieldEmail, "ada@example"))
	assert.Equal(t, validation.Invalid, w.Status(FieldEmail).Status)

	require.NoError(t, w.Update(FieldEmail, "ada@example.ca"))
	assert.Equal(t, validation.Valid, w.Status(FieldEmail).Status)

	require.NoError(t, w.Update(FieldPostalCode, "12a45"))
	assert.Equal(t, validation.Fail("Postal code is too short (4 of 5 digits)"), w.Status(FieldPostalCode))

	require.NoError(t, w.Update(FieldPostalCode, ""))
	assert.Equal(t, validation.Idle, w.Status(FieldPostalCode).Status)

	assert.ErrorIs(t, w.Update("favouriteColour", "teal"), ErrUnknownField)
}

func TestUpdate_FormatsPhoneForCountry(t *testing.T) {
	w := New(&recordingSubmitter{})

	require.NoError(t, w.Update(FieldPhone, "780555"))
	assert.Equal(t, "(780) 555", w.Value(FieldPhone))

	require.NoError(t, w.Update(FieldPhone, "78055501009999"))
	assert.Equal(t, "(780) 555-0100", w.Value(FieldPhone))
	assert.True(t, w.Status(FieldPhone).OK())
}

func TestSelectCountry_ClearsPhone(t *testing.T) {
	w := New(&recordingSubmitter{})
	require.NoError(t, w.Update(FieldPhone, "7805550100"))

	require.NoError(t, w.SelectCountry("GB"))
	assert.Equal(t, "GB", w.Country().Code)
	assert.Empty(t, w.Value(FieldPhone))
	assert.Equal(t, validation.Idle, w.Status(FieldPhone).Status)

	assert.ErrorIs(t, w.SelectCountry("ZZ"), ErrUnknownCountry)
	assert.Equal(t, "GB", w.Country().Code)
}

func TestAdvance_BlocksIncompleteStep(t *testing.T) {
	w := New(&recordingSubmitter{})
	require.NoError(t, w.Update(FieldFirstName, "Ada"))
	require.NoError(t, w.Update(FieldMessage, "short"))
	require.NoError(t, w.Update(FieldPostalCode, "123"))

	err := w.Advance()
	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, StepPatient, stepErr.Step)

	want := map[string]string{
		FieldLastName:    "Last name is required",
		FieldDateOfBirth: "Date of birth is required",
		FieldEmail:       "Email is required",
		FieldPhone:       "Phone number is required",
		FieldMessage:     "Message must be at least 10 characters",
		FieldPostalCode:  "Postal code is too short (3 of 5 digits)",
	}
	if diff := cmp.Diff(want, stepErr.Fields); diff != "" {
		t.Errorf("step errors mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, StepPatient, w.Step())
	assert.Equal(t, validation.Invalid, w.Status(FieldLastName).Status)
}

func TestAdvance_ThroughAllSteps(t *testing.T) {
	w := New(&recordingSubmitter{})
	fillPatient(t, w)

	require.NoError(t, w.Advance())
	assert.Equal(t, StepAppointment, w.Step())

	var stepErr *StepError
	require.True(t, errors.As(w.Advance(), &stepErr))
	assert.Equal(t, StepAppointment, w.Step())
	assert.Len(t, stepErr.Fields, 2)

	fillAppointment(t, w)
	require.NoError(t, w.Advance())
	assert.Equal(t, StepReview, w.Step())
	assert.ErrorIs(t, w.Advance(), ErrLastStep)
}

func TestRetreat_KeepsData(t *testing.T) {
	w := New(&recordingSubmitter{})
	fillPatient(t, w)
	require.NoError(t, w.Advance())
	fillAppointment(t, w)
	require.NoError(t, w.Advance())

	w.Retreat()
	assert.Equal(t, StepAppointment, w.Step())
	w.Retreat()
	w.Retreat()
	assert.Equal(t, StepPatient, w.Step())
	assert.Equal(t, "2026-10-21", w.Value(FieldAppointmentDate))
	assert.Equal(t, "Ada", w.Value(FieldFirstName))
}

func TestRestart_ClearsFormKeepsBanner(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	w := New(&recordingSubmitter{}, WithClock(func() time.Time { return now }))
	fillPatient(t, w)
	require.NoError(t, w.Advance())
	fillAppointment(t, w)
	require.NoError(t, w.Advance())
	require.NoError(t, w.Submit(context.Background()))

	require.NoError(t, w.SelectCountry("GB"))
	fillPatient(t, w)
	require.NoError(t, w.Advance())

	w.Restart()
	assert.Equal(t, StepPatient, w.Step())
	assert.Equal(t, "CA", w.Country().Code)
	assert.Empty(t, w.Fields())
	assert.Equal(t, validation.Idle, w.Status(FieldEmail).Status)
	assert.True(t, w.BannerVisible(now))
}

func TestSubmit_OnlyFromReview(t *testing.T) {
	sub := &recordingSubmitter{}
	w := New(sub)
	fillPatient(t, w)

	assert.ErrorIs(t, w.Submit(context.Background()), ErrNotReviewStep)
	assert.Empty(t, sub.subs)
}

func TestSubmit_SuccessResetsAndShowsBanner(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	sub := &recordingSubmitter{}
	w := New(sub, WithClock(func() time.Time { return now }), WithBannerDuration(5*time.Second))

	fillPatient(t, w)
	require.NoError(t, w.Update(FieldPostalCode, "12-345"))
	require.NoError(t, w.Advance())
	fillAppointment(t, w)
	require.NoError(t, w.Advance())

	require.NoError(t, w.Submit(context.Background()))

	want := contact.Submission{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		DateOfBirth:     "1950-12-10",
		Email:           "ada@example.ca",
		CountryCode:     "CA",
		Phone:           "+17805550100",
		PostalCode:      "12345",
		AppointmentDate: "2026-10-21",
		AppointmentTime: "2026-10-21T09:00:00-06:00",
		Message:         "Weekday companionship, please.",
	}
	require.Len(t, sub.subs, 1)
	if diff := cmp.Diff(want, sub.subs[0]); diff != "" {
		t.Errorf("submission mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, StepPatient, w.Step())
	assert.Empty(t, w.Fields())
	assert.True(t, w.BannerVisible(now.Add(4*time.Second)))
	assert.False(t, w.BannerVisible(now.Add(5*time.Second)))
}

func TestSubmit_FailureKeepsState(t *testing.T) {
	sub := &recordingSubmitter{err: errors.New("upstream said no")}
	w := New(sub)
	fillPatient(t, w)
	require.NoError(t, w.Advance())
	fillAppointment(t, w)
	require.NoError(t, w.Advance())

	err := w.Submit(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream said no")
	assert.Equal(t, StepReview, w.Step())
	assert.Equal(t, "Ada", w.Value(FieldFirstName))
	assert.False(t, w.BannerVisible(time.Now()))
	assert.False(t, w.Submitting())

	sub.err = nil
	require.NoError(t, w.Submit(context.Background()))
	assert.Len(t, sub.subs, 2)
}

type blockingSubmitter struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSubmitter) Submit(context.Context, contact.Submission) error {
	b.entered <- struct{}{}
	<-b.release
	return nil
}

func TestSubmit_OneInFlight(t *testing.T) {
	defer goleak.VerifyNone(t)

	sub := &blockingSubmitter{entered: make(chan struct{}, 1), release: make(chan struct{})}
	w := New(sub)
	fillPatient(t, w)
	require.NoError(t, w.Advance())
	fillAppointment(t, w)
	require.NoError(t, w.Advance())

	done := make(chan error, 1)
	go func() { done <- w.Submit(context.Background()) }()
	<-sub.entered

	assert.True(t, w.Submitting())
	assert.ErrorIs(t, w.Submit(context.Background()), ErrSubmitInFlight)

	close(sub.release)
	require.NoError(t, <-done)
	assert.False(t, w.Submitting())
}
