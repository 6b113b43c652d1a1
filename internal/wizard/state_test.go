package wizard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratalace/site/internal/form"
	"github.com/stratalace/site/internal/form/formtest"
	"github.com/stratalace/site/internal/leads"
	"github.com/stratalace/site/internal/scoring"
)

func stepFields(step int) form.Fields {
	all := formtest.ValidFields()
	out := form.Fields{}
	for _, k := range form.StepKeys[step] {
		if v, ok := all[k]; ok {
			out[k] = v
		}
	}
	return out
}

func TestNewState(t *testing.T) {
	s := NewState()
	assert.Equal(t, FirstStep, s.Step)
	assert.Empty(t, s.Fields)
	assert.Empty(t, s.Errors)
	assert.NotEmpty(t, s.SessionID)
	assert.True(t, s.Editable())
	assert.NotEqual(t, s.SessionID, NewState().SessionID)
}

func TestNextWithInvalidStepKeepsStep(t *testing.T) {
	s := NewState()
	out := Reduce(s, Next{})

	assert.Equal(t, FirstStep, out.Step)
	assert.Contains(t, out.Errors, form.PrimaryChallenge)
	assert.Contains(t, out.Errors, form.Urgency)
	assert.Empty(t, s.Errors, "input state must not be mutated")
}

func TestNextAdvancesAndRescores(t *testing.T) {
	s := Reduce(NewState(), Update{Fields: stepFields(1)})
	out := Reduce(s, Next{})

	assert.Equal(t, 2, out.Step)
	assert.Empty(t, out.Errors)
	assert.Equal(t, scoring.Score(s.Fields), out.Score)
}

func TestNextIsCappedAtLastStep(t *testing.T) {
	s := State{Step: LastStep, Fields: formtest.ValidFields(), Errors: map[string]string{}}
	out := Reduce(s, Next{})
	assert.Equal(t, LastStep, out.Step)
}

func TestPreviousFloorsAtFirstStep(t *testing.T) {
	out := Reduce(NewState(), Previous{})
	assert.Equal(t, FirstStep, out.Step)
}

func TestNextThenPreviousRestoresState(t *testing.T) {
	s := NewState()
	for step := 1; step < LastStep; step++ {
		s = Reduce(s, Update{Fields: stepFields(step)})
		before := s.Fields.Clone()
		beforeStep := s.Step

		s = Reduce(s, Next{})
		require.Equal(t, beforeStep+1, s.Step)
		back := Reduce(s, Previous{})

		assert.Equal(t, beforeStep, back.Step)
		assert.Equal(t, before, back.Fields)
	}
}

func TestAnyEditClearsAllErrors(t *testing.T) {
	s := Reduce(NewState(), Next{})
	require.Len(t, s.Errors, 2)

	// Edit a field that belongs to a different step entirely.
	out := Reduce(s, Update{Fields: form.Fields{form.Phone: {"555-0100"}}})
	assert.Empty(t, out.Errors)
	assert.Equal(t, "555-0100", out.Fields.Get(form.Phone))
	assert.Len(t, s.Errors, 2, "input state must not be mutated")
}

func TestUpdateIsLastWriteWins(t *testing.T) {
	s := Reduce(NewState(), Update{Fields: form.Fields{form.CompanyName: {"First"}}})
	s = Reduce(s, Update{Fields: form.Fields{form.CompanyName: {"Second"}, form.Industry: {"retail"}}})
	assert.Equal(t, "Second", s.Fields.Get(form.CompanyName))
	assert.Equal(t, "retail", s.Fields.Get(form.Industry))
}

func TestRevisitingStepsKeepsEnteredData(t *testing.T) {
	s := NewState()
	for step := 1; step < LastStep; step++ {
		s = Reduce(s, Update{Fields: stepFields(step)})
		s = Reduce(s, Next{})
	}
	require.Equal(t, LastStep, s.Step)
	for i := 0; i < 5; i++ {
		s = Reduce(s, Previous{})
	}
	assert.Equal(t, FirstStep, s.Step)
	assert.Equal(t, "Acme Logistics", s.Fields.Get(form.CompanyName))
	assert.Equal(t, formtest.ValidFields().Get(form.ProjectScope), s.Fields.Get(form.ProjectScope))
}

func TestSubmitStartedOnEarlierStepActsLikeNext(t *testing.T) {
	s := Reduce(NewState(), SubmitStarted{})
	assert.False(t, s.Submitting)
	assert.Equal(t, FirstStep, s.Step)
	assert.NotEmpty(t, s.Errors)
}

func TestSubmitLifecycle(t *testing.T) {
	s := State{Step: LastStep, Fields: formtest.ValidFields(), Errors: map[string]string{}}

	s = Reduce(s, SubmitStarted{})
	require.True(t, s.Submitting)
	assert.False(t, s.Editable())
	assert.Equal(t, scoring.Score(s.Fields), s.Score)

	// Edits and navigation are ignored while submitting.
	blocked := Reduce(s, Update{Fields: form.Fields{form.CompanyName: {"Changed"}}})
	assert.Equal(t, s, blocked)
	assert.Equal(t, s, Reduce(s, Previous{}))

	s = Reduce(s, SubmitSucceeded{Reference: "LEAD-1"})
	assert.True(t, s.Submitted)
	assert.False(t, s.Submitting)
	assert.Equal(t, "LEAD-1", s.Reference)

	after := Reduce(s, Update{Fields: form.Fields{form.CompanyName: {"Changed"}}})
	assert.Equal(t, "Acme Logistics", after.Fields.Get(form.CompanyName))
	assert.Equal(t, s, Reduce(s, SubmitStarted{}))
}

func TestSubmitFailedTransportShowsBanner(t *testing.T) {
	s := State{Step: LastStep, Fields: formtest.ValidFields(), Errors: map[string]string{}}
	s = Reduce(s, SubmitStarted{})
	s = Reduce(s, SubmitFailed{Err: errors.New("connection refused")})

	assert.True(t, s.Editable())
	assert.Equal(t, LastStep, s.Step)
	assert.Equal(t, map[string]string{SubmitErrorKey: leads.GenericSubmitMessage}, s.Errors)
	assert.Equal(t, "Acme Logistics", s.Fields.Get(form.CompanyName))
}

func TestSubmitFailedValidationMovesToOwningStep(t *testing.T) {
	s := State{Step: LastStep, Fields: formtest.ValidFields(), Errors: map[string]string{}}
	s = Reduce(s, SubmitStarted{})
	s = Reduce(s, SubmitFailed{Err: &leads.ValidationError{Errors: map[string]string{
		form.ProjectScope: "Please provide at least 50 characters describing your project",
		form.Email:        "bad",
	}}})

	assert.Equal(t, 3, s.Step)
	assert.Equal(t, "bad", s.Errors[form.Email])
	assert.Contains(t, s.Errors, form.ProjectScope)
	assert.NotContains(t, s.Errors, SubmitErrorKey)
}

func TestSubmitFailedValidationUnknownKey(t *testing.T) {
	s := State{Step: LastStep, Fields: formtest.ValidFields(), Errors: map[string]string{}}
	s = Reduce(s, SubmitStarted{})
	s = Reduce(s, SubmitFailed{Err: &leads.ValidationError{Errors: map[string]string{"captcha": "nope"}}})

	assert.Equal(t, LastStep, s.Step)
	assert.Equal(t, leads.GenericSubmitMessage, s.Errors[SubmitErrorKey])
}

func TestAdapterResultsIgnoredUnlessSubmitting(t *testing.T) {
	s := NewState()
	assert.Equal(t, s, Reduce(s, SubmitSucceeded{Reference: "x"}))
	assert.Equal(t, s, Reduce(s, SubmitFailed{Err: errors.New("x")}))
}
