// Package wizard implements the multi-step contact form as an explicit state
// value and a pure reducer. Controller drives the reducer and owns the single
// asynchronous step, handing the payload to a leads.SubmissionAdapter.
package wizard

import (
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/stratalace/site/internal/form"
	"github.com/stratalace/site/internal/leads"
	"github.com/stratalace/site/internal/scoring"
)

const (
	FirstStep = 1
	LastStep  = form.StepCount

	// SubmitErrorKey holds the generic banner shown after a failed submission.
	SubmitErrorKey = "submit"
)

// State is one wizard session. Reduce never mutates a State's maps; it
// returns a new State instead.
type State struct {
	Step       int
	Fields     form.Fields
	Errors     map[string]string
	Score      scoring.LeadScore
	SessionID  string
	Submitting bool
	Submitted  bool
	Reference  string
}

// NewState starts a session at step 1 with no answers.
func NewState() State {
	return State{
		Step:      FirstStep,
		Fields:    form.Fields{},
		Errors:    map[string]string{},
		Score:     scoring.Score(form.Fields{}),
		SessionID: newSessionID(),
	}
}

func newSessionID() string {
	id, err := gonanoid.New(16)
	if err != nil {
		return fmt.Sprintf("s%d", time.Now().UnixNano())
	}
	return id
}

// Editable reports whether the session still accepts edits and transitions.
func (s State) Editable() bool {
	return !s.Submitting && !s.Submitted
}

// Action is a discrete user or adapter event.
type Action interface {
	isAction()
}

type (
	// Update merges edited fields and clears every displayed error.
	Update struct{ Fields form.Fields }
	// Next validates the current step and advances on success.
	Next struct{}
	// Previous steps back without validating.
	Previous struct{}
	// SubmitStarted validates the final step and enters the submitting state.
	SubmitStarted struct{}
	// SubmitSucceeded ends the session.
	SubmitSucceeded struct{ Reference string }
	// SubmitFailed returns to an editable state with the failure shown.
	SubmitFailed struct{ Err error }
)

func (Update) isAction()          {}
func (Next) isAction()            {}
func (Previous) isAction()        {}
func (SubmitStarted) isAction()   {}
func (SubmitSucceeded) isAction() {}
func (SubmitFailed) isAction()    {}

// Reduce applies a to s and returns the resulting state.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Update:
		if !s.Editable() {
			return s
		}
		s.Fields = s.Fields.Merge(a.Fields)
		s.Errors = map[string]string{}
		return s

	case Next:
		if !s.Editable() {
			return s
		}
		if errs := form.ValidateStep(s.Step, s.Fields); len(errs) > 0 {
			s.Errors = errs
			return s
		}
		s.Step = clampStep(s.Step + 1)
		s.Errors = map[string]string{}
		s.Score = scoring.Score(s.Fields)
		return s

	case Previous:
		if !s.Editable() {
			return s
		}
		s.Step = clampStep(s.Step - 1)
		return s

	case SubmitStarted:
		if !s.Editable() {
			return s
		}
		if s.Step != LastStep {
			return Reduce(s, Next{})
		}
		if errs := form.ValidateStep(LastStep, s.Fields); len(errs) > 0 {
			s.Errors = errs
			return s
		}
		s.Errors = map[string]string{}
		s.Score = scoring.Score(s.Fields)
		s.Submitting = true
		return s

	case SubmitSucceeded:
		if !s.Submitting {
			return s
		}
		s.Submitting = false
		s.Submitted = true
		s.Reference = a.Reference
		s.Errors = map[string]string{}
		return s

	case SubmitFailed:
		if !s.Submitting {
			return s
		}
		s.Submitting = false
		s.Errors, s.Step = failureErrors(s.Step, a.Err)
		return s
	}
	return s
}

// failureErrors maps an adapter error onto field messages. Validation errors
// move the wizard back to the earliest step that owns a rejected field.
func failureErrors(step int, err error) (map[string]string, int) {
	var ve *leads.ValidationError
	if !errors.As(err, &ve) || len(ve.Errors) == 0 {
		return map[string]string{SubmitErrorKey: leads.GenericSubmitMessage}, step
	}
	out := make(map[string]string, len(ve.Errors))
	target := 0
	for k, msg := range ve.Errors {
		owner := ownerStep(k)
		if owner == 0 {
			out[SubmitErrorKey] = leads.GenericSubmitMessage
			continue
		}
		out[k] = msg
		if target == 0 || owner < target {
			target = owner
		}
	}
	if target == 0 {
		target = step
	}
	return out, target
}

func ownerStep(key string) int {
	for step := FirstStep; step <= LastStep; step++ {
		for _, k := range form.StepKeys[step] {
			if k == key {
				return step
			}
		}
	}
	return 0
}

func clampStep(step int) int {
	if step < FirstStep {
		return FirstStep
	}
	if step > LastStep {
		return LastStep
	}
	return step
}
