package site

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/stratalace/site/internal/form"
	"github.com/stratalace/site/internal/wizard"
)

// Wizard form controls.
const (
	actionField  = "action"
	stepField    = "step"
	sessionField = "session"

	actionNext     = "next"
	actionPrevious = "previous"
	actionSubmit   = "submit"
)

var stepTitles = map[int]string{
	1: "Your challenge",
	2: "Your company",
	3: "Your project",
	4: "How to reach you",
}

var fieldLabels = map[string]string{
	form.PrimaryChallenge: "What is your primary challenge?",
	form.Urgency:          "How urgent is it?",
	form.ExpectedOutcomes: "What outcomes do you expect?",
	form.CompanyName:      "Company name",
	form.Industry:         "Industry",
	form.CompanySize:      "Company size",
	form.Website:          "Website",
	form.CurrentTechStack: "Current technology stack",
	form.TechExperience:   "Technical maturity",
	form.ProjectScope:     "Describe the project",
	form.BudgetRange:      "Budget range",
	form.Timeline:         "Timeline",
	form.DecisionMakers:   "Who will make the decision?",
	form.ContactName:      "Your name",
	form.Email:            "Work email",
	form.Phone:            "Phone",
	form.Role:             "Your role",
	form.PreferredContact: "Preferred contact method",
	form.Message:          "Anything else?",
}

func (s *Server) controller(st wizard.State) *wizard.Controller {
	return wizard.Resume(st, s.adapter,
		wizard.WithSubmitTimeout(s.submitTimeout),
		wizard.WithLogger(s.logger),
	)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	c := s.controller(wizard.NewState())
	if challenge := r.URL.Query().Get("challenge"); form.IsOption(form.PrimaryChallenge, challenge) {
		c.Update(form.Fields{form.PrimaryChallenge: {challenge}})
	}
	s.renderWizard(w, r, http.StatusOK, c.State())
}

// handleContactPost rebuilds the session from the posted form, applies the
// edit and then the requested transition.
func (s *Server) handleContactPost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	st, edit := stateFromForm(r.PostForm)
	c := s.controller(st)
	c.Update(edit)

	var out wizard.State
	switch r.PostForm.Get(actionField) {
	case actionNext:
		out = c.Next()
	case actionPrevious:
		out = c.Previous()
	case actionSubmit:
		out = c.Submit(r.Context())
	default:
		out = c.State()
	}

	if out.Submitted {
		s.logger.Info("lead captured",
			zap.String("reference", out.Reference),
			zap.String("tier", string(out.Score.Tier)),
		)
		s.render(w, r, http.StatusOK, "thanks.html", "Thank you", thanksData{
			Reference: out.Reference,
			Name:      out.Fields.Get(form.ContactName),
			Tier:      string(out.Score.Tier),
		})
		return
	}
	status := http.StatusOK
	if len(out.Errors) > 0 {
		status = http.StatusUnprocessableEntity
	}
	s.renderWizard(w, r, status, out)
}

// stateFromForm returns the session position carried in the form and the
// field edit to apply. Multi-select keys on the posted step that arrive with
// no values are cleared, since browsers omit unchecked boxes.
func stateFromForm(values map[string][]string) (wizard.State, form.Fields) {
	step, err := strconv.Atoi(first(values[stepField]))
	if err != nil {
		step = wizard.FirstStep
	}
	st := wizard.State{
		Step:      step,
		SessionID: strings.TrimSpace(first(values[sessionField])),
	}
	edit := form.FromValues(values)
	for _, k := range form.StepKeys[step] {
		if form.MultiValued(k) {
			if _, ok := edit[k]; !ok {
				edit[k] = nil
			}
		}
	}
	return st, edit
}

func first(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

type thanksData struct {
	Reference string
	Name      string
	Tier      string
}

type stepView struct {
	Number  int
	Title   string
	Current bool
	Done    bool
}

type optionView struct {
	Value   string
	Label   string
	Checked bool
}

type fieldView struct {
	Key      string
	Label    string
	Value    string
	Options  []optionView
	Error    string
	Required bool
}

type hiddenField struct {
	Name  string
	Value string
}

type wizardView struct {
	Step        int
	StepTitle   string
	Steps       []stepView
	SessionID   string
	Hidden      []hiddenField
	SubmitError string
	IsFirst     bool
	IsLast      bool
	Progress    int

	state wizard.State
}

var requiredFields = map[string]bool{
	form.PrimaryChallenge: true,
	form.Urgency:          true,
	form.CompanyName:      true,
	form.Industry:         true,
	form.CompanySize:      true,
	form.ProjectScope:     true,
	form.BudgetRange:      true,
	form.ContactName:      true,
	form.Email:            true,
}

func newWizardView(st wizard.State) wizardView {
	v := wizardView{
		Step:        st.Step,
		StepTitle:   stepTitles[st.Step],
		SessionID:   st.SessionID,
		SubmitError: st.Errors[wizard.SubmitErrorKey],
		IsFirst:     st.Step == wizard.FirstStep,
		IsLast:      st.Step == wizard.LastStep,
		Progress:    st.Step * 100 / wizard.LastStep,
		state:       st,
	}
	for n := wizard.FirstStep; n <= wizard.LastStep; n++ {
		v.Steps = append(v.Steps, stepView{
			Number:  n,
			Title:   stepTitles[n],
			Current: n == st.Step,
			Done:    n < st.Step,
		})
	}
	onStep := map[string]bool{}
	for _, k := range form.StepKeys[st.Step] {
		onStep[k] = true
	}
	for _, k := range form.AllKeys() {
		if onStep[k] {
			continue
		}
		for _, val := range st.Fields.List(k) {
			v.Hidden = append(v.Hidden, hiddenField{Name: k, Value: val})
		}
	}
	return v
}

// Field describes one input for the templates.
func (v wizardView) Field(key string) fieldView {
	f := fieldView{
		Key:      key,
		Label:    fieldLabels[key],
		Value:    v.state.Fields.Get(key),
		Error:    v.state.Errors[key],
		Required: requiredFields[key],
	}
	for _, o := range form.Options[key] {
		f.Options = append(f.Options, optionView{
			Value:   o.Value,
			Label:   o.Label,
			Checked: v.state.Fields.Has(key, o.Value),
		})
	}
	return f
}

func (s *Server) renderWizard(w http.ResponseWriter, r *http.Request, status int, st wizard.State) {
	s.render(w, r, status, "contact.html", "Start a project", newWizardView(st))
}
