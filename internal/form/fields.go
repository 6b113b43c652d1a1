package form

import "strings"

// Field keys shared by the wizard, the transport payload and the intake handler.
const (
	PrimaryChallenge = "primaryChallenge"
	Urgency          = "urgency"
	ExpectedOutcomes = "expectedOutcomes"

	CompanyName      = "companyName"
	Industry         = "industry"
	CompanySize      = "companySize"
	Website          = "website"
	CurrentTechStack = "currentTechStack"
	TechExperience   = "techExperience"

	ProjectScope   = "projectScope"
	BudgetRange    = "budgetRange"
	Timeline       = "timeline"
	DecisionMakers = "decisionMakers"

	ContactName      = "contactName"
	Email            = "email"
	Phone            = "phone"
	Role             = "role"
	PreferredContact = "preferredContact"
	Message          = "message"
)

// ListSeparator joins multi-select values in flat payloads.
const ListSeparator = ", "

// StepCount is the number of wizard steps.
const StepCount = 4

// StepKeys lists the field keys owned by each step, in display order.
var StepKeys = map[int][]string{
	1: {PrimaryChallenge, Urgency, ExpectedOutcomes},
	2: {CompanyName, Industry, CompanySize, Website, CurrentTechStack, TechExperience},
	3: {ProjectScope, BudgetRange, Timeline, DecisionMakers},
	4: {ContactName, Email, Phone, Role, PreferredContact, Message},
}

var multiValued = map[string]bool{
	ExpectedOutcomes: true,
	CurrentTechStack: true,
}

var known = func() map[string]bool {
	out := map[string]bool{}
	for _, keys := range StepKeys {
		for _, k := range keys {
			out[k] = true
		}
	}
	return out
}()

// Known reports whether key is one of the wizard's fields.
func Known(key string) bool { return known[key] }

// MultiValued reports whether key holds an ordered list of selections.
func MultiValued(key string) bool { return multiValued[key] }

// AllKeys returns every field key in step order.
func AllKeys() []string {
	var out []string
	for step := 1; step <= StepCount; step++ {
		out = append(out, StepKeys[step]...)
	}
	return out
}

// Fields is the wizard's accumulated value bag. Single-valued fields hold one
// element; multi-select fields hold the selections in order.
type Fields map[string][]string

// Get returns the first value for key, or "".
func (f Fields) Get(key string) string {
	if vs := f[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// List returns the values for key.
func (f Fields) List(key string) []string {
	return f[key]
}

// Has reports whether the given option is selected for key.
func (f Fields) Has(key, value string) bool {
	for _, v := range f[key] {
		if v == value {
			return true
		}
	}
	return false
}

// Set stores a single value.
func (f Fields) Set(key, value string) {
	f[key] = []string{value}
}

// Clone returns a deep copy.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, vs := range f {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// Merge returns a copy of f with the known keys of update written over it.
// Multi-select keys replace the whole list.
func (f Fields) Merge(update Fields) Fields {
	out := f.Clone()
	for k, vs := range update {
		if !known[k] {
			continue
		}
		if !multiValued[k] && len(vs) > 1 {
			vs = vs[:1]
		}
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// Flatten renders f as a flat key->string map, joining lists with ListSeparator.
// Empty values are omitted.
func (f Fields) Flatten() map[string]string {
	out := make(map[string]string, len(f))
	for k, vs := range f {
		if !known[k] {
			continue
		}
		var parts []string
		for _, v := range vs {
			if strings.TrimSpace(v) != "" {
				parts = append(parts, v)
			}
		}
		if len(parts) == 0 {
			continue
		}
		out[k] = strings.Join(parts, ListSeparator)
	}
	return out
}

// FromFlat rebuilds Fields from a flat map, splitting multi-select values on
// ListSeparator. Unknown keys are ignored.
func FromFlat(flat map[string]string) Fields {
	out := Fields{}
	for k, v := range flat {
		if !known[k] {
			continue
		}
		if multiValued[k] {
			var list []string
			for _, part := range strings.Split(v, strings.TrimSpace(ListSeparator)) {
				if p := strings.TrimSpace(part); p != "" {
					list = append(list, p)
				}
			}
			out[k] = list
			continue
		}
		out[k] = []string{v}
	}
	return out
}

// FromValues picks the known keys out of url.Values-shaped form data.
func FromValues(values map[string][]string) Fields {
	out := Fields{}
	for k, vs := range values {
		if !known[k] {
			continue
		}
		if !multiValued[k] && len(vs) > 1 {
			vs = vs[:1]
		}
		out[k] = append([]string(nil), vs...)
	}
	return out
}
