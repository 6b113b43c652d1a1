package form

import (
	"regexp"
	"strings"
)

// MinProjectScope is the minimum trimmed length of the project scope description.
const MinProjectScope = 50

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateStep runs the validator owned by step. The returned map only holds
// keys belonging to that step; an empty map means the step is valid.
func ValidateStep(step int, f Fields) map[string]string {
	switch step {
	case 1:
		return validateChallenge(f)
	case 2:
		return validateCompany(f)
	case 3:
		return validateProject(f)
	case 4:
		return validateContact(f)
	default:
		return map[string]string{}
	}
}

// ValidateAll merges every step's errors. The intake handler uses it as its schema.
func ValidateAll(f Fields) map[string]string {
	out := map[string]string{}
	for step := 1; step <= StepCount; step++ {
		for k, v := range ValidateStep(step, f) {
			out[k] = v
		}
	}
	return out
}

// FirstInvalidStep returns the lowest step with errors, or 0 when all pass.
func FirstInvalidStep(f Fields) int {
	for step := 1; step <= StepCount; step++ {
		if len(ValidateStep(step, f)) > 0 {
			return step
		}
	}
	return 0
}

func validateChallenge(f Fields) map[string]string {
	errs := map[string]string{}
	requireOption(errs, f, PrimaryChallenge, "Please select your primary challenge")
	requireOption(errs, f, Urgency, "Please select how urgent this is")
	return errs
}

func validateCompany(f Fields) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(f.Get(CompanyName)) == "" {
		errs[CompanyName] = "Company name is required"
	}
	requireOption(errs, f, Industry, "Please select your industry")
	requireOption(errs, f, CompanySize, "Please select your company size")
	return errs
}

func validateProject(f Fields) map[string]string {
	errs := map[string]string{}
	scope := strings.TrimSpace(f.Get(ProjectScope))
	switch {
	case scope == "":
		errs[ProjectScope] = "Please describe your project"
	case len([]rune(scope)) < MinProjectScope:
		errs[ProjectScope] = "Please provide at least 50 characters describing your project"
	}
	requireOption(errs, f, BudgetRange, "Please select a budget range")
	return errs
}

func validateContact(f Fields) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(f.Get(ContactName)) == "" {
		errs[ContactName] = "Your name is required"
	}
	if !ValidEmail(f.Get(Email)) {
		errs[Email] = "Please enter a valid email address"
	}
	return errs
}

// ValidEmail reports whether s looks like local@domain.tld.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

func requireOption(errs map[string]string, f Fields, key, msg string) {
	if !IsOption(key, f.Get(key)) {
		errs[key] = msg
	}
}
