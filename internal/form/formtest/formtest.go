// Package formtest provides field fixtures for tests.
package formtest

import (
	"strings"

	"github.com/stratalace/site/internal/form"
)

// ValidScope is exactly form.MinProjectScope characters long.
var ValidScope = strings.Repeat("x", form.MinProjectScope)

// ValidFields returns a field bag that passes every step validator.
func ValidFields() form.Fields {
	return form.Fields{
		form.PrimaryChallenge: {"ai-automation"},
		form.Urgency:          {"1-3-months"},
		form.ExpectedOutcomes: {"reduce-costs", "improve-efficiency"},
		form.CompanyName:      {"Acme Logistics"},
		form.Industry:         {"logistics"},
		form.CompanySize:      {"mid-market"},
		form.CurrentTechStack: {"aws", "salesforce"},
		form.TechExperience:   {"intermediate"},
		form.ProjectScope:     {"Automate dispatch planning across our three regional warehouses and integrate with the TMS."},
		form.BudgetRange:      {"100k-250k"},
		form.DecisionMakers:   {"Head of Operations, Director of IT"},
		form.ContactName:      {"Jordan Lee"},
		form.Email:            {"jordan@acme.example"},
	}
}
