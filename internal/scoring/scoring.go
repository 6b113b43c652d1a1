// Package scoring turns the business-intent answers of a contact wizard into
// a comparable lead priority for sales triage.
package scoring

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/stratalace/site/internal/form"
)

type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Sub-score ceilings. They sum to MaxTotal.
const (
	MaxBudget        = 30
	MaxUrgency       = 25
	MaxCompanySize   = 20
	MaxTechReadiness = 15
	MaxDecisionMaker = 10
	MaxTotal         = MaxBudget + MaxUrgency + MaxCompanySize + MaxTechReadiness + MaxDecisionMaker

	HighThreshold   = 80
	MediumThreshold = 50

	// DefaultTechReadiness applies when tech experience is unanswered.
	DefaultTechReadiness = 5
)

// LeadScore is the immutable output of Score.
type LeadScore struct {
	Budget        int  `json:"budget" yaml:"budget"`
	Urgency       int  `json:"urgency" yaml:"urgency"`
	CompanySize   int  `json:"companySize" yaml:"companySize"`
	TechReadiness int  `json:"techReadiness" yaml:"techReadiness"`
	DecisionMaker int  `json:"decisionMaker" yaml:"decisionMaker"`
	Total         int  `json:"total" yaml:"total"`
	Tier          Tier `json:"tier" yaml:"tier"`
}

var budgetPoints = map[string]int{
	"over-500k": 30,
	"250k-500k": 25,
	"100k-250k": 20,
	"50k-100k":  15,
	"under-50k": 10,
}

var urgencyPoints = map[string]int{
	"immediate":   25,
	"1-3-months":  20,
	"3-6-months":  12,
	"6-12-months": 6,
	"no-rush":     0,
}

var companySizePoints = map[string]int{
	"enterprise": 20,
	"large":      16,
	"mid-market": 12,
	"small":      8,
	"startup":    5,
}

var techReadinessPoints = map[string]int{
	"advanced":     15,
	"intermediate": 10,
	"beginner":     6,
}

// roleRule matches decision-maker keywords as substrings of each word, so
// "SVP", "CTOs" and "cofounder" all hit. Rules are checked in order and the
// first hit wins: "CEO and Manager" scores as a CEO.
type roleRule struct {
	keywords []string
	points   int
}

var decisionMakerRules = []roleRule{
	{keywords: []string{"ceo", "cto", "founder"}, points: 10},
	{keywords: []string{"director", "vp"}, points: 7},
	{keywords: []string{"manager"}, points: 5},
}

// keywordExceptions lists words that contain a keyword without meaning the
// role. "director" contains "cto" and must score as a director.
var keywordExceptions = map[string][]string{
	"cto": {"director"},
}

// unmatchedDecisionMaker applies to non-empty text that hits no rule.
const unmatchedDecisionMaker = 3

// Score computes a fresh LeadScore from fields. It is pure.
func Score(f form.Fields) LeadScore {
	s := LeadScore{
		Budget:        capped(budgetPoints[f.Get(form.BudgetRange)], MaxBudget),
		Urgency:       capped(urgencyPoints[f.Get(form.Urgency)], MaxUrgency),
		CompanySize:   capped(companySizePoints[f.Get(form.CompanySize)], MaxCompanySize),
		TechReadiness: capped(techReadiness(f.Get(form.TechExperience)), MaxTechReadiness),
		DecisionMaker: capped(decisionMaker(f.Get(form.DecisionMakers)), MaxDecisionMaker),
	}
	s.Total = s.Budget + s.Urgency + s.CompanySize + s.TechReadiness + s.DecisionMaker
	s.Tier = TierFor(s.Total)
	return s
}

// TierFor buckets a total.
func TierFor(total int) Tier {
	switch {
	case total >= HighThreshold:
		return TierHigh
	case total >= MediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

func techReadiness(v string) int {
	if p, ok := techReadinessPoints[v]; ok {
		return p
	}
	return DefaultTechReadiness
}

func decisionMaker(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, rule := range decisionMakerRules {
		for _, kw := range rule.keywords {
			for _, w := range words {
				if strings.Contains(w, kw) && !excepted(w, kw) {
					return rule.points
				}
			}
		}
	}
	return unmatchedDecisionMaker
}

func excepted(word, keyword string) bool {
	for _, ex := range keywordExceptions[keyword] {
		if strings.Contains(word, ex) {
			return true
		}
	}
	return false
}

func capped(v, ceiling int) int {
	if v < 0 {
		return 0
	}
	if v > ceiling {
		return ceiling
	}
	return v
}

// Encode serializes s for the transport payload.
func (s LeadScore) Encode() string {
	b, _ := json.Marshal(s)
	return string(b)
}

// Decode parses a serialized score and checks it is internally consistent.
func Decode(raw string) (LeadScore, error) {
	var s LeadScore
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return LeadScore{}, fmt.Errorf("decode lead score: %w", err)
	}
	if err := s.Validate(); err != nil {
		return LeadScore{}, err
	}
	return s, nil
}

// Validate checks bounds, the total and the tier.
func (s LeadScore) Validate() error {
	bounds := []struct {
		name      string
		val, ceil int
	}{
		{"budget", s.Budget, MaxBudget},
		{"urgency", s.Urgency, MaxUrgency},
		{"companySize", s.CompanySize, MaxCompanySize},
		{"techReadiness", s.TechReadiness, MaxTechReadiness},
		{"decisionMaker", s.DecisionMaker, MaxDecisionMaker},
	}
	sum := 0
	for _, b := range bounds {
		if b.val < 0 || b.val > b.ceil {
			return fmt.Errorf("lead score %s=%d out of range [0,%d]", b.name, b.val, b.ceil)
		}
		sum += b.val
	}
	if sum != s.Total {
		return fmt.Errorf("lead score total=%d does not match sum %d", s.Total, sum)
	}
	if TierFor(s.Total) != s.Tier {
		return fmt.Errorf("lead score tier=%q inconsistent with total %d", s.Tier, s.Total)
	}
	return nil
}
