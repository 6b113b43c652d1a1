package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratalace/site/internal/form"
)

func TestScoreTopLead(t *testing.T) {
	got := Score(form.Fields{
		form.BudgetRange:    {"over-500k"},
		form.Urgency:        {"immediate"},
		form.CompanySize:    {"enterprise"},
		form.TechExperience: {"advanced"},
		form.DecisionMakers: {"Our CEO signs off"},
	})
	assert.Equal(t, LeadScore{
		Budget:        30,
		Urgency:       25,
		CompanySize:   20,
		TechReadiness: 15,
		DecisionMaker: 10,
		Total:         100,
		Tier:          TierHigh,
	}, got)
}

func TestScoreSmallLead(t *testing.T) {
	for _, urgency := range []string{"no-rush", ""} {
		got := Score(form.Fields{
			form.BudgetRange: {"under-50k"},
			form.Urgency:     {urgency},
			form.CompanySize: {"startup"},
		})
		assert.LessOrEqual(t, got.Total, 33)
		assert.Equal(t, TierLow, got.Tier)
		assert.Equal(t, DefaultTechReadiness, got.TechReadiness)
		assert.Equal(t, 0, got.DecisionMaker)
	}
}

func TestScoreEmptyFields(t *testing.T) {
	got := Score(form.Fields{})
	assert.Equal(t, LeadScore{TechReadiness: DefaultTechReadiness, Total: DefaultTechReadiness, Tier: TierLow}, got)
}

func TestDecisionMakerPriority(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"CEO", 10},
		{"the cto and a manager", 10},
		{"Co-Founder", 10},
		{"CEO and Manager", 10},
		{"Manager and CEO", 10},
		{"Director of Ops", 7},
		{"Director of IT", 7},
		{"Managing Director", 7},
		{"SVP of Engineering", 7},
		{"EVP Operations", 7},
		{"cofounder", 10},
		{"CTOs and VPs", 10},
		{"vp-level sponsor", 7},
		{"our managers", 5},
		{"VP Engineering, project manager", 7},
		{"Procurement manager", 5},
		{"the board", 3},
		{"!!!", 3},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, decisionMaker(tc.text))
		})
	}
}

func TestTierThresholds(t *testing.T) {
	for total := 0; total <= MaxTotal; total++ {
		tier := TierFor(total)
		switch {
		case total >= 80:
			assert.Equal(t, TierHigh, tier, "total %d", total)
		case total >= 50:
			assert.Equal(t, TierMedium, tier, "total %d", total)
		default:
			assert.Equal(t, TierLow, tier, "total %d", total)
		}
	}
}

// Every combination of enumerated answers stays in range, keeps the tier
// consistent and scores identically when repeated.
func TestScoreInvariantsAcrossOptions(t *testing.T) {
	withBlank := func(key string) []string {
		out := []string{""}
		for _, o := range form.Options[key] {
			out = append(out, o.Value)
		}
		return out
	}
	roles := []string{"", "CEO", "vp sales", "manager", "intern"}

	for _, budget := range withBlank(form.BudgetRange) {
		for _, urgency := range withBlank(form.Urgency) {
			for _, size := range withBlank(form.CompanySize) {
				for _, tech := range withBlank(form.TechExperience) {
					for _, role := range roles {
						f := form.Fields{
							form.BudgetRange:    {budget},
							form.Urgency:        {urgency},
							form.CompanySize:    {size},
							form.TechExperience: {tech},
							form.DecisionMakers: {role},
						}
						s := Score(f)
						require.NoError(t, s.Validate())
						require.GreaterOrEqual(t, s.Total, 0)
						require.LessOrEqual(t, s.Total, MaxTotal)
						require.Equal(t, s, Score(f))
					}
				}
			}
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	s := Score(form.Fields{form.BudgetRange: {"250k-500k"}, form.Urgency: {"3-6-months"}})
	got, err := Decode(s.Encode())
	require.NoError(t, err)
	assert.Equal(t, s, got)
	assert.JSONEq(t, `{"budget":25,"urgency":12,"companySize":0,"techReadiness":5,"decisionMaker":0,"total":42,"tier":"low"}`, s.Encode())
}

func TestDecodeRejectsCorruptScores(t *testing.T) {
	for _, raw := range []string{
		"",
		"{not json",
		`{"budget":31,"total":31,"tier":"low"}`,
		`{"budget":10,"total":99,"tier":"high"}`,
		`{"budget":30,"urgency":25,"total":55,"tier":"low"}`,
	} {
		_, err := Decode(raw)
		assert.Error(t, err, raw)
	}
}
