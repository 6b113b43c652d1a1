package form

// Option is one enumerated choice for a select, radio or checkbox field.
type Option struct {
	Value string
	Label string
}

// Options holds the enumerated choices per field.
var Options = map[string][]Option{
	PrimaryChallenge: {
		{"digital-transformation", "Digital transformation"},
		{"ai-automation", "AI & automation"},
		{"legacy-modernization", "Legacy system modernization"},
		{"data-analytics", "Data & analytics"},
		{"cloud-migration", "Cloud migration"},
		{"custom-software", "Custom software development"},
		{"other", "Something else"},
	},
	Urgency: {
		{"immediate", "Immediately"},
		{"1-3-months", "Within 1-3 months"},
		{"3-6-months", "Within 3-6 months"},
		{"6-12-months", "Within 6-12 months"},
		{"no-rush", "No rush, just exploring"},
	},
	ExpectedOutcomes: {
		{"reduce-costs", "Reduce operating costs"},
		{"increase-revenue", "Increase revenue"},
		{"improve-efficiency", "Improve efficiency"},
		{"better-insights", "Better data insights"},
		{"customer-experience", "Improve customer experience"},
		{"scalability", "Scale the platform"},
	},
	Industry: {
		{"technology", "Technology"},
		{"finance", "Finance & insurance"},
		{"healthcare", "Healthcare"},
		{"retail", "Retail & e-commerce"},
		{"manufacturing", "Manufacturing"},
		{"education", "Education"},
		{"logistics", "Logistics"},
		{"other", "Other"},
	},
	CompanySize: {
		{"startup", "1-10 employees"},
		{"small", "11-50 employees"},
		{"mid-market", "51-500 employees"},
		{"large", "501-5,000 employees"},
		{"enterprise", "5,000+ employees"},
	},
	CurrentTechStack: {
		{"aws", "AWS"},
		{"azure", "Azure"},
		{"gcp", "Google Cloud"},
		{"on-premise", "On-premise"},
		{"salesforce", "Salesforce"},
		{"sap", "SAP"},
		{"custom", "Custom / in-house"},
		{"other", "Other"},
	},
	TechExperience: {
		{"beginner", "We're just getting started"},
		{"intermediate", "We have an in-house team"},
		{"advanced", "We run mature engineering practices"},
	},
	BudgetRange: {
		{"under-50k", "Under $50k"},
		{"50k-100k", "$50k - $100k"},
		{"100k-250k", "$100k - $250k"},
		{"250k-500k", "$250k - $500k"},
		{"over-500k", "Over $500k"},
	},
	Timeline: {
		{"asap", "As soon as possible"},
		{"quarter", "This quarter"},
		{"half-year", "Within six months"},
		{"year", "Within a year"},
		{"flexible", "Flexible"},
	},
	PreferredContact: {
		{"email", "Email"},
		{"phone", "Phone"},
		{"video", "Video call"},
	},
}

// IsOption reports whether value is one of the enumerated choices for key.
func IsOption(key, value string) bool {
	for _, o := range Options[key] {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Label returns the display label for value, falling back to value itself.
func Label(key, value string) string {
	for _, o := range Options[key] {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}
