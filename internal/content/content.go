// Package content holds the site's read-only reference data: services and
// case studies, loaded once from embedded YAML.
package content

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

type PricingTier struct {
	Name        string   `yaml:"name"`
	Price       string   `yaml:"price"`
	Description string   `yaml:"description"`
	Features    []string `yaml:"features"`
	Highlighted bool     `yaml:"highlighted"`
}

type ProcessStep struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type FAQ struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

type Service struct {
	Slug      string        `yaml:"slug"`
	Title     string        `yaml:"title"`
	Tagline   string        `yaml:"tagline"`
	Summary   string        `yaml:"summary"`
	Challenge string        `yaml:"challenge"`
	Featured  bool          `yaml:"featured"`
	Body      string        `yaml:"body"`
	Pricing   []PricingTier `yaml:"pricing"`
	Process   []ProcessStep `yaml:"process"`
	FAQs      []FAQ         `yaml:"faqs"`

	BodyHTML template.HTML `yaml:"-"`
}

type Result struct {
	Metric      string `yaml:"metric"`
	Value       string `yaml:"value"`
	Description string `yaml:"description"`
}

type Testimonial struct {
	Quote  string `yaml:"quote"`
	Author string `yaml:"author"`
	Role   string `yaml:"role"`
}

type CaseStudy struct {
	Slug        string      `yaml:"slug"`
	Title       string      `yaml:"title"`
	Client      string      `yaml:"client"`
	Industry    string      `yaml:"industry"`
	Summary     string      `yaml:"summary"`
	Services    []string    `yaml:"services"`
	Published   string      `yaml:"published"`
	Duration    string      `yaml:"duration"`
	ROI         int         `yaml:"roi"`
	Featured    bool        `yaml:"featured"`
	Challenge   string      `yaml:"challenge"`
	Solution    string      `yaml:"solution"`
	Results     []Result    `yaml:"results"`
	Testimonial Testimonial `yaml:"testimonial"`

	PublishedAt   time.Time     `yaml:"-"`
	ChallengeHTML template.HTML `yaml:"-"`
	SolutionHTML  template.HTML `yaml:"-"`
}

// Catalog is immutable after Load.
type Catalog struct {
	services    []Service
	caseStudies []CaseStudy
	serviceIdx  map[string]int
	caseIdx     map[string]int
}

// Load parses and renders the embedded data.
func Load() (*Catalog, error) {
	var services []Service
	if err := decode("data/services.yaml", &services); err != nil {
		return nil, err
	}
	var studies []CaseStudy
	if err := decode("data/case_studies.yaml", &studies); err != nil {
		return nil, err
	}
	return NewCatalog(services, studies)
}

func decode(name string, dst any) error {
	blob, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(blob, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// NewCatalog validates the records, renders their markdown and indexes them.
func NewCatalog(services []Service, studies []CaseStudy) (*Catalog, error) {
	c := &Catalog{
		serviceIdx: make(map[string]int, len(services)),
		caseIdx:    make(map[string]int, len(studies)),
	}
	for i := range services {
		s := services[i]
		if strings.TrimSpace(s.Slug) == "" {
			return nil, fmt.Errorf("service %d: missing slug", i)
		}
		if _, dup := c.serviceIdx[s.Slug]; dup {
			return nil, fmt.Errorf("service %q: duplicate slug", s.Slug)
		}
		body, err := RenderMarkdown(s.Body)
		if err != nil {
			return nil, fmt.Errorf("service %q: %w", s.Slug, err)
		}
		s.BodyHTML = body
		c.serviceIdx[s.Slug] = len(c.services)
		c.services = append(c.services, s)
	}
	for i := range studies {
		cs := studies[i]
		if strings.TrimSpace(cs.Slug) == "" {
			return nil, fmt.Errorf("case study %d: missing slug", i)
		}
		if _, dup := c.caseIdx[cs.Slug]; dup {
			return nil, fmt.Errorf("case study %q: duplicate slug", cs.Slug)
		}
		for _, ref := range cs.Services {
			if _, ok := c.serviceIdx[ref]; !ok {
				return nil, fmt.Errorf("case study %q: unknown service %q", cs.Slug, ref)
			}
		}
		ts, err := time.Parse("2006-01-02", cs.Published)
		if err != nil {
			return nil, fmt.Errorf("case study %q: published: %w", cs.Slug, err)
		}
		cs.PublishedAt = ts
		if cs.ChallengeHTML, err = RenderMarkdown(cs.Challenge); err != nil {
			return nil, fmt.Errorf("case study %q: %w", cs.Slug, err)
		}
		if cs.SolutionHTML, err = RenderMarkdown(cs.Solution); err != nil {
			return nil, fmt.Errorf("case study %q: %w", cs.Slug, err)
		}
		c.caseIdx[cs.Slug] = len(c.caseStudies)
		c.caseStudies = append(c.caseStudies, cs)
	}
	return c, nil
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderMarkdown converts GFM markdown to HTML. Raw HTML in the source is
// not passed through.
func RenderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func (c *Catalog) Services() []Service {
	return append([]Service(nil), c.services...)
}

func (c *Catalog) FeaturedServices() []Service {
	var out []Service
	for _, s := range c.services {
		if s.Featured {
			out = append(out, s)
		}
	}
	return out
}

func (c *Catalog) Service(slug string) (Service, bool) {
	i, ok := c.serviceIdx[slug]
	if !ok {
		return Service{}, false
	}
	return c.services[i], true
}

func (c *Catalog) CaseStudy(slug string) (CaseStudy, bool) {
	i, ok := c.caseIdx[slug]
	if !ok {
		return CaseStudy{}, false
	}
	return c.caseStudies[i], true
}

// Sort orders for case study listings.
const (
	SortRecent = "recent"
	SortImpact = "impact"
	SortTitle  = "title"
)

// Filter narrows a case study listing. Zero values match everything.
type Filter struct {
	Industry string
	Service  string
	Featured bool
	Sort     string
	Limit    int
}

// CaseStudies scans the list, keeps matches and sorts them. Unknown sort
// orders fall back to SortRecent.
func (c *Catalog) CaseStudies(f Filter) []CaseStudy {
	var out []CaseStudy
	for _, cs := range c.caseStudies {
		if f.Industry != "" && cs.Industry != f.Industry {
			continue
		}
		if f.Service != "" && !contains(cs.Services, f.Service) {
			continue
		}
		if f.Featured && !cs.Featured {
			continue
		}
		out = append(out, cs)
	}
	switch f.Sort {
	case SortImpact:
		sort.SliceStable(out, func(i, j int) bool { return out[i].ROI > out[j].ROI })
	case SortTitle:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// Industries lists the distinct industries with at least one case study.
func (c *Catalog) Industries() []string {
	seen := map[string]bool{}
	var out []string
	for _, cs := range c.caseStudies {
		if !seen[cs.Industry] {
			seen[cs.Industry] = true
			out = append(out, cs.Industry)
		}
	}
	sort.Strings(out)
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
