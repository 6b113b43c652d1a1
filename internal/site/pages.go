package site

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/stratalace/site/internal/form"
)

// page is the root value handed to every template.
type page struct {
	Site    Info
	Title   string
	Path    string
	Content any
}

// pages holds one template set per page, each parsed together with the
// shared layout and partials.
type pages struct {
	sets map[string]*template.Template
}

var funcs = template.FuncMap{
	"label": form.Label,
	"industryLabel": func(v string) string {
		return form.Label(form.Industry, v)
	},
	"lower": strings.ToLower,
	"add":   func(a, b int) int { return a + b },
}

var shared = []string{"templates/layout.html", "templates/partials.html"}

func loadPages() (*pages, error) {
	names, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	p := &pages{sets: map[string]*template.Template{}}
	for _, name := range names {
		base := path.Base(name)
		if base == "layout.html" || base == "partials.html" {
			continue
		}
		files := append(append([]string(nil), shared...), name)
		t, err := template.New(base).Funcs(funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", base, err)
		}
		p.sets[base] = t
	}
	return p, nil
}

func (p *pages) execute(name string, data page) ([]byte, error) {
	t, ok := p.sets[name]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
