// Package site serves the marketing pages, the contact wizard and the lead
// intake endpoint.
package site

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stratalace/site/internal/content"
	"github.com/stratalace/site/internal/leads"
)

//go:embed templates
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Info is the site-wide data every page template can read.
type Info struct {
	Name          string
	URL           string
	AnalyticsID   string
	SchedulingURL string
	Year          int
}

type Config struct {
	Info    Info
	Catalog *content.Catalog
	// Adapter receives completed wizard sessions.
	Adapter leads.SubmissionAdapter
	// Intake serves POST /api/leads. Nil leaves the route unregistered.
	Intake        http.Handler
	PDF           CaseStudyRenderer
	SubmitTimeout time.Duration
	Logger        *zap.Logger
}

type Server struct {
	info          Info
	catalog       *content.Catalog
	adapter       leads.SubmissionAdapter
	pdf           CaseStudyRenderer
	pages         *pages
	submitTimeout time.Duration
	logger        *zap.Logger
}

// NewServer wires the routes and returns the root handler, already wrapped in
// request logging and tracing.
func NewServer(cfg Config) (http.Handler, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("site: catalog is required")
	}
	if cfg.Adapter == nil {
		return nil, fmt.Errorf("site: submission adapter is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tpl, err := loadPages()
	if err != nil {
		return nil, err
	}
	info := cfg.Info
	if info.Year == 0 {
		info.Year = time.Now().Year()
	}
	s := &Server{
		info:          info,
		catalog:       cfg.Catalog,
		adapter:       cfg.Adapter,
		pdf:           cfg.PDF,
		pages:         tpl,
		submitTimeout: cfg.SubmitTimeout,
		logger:        logger,
	}

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /about", s.handleAbout)
	mux.HandleFunc("GET /services", s.handleServices)
	mux.HandleFunc("GET /services/{slug}", s.handleService)
	mux.HandleFunc("GET /case-studies", s.handleCaseStudies)
	mux.HandleFunc("GET /case-studies/{slug}", s.handleCaseStudy)
	mux.HandleFunc("GET /case-studies/{slug}/pdf", s.handleCaseStudyPDF)
	mux.HandleFunc("GET /contact", s.handleContact)
	mux.HandleFunc("POST /contact", s.handleContactPost)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	if cfg.Intake != nil {
		mux.Handle("/api/leads", cfg.Intake)
	}
	mux.HandleFunc("/", s.handleNotFound)

	return withRecover(logger, withTracing(withRequestLog(logger, mux))), nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	p := page{
		Site:    s.info,
		Title:   title,
		Path:    r.URL.Path,
		Content: data,
	}
	body, err := s.pages.execute(name, p)
	if err != nil {
		s.logger.Error("render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "not-found.html", "Page not found", nil)
}

type homeData struct {
	Services    []content.Service
	CaseStudies []content.CaseStudy
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "home.html", "", homeData{
		Services:    s.catalog.FeaturedServices(),
		CaseStudies: s.catalog.CaseStudies(content.Filter{Limit: 3}),
	})
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "about.html", "About", nil)
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "services.html", "Services", s.catalog.Services())
}

type serviceData struct {
	Service     content.Service
	CaseStudies []content.CaseStudy
}

func (s *Server) handleService(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.catalog.Service(r.PathValue("slug"))
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	s.render(w, r, http.StatusOK, "service.html", svc.Title, serviceData{
		Service:     svc,
		CaseStudies: s.catalog.CaseStudies(content.Filter{Service: svc.Slug}),
	})
}

type caseStudiesData struct {
	CaseStudies []content.CaseStudy
	Industries  []string
	Industry    string
	Sort        string
}

func (s *Server) handleCaseStudies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sortBy := q.Get("sort")
	switch sortBy {
	case content.SortRecent, content.SortImpact, content.SortTitle:
	default:
		sortBy = content.SortRecent
	}
	industry := strings.TrimSpace(q.Get("industry"))
	s.render(w, r, http.StatusOK, "case-studies.html", "Case studies", caseStudiesData{
		CaseStudies: s.catalog.CaseStudies(content.Filter{Industry: industry, Sort: sortBy}),
		Industries:  s.catalog.Industries(),
		Industry:    industry,
		Sort:        sortBy,
	})
}

func (s *Server) handleCaseStudy(w http.ResponseWriter, r *http.Request) {
	cs, ok := s.catalog.CaseStudy(r.PathValue("slug"))
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	s.render(w, r, http.StatusOK, "case-study.html", cs.Title, cs)
}

func (s *Server) handleCaseStudyPDF(w http.ResponseWriter, r *http.Request) {
	if s.pdf == nil {
		writeError(w, http.StatusServiceUnavailable, "pdf renderer unavailable")
		return
	}
	cs, ok := s.catalog.CaseStudy(r.PathValue("slug"))
	if !ok {
		writeError(w, http.StatusNotFound, "case study not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 45*time.Second)
	defer cancel()
	pdf, err := s.pdf.Render(ctx, s.info, cs)
	if err != nil {
		s.logger.Error("render case study pdf", zap.String("slug", cs.Slug), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render pdf")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sanitizeFilename(cs.Slug)+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func sanitizeFilename(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "case-study"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, v)
}
