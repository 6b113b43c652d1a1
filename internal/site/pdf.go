package site

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"sync"
	"time"

	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/stratalace/site/internal/content"
)

// CaseStudyRenderer turns a case study into a printable PDF.
type CaseStudyRenderer interface {
	Render(ctx context.Context, info Info, cs content.CaseStudy) ([]byte, error)
}

// ChromiumPDFRenderer prints an HTML rendering of the case study through a
// headless Chrome.
type ChromiumPDFRenderer struct {
	chromePath string

	tplOnce sync.Once
	tpl     *template.Template
	css     template.CSS
	tplErr  error
}

// NewChromiumPDFRenderer uses chromePath when set, otherwise the first
// Chromium found in the usual locations. chromedp falls back to its own
// lookup when neither exists.
func NewChromiumPDFRenderer(chromePath string) *ChromiumPDFRenderer {
	if chromePath == "" {
		chromePath = detectChromePath()
	}
	return &ChromiumPDFRenderer{chromePath: chromePath}
}

func (r *ChromiumPDFRenderer) Render(ctx context.Context, info Info, cs content.CaseStudy) ([]byte, error) {
	htmlDoc, err := r.buildHTML(info, cs)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	browserCtx, closeBrowser := headlessBrowser(ctx, r.chromePath)
	defer closeBrowser()

	var pdf []byte
	if err := chromedp.Run(browserCtx,
		chromedp.Navigate("data:text/html;base64,"+base64.StdEncoding.EncodeToString(htmlDoc)),
		chromedp.WaitReady("body", chromedp.ByQuery),
		printA4(footerTemplate(info.Name), &pdf),
	); err != nil {
		return nil, fmt.Errorf("print case study %s: %w", cs.Slug, err)
	}
	return pdf, nil
}

// headlessBrowser starts a sandbox-less Chrome suitable for containers. The
// returned func stops the browser and its allocator.
func headlessBrowser(ctx context.Context, chromePath string) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	return taskCtx, func() {
		taskCancel()
		allocCancel()
	}
}

func footerTemplate(siteName string) string {
	return `<div style="width:100%;text-align:center;font-size:9px;color:#666;">` +
		template.HTMLEscapeString(siteName) +
		` &middot; Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`
}

// printA4 prints the current page to an A4 PDF with half-inch margins.
func printA4(footer string, out *[]byte) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		buf, _, err := cdppage.PrintToPDF().
			WithPrintBackground(true).
			WithDisplayHeaderFooter(true).
			WithHeaderTemplate(`<div></div>`).
			WithFooterTemplate(footer).
			WithPaperWidth(8.27).
			WithPaperHeight(11.69).
			WithMarginTop(0.5).
			WithMarginBottom(0.75).
			WithMarginLeft(0.5).
			WithMarginRight(0.5).
			Do(ctx)
		if err != nil {
			return err
		}
		*out = buf
		return nil
	})
}

type printData struct {
	Site  Info
	Study content.CaseStudy
	CSS   template.CSS
}

func (r *ChromiumPDFRenderer) buildHTML(info Info, cs content.CaseStudy) ([]byte, error) {
	r.tplOnce.Do(func() {
		r.tpl, r.tplErr = template.New("print.gohtml").Funcs(funcs).ParseFS(templatesFS, "templates/print.gohtml")
		if r.tplErr != nil {
			return
		}
		css, err := staticFS.ReadFile("static/style.css")
		if err != nil {
			r.tplErr = fmt.Errorf("read style.css: %w", err)
			return
		}
		r.css = template.CSS(css)
	})
	if r.tplErr != nil {
		return nil, r.tplErr
	}
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, printData{Site: info, Study: cs, CSS: r.css}); err != nil {
		return nil, fmt.Errorf("print template: %w", err)
	}
	return buf.Bytes(), nil
}

func detectChromePath() string {
	candidates := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
