package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/bissquit/whiskerboard/internal/domain"
	"github.com/bissquit/whiskerboard/internal/pkg/view"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page template names.
const (
	pageIndex   = "index.html"
	pageService = "service.html"
	pageError   = "error.html"
)

// Renderer renders dashboard pages from embedded templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses all templates.
func NewRenderer() (*Renderer, error) {
	funcMap := template.FuncMap{
		"title":       titleCase,
		"ago":         humanize.Time,
		"day":         formatDay,
		"httpTime":    view.FormatTime,
		"statusLabel": statusLabel,
		"statusClass": statusClass,
		"serviceURL":  view.ServiceURL,
	}

	tmpl, err := template.New("dashboard").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// RenderIndex writes the index page.
func (r *Renderer) RenderIndex(w io.Writer, page *IndexPage) error {
	return r.render(w, pageIndex, page)
}

// RenderService writes a service page.
func (r *Renderer) RenderService(w io.Writer, page *ServicePage) error {
	return r.render(w, pageService, page)
}

// RenderError writes an error page with message.
func (r *Renderer) RenderError(w io.Writer, message string) error {
	return r.render(w, pageError, struct{ Message string }{Message: message})
}

func (r *Renderer) render(w io.Writer, name string, data any) error {
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	return nil
}

// Template functions

// titleCase builds a Caser per call; a Caser keeps state and is not safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func formatDay(t time.Time) string {
	return t.UTC().Format("Mon, Jan 2")
}

// statusLabel returns the label of code, or the default label when code is nil.
func statusLabel(code *domain.StatusCode, def domain.StatusLevel) string {
	if code == nil {
		return def.Label
	}
	return domain.StatusLabel(*code)
}

func statusClass(code *domain.StatusCode, def domain.StatusLevel) string {
	if code == nil {
		return "status-" + string(def.Code)
	}
	return "status-" + string(*code)
}
