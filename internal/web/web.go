// Package web renders the storefront pages: experience list, detail with slot
// picker, booking form and booking result.
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/wolfman30/bookit-storefront/internal/bookit"
	"github.com/wolfman30/bookit-storefront/internal/catalog"
	"github.com/wolfman30/bookit-storefront/internal/checkout"
	"github.com/wolfman30/bookit-storefront/internal/pricing"
	"github.com/wolfman30/bookit-storefront/pkg/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"list", "detail", "book", "result", "error"}

// Raw HTML in descriptions is escaped (WithUnsafe is not set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// API is the upstream surface the pages read from.
type API interface {
	ListExperiences(ctx context.Context) ([]bookit.Experience, error)
	GetExperience(ctx context.Context, id string) (*bookit.Experience, error)
	GetBooking(ctx context.Context, id string) (*bookit.Booking, error)
}

// Handler serves the storefront pages.
type Handler struct {
	api      API
	checkout *checkout.Service
	logger   *logging.Logger
	pages    map[string]*template.Template
}

// NewHandler parses the embedded templates and builds a page handler.
func NewHandler(api API, svc *checkout.Service, logger *logging.Logger) (*Handler, error) {
	if api == nil {
		return nil, fmt.Errorf("web: api required")
	}
	if svc == nil {
		return nil, fmt.Errorf("web: checkout service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &Handler{api: api, checkout: svc, logger: logger, pages: pages}, nil
}

// Routes mounts the page routes on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/experience/{id}", h.Detail)
	r.Get("/experience/{id}/confirm", h.Confirm)
	r.Get("/book/{id}", h.BookForm)
	r.Post("/book/{id}", h.BookSubmit)
	r.Get("/result", h.Result)
}

func parsePages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"inr":      pricing.FormatINR,
		"cover":    catalog.CoverImage,
		"markdown": renderMarkdown,
		"orDash": func(s string) string {
			if s == "" {
				return "—"
			}
			return s
		},
	}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("web: parse %s template: %w", name, err)
		}
		pages[name] = tpl
	}
	return pages, nil
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// view is the data every page template receives.
type view struct {
	Title     string
	Query     string
	Notice    *checkout.Notice
	CSRFField template.HTML
	Data      any
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	tpl, ok := h.pages[page]
	if !ok {
		h.logFor(r).Error("unknown page template", "page", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	v.CSRFField = csrf.TemplateField(r)

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, v); err != nil {
		h.logFor(r).Error("failed to render page", "page", page, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// errorPage is the full-page failure view. RetryURL is empty when no retry
// is offered.
type errorPage struct {
	Heading  string
	Message  string
	RetryURL string
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, page errorPage) {
	h.render(w, r, status, "error", view{Title: page.Heading, Data: page})
}

func (h *Handler) logFor(r *http.Request) *logging.Logger {
	return logging.FromContext(r.Context(), h.logger)
}

// abandoned reports whether the visitor has gone away, in which case the
// upstream result is discarded without rendering.
func abandoned(r *http.Request) bool {
	return r.Context().Err() != nil
}
