// Package render turns a request outcome into the response representation
// chosen by the request's classification: plain markdown for agents, HTML
// for humans. Every outcome can be rendered both ways.
package render

import (
	"log/slog"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/starford/docserve/internal/agent"
	"github.com/starford/docserve/internal/models"
)

const (
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// Kind enumerates request outcomes.
type Kind int

const (
	KindDocument Kind = iota
	KindListing
	KindNotFound
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindListing:
		return "listing"
	case KindNotFound:
		return "not_found"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is the result of resolving a request against the document store,
// independent of how it will be rendered.
type Outcome struct {
	Kind     Kind
	Document *models.Document
	Listing  models.Listing
	Err      error
}

// DocumentFound wraps a resolved document.
func DocumentFound(doc *models.Document) Outcome {
	return Outcome{Kind: KindDocument, Document: doc}
}

// ListingReady wraps the document listing.
func ListingReady(l models.Listing) Outcome {
	return Outcome{Kind: KindListing, Listing: l}
}

// NotFound is the outcome for paths with no document.
func NotFound() Outcome {
	return Outcome{Kind: KindNotFound}
}

// InternalError is the outcome for failures while serving a request.
func InternalError(err error) Outcome {
	return Outcome{Kind: KindError, Err: err}
}

// Response is a fully rendered reply.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Write sends the response to w.
func (r Response) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", r.ContentType)
	w.Header().Add("Vary", "User-Agent, Accept")
	w.WriteHeader(r.Status)
	_, _ = w.Write(r.Body)
}

// Site carries the site-wide values shown by the HTML templates.
type Site struct {
	Title       string
	Description string
	Author      string
	BaseURL     string
}

// Renderer renders outcomes. It is safe for concurrent use.
type Renderer struct {
	site        Site
	md          goldmark.Markdown
	pages       pageSet
	logger      *slog.Logger
	liveReload  bool
	errorDetail bool
	rawHTML     bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for template failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithLiveReload makes HTML pages subscribe to live reload events.
func WithLiveReload(enabled bool) Option {
	return func(r *Renderer) { r.liveReload = enabled }
}

// WithErrorDetail controls whether HTML error pages show the error text.
func WithErrorDetail(enabled bool) Option {
	return func(r *Renderer) { r.errorDetail = enabled }
}

// WithRawHTML controls whether raw HTML inside markdown is passed through.
func WithRawHTML(enabled bool) Option {
	return func(r *Renderer) { r.rawHTML = enabled }
}

// New builds a Renderer for the given site.
func New(site Site, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		site:        site,
		logger:      slog.Default(),
		errorDetail: true,
		rawHTML:     true,
	}
	for _, opt := range opts {
		opt(r)
	}

	pages, err := loadPages()
	if err != nil {
		return nil, err
	}
	r.pages = pages
	r.md = newMarkdown(r.rawHTML)
	return r, nil
}

// Render produces the response for outcome o in the representation chosen
// by c.
func (r *Renderer) Render(o Outcome, c agent.Classification) Response {
	if c.IsAgent {
		return Text(o)
	}
	return r.HTML(o)
}
