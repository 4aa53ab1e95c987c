package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/starford/docserve/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageIndex    = "index"
	pageDoc      = "doc"
	pageNotFound = "404"
	pageError    = "error"
)

const fallbackHTML = `<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8"><title>Error</title></head>
<body><h1>500 - Internal Server Error</h1><p>An error occurred while processing your request.</p></body></html>
`

// pageSet maps a page name to the layout template combined with that page's
// "content" block.
type pageSet map[string]*template.Template

func loadPages() (pageSet, error) {
	layout, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("render: parse layout: %w", err)
	}
	set := make(pageSet, 4)
	for _, name := range []string{pageIndex, pageDoc, pageNotFound, pageError} {
		t, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("render: clone layout: %w", err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("render: parse %s: %w", name, err)
		}
		set[name] = t
	}
	return set, nil
}

// field is a front-matter entry shown on a document page.
type field struct {
	Key   string
	Value string
}

type pageData struct {
	Site        Site
	Title       string
	Path        string
	Description string
	Content     template.HTML
	Fields      []field
	Docs        []models.Summary
	Error       string
	LiveReload  bool
}

// HTML renders o as a full HTML page, the human representation.
func (r *Renderer) HTML(o Outcome) Response {
	switch o.Kind {
	case KindDocument:
		if o.Document == nil {
			return r.HTML(InternalError(fmt.Errorf("render: document outcome without document")))
		}
		return r.documentPage(o.Document)
	case KindListing:
		return r.execute(pageIndex, http.StatusOK, pageData{
			Title: "Documentation",
			Docs:  o.Listing.Documents,
		})
	case KindNotFound:
		return r.execute(pageNotFound, http.StatusNotFound, pageData{
			Title: "404 - Page Not Found",
		})
	default:
		data := pageData{Title: "Error"}
		if r.errorDetail && o.Err != nil {
			data.Error = o.Err.Error()
		}
		return r.execute(pageError, http.StatusInternalServerError, data)
	}
}

func (r *Renderer) documentPage(doc *models.Document) Response {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(doc.Body), &buf); err != nil {
		return r.HTML(InternalError(fmt.Errorf("render: convert %s: %w", doc.LogicalPath, err)))
	}
	desc, _ := doc.Metadata.String("description")
	return r.execute(pageDoc, http.StatusOK, pageData{
		Title:       doc.Title(),
		Path:        doc.LogicalPath,
		Description: desc,
		Content:     template.HTML(buf.String()),
		Fields:      extraFields(doc.Metadata),
	})
}

func (r *Renderer) execute(page string, status int, data pageData) Response {
	data.Site = r.site
	data.LiveReload = r.liveReload

	var buf bytes.Buffer
	t, ok := r.pages[page]
	if !ok {
		r.logger.Error("render: unknown page", slog.String("page", page))
		return fallback()
	}
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("render: template failed",
			slog.String("page", page),
			slog.String("error", err.Error()))
		return fallback()
	}
	return Response{Status: status, ContentType: ContentTypeHTML, Body: buf.Bytes()}
}

func fallback() Response {
	return Response{
		Status:      http.StatusInternalServerError,
		ContentType: ContentTypeHTML,
		Body:        []byte(fallbackHTML),
	}
}

// extraFields lists front-matter entries other than the ones the page
// already shows, sorted by key.
func extraFields(m models.Metadata) []field {
	var out []field
	for k, v := range m {
		switch k {
		case "title", "description", "order":
			continue
		}
		out = append(out, field{Key: k, Value: fmt.Sprint(v)})
	}
	slices.SortFunc(out, func(a, b field) int { return strings.Compare(a.Key, b.Key) })
	return out
}
