// Package web wires the document pipeline into HTTP routes.
package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/docserve/internal/agent"
	"github.com/starford/docserve/internal/apperr"
	"github.com/starford/docserve/internal/docstore"
	"github.com/starford/docserve/internal/metrics"
	"github.com/starford/docserve/internal/models"
	"github.com/starford/docserve/internal/render"
)

// Handler serves the index and document routes.
type Handler struct {
	store      docstore.Provider
	classifier *agent.Classifier
	renderer   *render.Renderer
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewHandler creates a Handler. m may be nil to disable metrics.
func NewHandler(store docstore.Provider, classifier *agent.Classifier, renderer *render.Renderer, m *metrics.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:      store,
		classifier: classifier,
		renderer:   renderer,
		metrics:    m,
		logger:     logger,
	}
}

func (h *Handler) classify(r *http.Request) agent.Classification {
	return h.classifier.Classify(r.Header.Get("User-Agent"), r.Header.Get("Accept"))
}

// docPath extracts the requested logical path (everything after "/"). chi
// matches against the escaped path when the URL carries escapes that the
// decoded form cannot represent (such as %2F), so only then is the parameter
// unescaped; otherwise it is already decoded.
func docPath(r *http.Request) string {
	p := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if r.URL.RawPath == "" {
		return p
	}
	decoded, err := url.PathUnescape(p)
	if err != nil {
		return p
	}
	return decoded
}

// Index handles GET /.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	cls := h.classify(r)

	listing, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Warn("list documents failed, serving empty index", slog.String("error", err.Error()))
		h.metrics.ListingUnavailable()
		listing = models.Listing{}
	}
	h.respond(w, render.ListingReady(listing), cls, start)
}

// Document handles GET /*.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	cls := h.classify(r)
	path := docPath(r)

	doc, err := h.store.Get(r.Context(), path)
	switch {
	case err == nil:
		h.respond(w, render.DocumentFound(doc), cls, start)
	case errors.Is(err, apperr.ErrNotFound):
		h.respond(w, render.NotFound(), cls, start)
	default:
		h.logger.Error("get document failed", slog.String("path", path), slog.String("error", err.Error()))
		h.respond(w, render.InternalError(err), cls, start)
	}
}

// NotFound renders the not-found outcome for unmatched routes and methods.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.respond(w, render.NotFound(), h.classify(r), time.Now())
}

// Recoverer turns a panic in a downstream handler into the internal error
// outcome, rendered for the requesting client.
func (h *Handler) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			h.logger.Error("panic serving request",
				slog.String("path", r.URL.Path),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			h.respond(w, render.InternalError(fmt.Errorf("panic: %v", rec)), h.classify(r), time.Now())
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) respond(w http.ResponseWriter, o render.Outcome, cls agent.Classification, start time.Time) {
	resp := h.renderer.Render(o, cls)
	resp.Write(w)
	h.metrics.Observe(cls.Client(), string(cls.Reason), o.Kind.String(), time.Since(start))
}

// Live handles GET /health/live.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// Ready handles GET /health/ready. It reports unavailable while the docs
// directory cannot be listed.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.List(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "unavailable", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}
