package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed static
var staticFS embed.FS

// Routes holds the optional endpoints mounted next to the document routes.
type Routes struct {
	// Metrics, if non-nil, is mounted at MetricsPath.
	Metrics     http.Handler
	MetricsPath string
	// LiveReload, if non-nil, is mounted at GET /_live/events.
	LiveReload http.Handler
}

// NewRouter creates a chi router serving static assets, health checks,
// optional metrics and live reload, and the document pipeline. Anything
// unmatched goes through the pipeline's not-found outcome.
func NewRouter(h *Handler, routes Routes) chi.Router {
	r := chi.NewRouter()
	r.Use(h.Recoverer)
	r.Use(middleware.GetHead)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/health/live", h.Live)
	r.Get("/health/ready", h.Ready)

	if routes.Metrics != nil {
		path := routes.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, routes.Metrics)
	}
	if routes.LiveReload != nil {
		r.Get("/_live/events", routes.LiveReload.ServeHTTP)
	}

	r.Get("/", h.Index)
	r.Get("/*", h.Document)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)

	return r
}
