// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/docserve/internal/agent"
	"github.com/starford/docserve/internal/docstore"
	"github.com/starford/docserve/internal/mcpserver"
	"github.com/starford/docserve/internal/metrics"
	"github.com/starford/docserve/internal/render"
	"github.com/starford/docserve/internal/sse"
	"github.com/starford/docserve/internal/watch"
	"github.com/starford/docserve/internal/web"
)

func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// openStore creates the docs directory when missing and returns a store
// rooted at it.
func openStore(cfg *Config, logger *slog.Logger) (*docstore.Store, error) {
	if err := os.MkdirAll(cfg.Docs.Path, 0o755); err != nil {
		// The index degrades to an empty listing until the directory appears.
		logger.Warn("create docs dir failed", slog.String("path", cfg.Docs.Path), slog.String("error", err.Error()))
	}
	store, err := docstore.New(cfg.Docs.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("init docs store: %w", err)
	}
	return store, nil
}

// Handler builds the full HTTP handler for cfg. broker may be nil when live
// reload is disabled.
func Handler(cfg *Config, store docstore.Provider, broker *sse.Broker, logger *slog.Logger) (http.Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	signatures := append(append([]string{}, agent.DefaultSignatures...), cfg.Agents.ExtraSignatures...)
	classifier := agent.NewClassifier(signatures...)

	renderer, err := render.New(cfg.Site.Render(),
		render.WithLogger(logger),
		render.WithLiveReload(broker != nil),
		render.WithErrorDetail(cfg.App.ShowErrorDetail),
		render.WithRawHTML(cfg.Site.RawHTML),
	)
	if err != nil {
		return nil, fmt.Errorf("init renderer: %w", err)
	}

	var m *metrics.Metrics
	routes := web.Routes{}
	if cfg.Metrics.Enabled {
		m = metrics.New()
		routes.Metrics = m.Handler()
		routes.MetricsPath = cfg.Metrics.Path
	}
	if broker != nil {
		routes.LiveReload = broker
	}

	h := web.NewHandler(store, classifier, renderer, m, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Mount("/", web.NewRouter(h, routes))
	return r, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts...)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := newLogger(cfg, os.Stdout)
	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("docs_path", cfg.Docs.Path),
		slog.Bool("live_reload", cfg.LiveReload.Enabled),
		slog.Bool("metrics", cfg.Metrics.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	var broker *sse.Broker
	if cfg.LiveReload.Enabled {
		broker = sse.NewBroker(cfg.LiveReload.Throttle)
		defer broker.Close()
	}

	handler, err := Handler(cfg, store, broker, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.App.HTTP.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.App.HTTP.ReadTimeout,
		WriteTimeout: cfg.App.HTTP.WriteTimeout,
	}
	if broker != nil {
		// Event streams stay open; per-request deadlines would cut them off.
		httpServer.WriteTimeout = 0
	}

	// SIGINT/SIGTERM cancel ctx, which stops the watcher and triggers the
	// graceful shutdown below.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gCtx := errgroup.WithContext(ctx)

	if broker != nil {
		g.Go(func() error {
			if err := watch.Watch(gCtx, store.Root(), logger, broker.Notify); err != nil {
				logger.Warn("watcher disabled", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		if ctx.Err() != nil {
			logger.Info("Shutdown requested")
		}
		logger.Info("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if broker != nil {
			// Ends open event streams so Shutdown does not wait on them.
			broker.Close()
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the docs directory over MCP on stdin/stdout. Logs go to
// stderr so they never mix with protocol messages.
func RunMCP(_ context.Context, opts ...Option) error {
	app := newApplication(opts...)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := newLogger(cfg, os.Stderr)
	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("Starting MCP server", slog.String("docs_path", store.Root()))
	return mcpserver.New(store, app.version, logger).ServeStdio()
}
