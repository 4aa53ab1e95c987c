package internal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/docserve/internal/render"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Docs       DocsConfig        `yaml:"docs"`
	Site       SiteConfig        `yaml:"site"`
	Agents     AgentsConfig      `yaml:"agents"`
	LiveReload LiveReloadConfig  `yaml:"live_reload"`
	Metrics    MetricsConfig     `yaml:"metrics"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Docs.Validate(); err != nil {
		return fmt.Errorf("docs: %w", err)
	}
	if err := c.Site.Validate(); err != nil {
		return fmt.Errorf("site: %w", err)
	}
	if err := c.LiveReload.Validate(); err != nil {
		return fmt.Errorf("live_reload: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
	// ShowErrorDetail includes the error text on HTML error pages.
	ShowErrorDetail bool `yaml:"show_error_detail"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ReadTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.WriteTimeout, validation.Required, validation.Min(time.Millisecond)),
	)
}

// DocsConfig holds the path to the markdown docs directory.
type DocsConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the docs configuration.
func (c *DocsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SiteConfig holds values shown on HTML pages only; agent responses never
// use them.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Author      string `yaml:"author"`
	BaseURL     string `yaml:"base_url"`
	// RawHTML passes HTML embedded in markdown through to the page.
	RawHTML bool `yaml:"raw_html"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, is.URL),
	)
}

// Render returns the site values in the form the renderer expects.
func (c *SiteConfig) Render() render.Site {
	return render.Site{
		Title:       c.Title,
		Description: c.Description,
		Author:      c.Author,
		BaseURL:     c.BaseURL,
	}
}

// AgentsConfig extends the built-in agent user-agent signatures.
type AgentsConfig struct {
	ExtraSignatures []string `yaml:"extra_signatures"`
}

// LiveReloadConfig controls browser live reload on document changes.
type LiveReloadConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Throttle time.Duration `yaml:"throttle"`
}

// Validate validates the live reload configuration.
func (c *LiveReloadConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Throttle, validation.Min(time.Duration(0))),
	)
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validate validates the metrics configuration.
func (c *MetricsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path,
			validation.When(c.Enabled, validation.Required),
			validation.By(func(v any) error {
				if p, _ := v.(string); p != "" && !strings.HasPrefix(p, "/") {
					return fmt.Errorf("must start with /")
				}
				return nil
			}),
		),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:         3000,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
			},
			ShowErrorDetail: true,
		},
		Docs: DocsConfig{
			Path: "./docs",
		},
		Site: SiteConfig{
			Title:   "Documentation",
			RawHTML: true,
		},
		LiveReload: LiveReloadConfig{
			Throttle: 500 * time.Millisecond,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
