package internal

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/docserve/internal/sse"
	"github.com/starford/docserve/internal/testutil"
)

func get(t *testing.T, h http.Handler, path, ua string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("User-Agent", ua)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_ServesPipeline(t *testing.T) {
	_, store := testutil.TestDocs(t, map[string]string{
		"intro.md": "---\ntitle: Intro\n---\nHello",
	})
	cfg := NewDefaultConfig()

	h, err := Handler(cfg, store, nil, nil)
	require.NoError(t, err)

	rec := get(t, h, "/intro", "curl/8.4.0")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# Intro\n\nHello", rec.Body.String())

	rec = get(t, h, "/", "Mozilla/5.0 Firefox/121.0")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = get(t, h, "/metrics", "curl/8.4.0")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "docserve_requests_total")

	rec = get(t, h, "/_live/events", "curl/8.4.0")
	assert.Equal(t, http.StatusNotFound, rec.Code, "live reload off without a broker")
}

func TestHandler_ExtraSignatures(t *testing.T) {
	_, store := testutil.TestDocs(t, map[string]string{"a.md": "body"})
	cfg := NewDefaultConfig()
	cfg.Agents.ExtraSignatures = []string{"InternalFetcher"}

	h, err := Handler(cfg, store, nil, nil)
	require.NoError(t, err)

	rec := get(t, h, "/a", "Mozilla/5.0 internalfetcher/2.0")
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "body", rec.Body.String())
}

func TestHandler_MetricsDisabled(t *testing.T) {
	_, store := testutil.TestDocs(t, nil)
	cfg := NewDefaultConfig()
	cfg.Metrics.Enabled = false

	h, err := Handler(cfg, store, nil, nil)
	require.NoError(t, err)

	rec := get(t, h, "/metrics", "curl/8.4.0")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "# 404 - Page Not Found")
}

func TestHandler_LiveReloadScript(t *testing.T) {
	_, store := testutil.TestDocs(t, map[string]string{"a.md": "body"})
	broker := sse.NewBroker(time.Millisecond)
	t.Cleanup(broker.Close)

	h, err := Handler(NewDefaultConfig(), store, broker, nil)
	require.NoError(t, err)

	rec := get(t, h, "/a", "Mozilla/5.0 Firefox/121.0")
	assert.Contains(t, rec.Body.String(), "/_live/events")
}

func TestOpenStore_CreatesDirectory(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Docs.Path = filepath.Join(t.TempDir(), "docs", "nested")

	store, err := openStore(cfg, newLogger(cfg, os.Stderr))
	require.NoError(t, err)

	info, err := os.Stat(store.Root())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRun_RequiresConfig(t *testing.T) {
	assert.Error(t, Run(t.Context()))
	assert.Error(t, RunMCP(t.Context()))
}
