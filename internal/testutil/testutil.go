// Package testutil provides shared test helpers for setting up docs directories.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/docserve/internal/docstore"
)

// TestDocs creates a temporary docs directory holding files (name → content)
// and a Store rooted at it.
func TestDocs(t *testing.T, files map[string]string) (string, *docstore.Store) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := docstore.New(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}
