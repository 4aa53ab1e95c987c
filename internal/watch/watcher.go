// Package watch reports changes to markdown files in the docs directory.
package watch

import (
	"context"
	"crypto/sha256"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/docserve/internal/docstore"
)

// Change kinds passed to EventCallback.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// EventCallback is called for each document change with the document's
// logical path.
type EventCallback func(kind, logicalPath string)

// Watch watches the flat docs directory root until ctx is cancelled and
// calls cb for every created, changed or removed markdown file. Write events
// that leave the content unchanged are suppressed by comparing content digests.
func Watch(ctx context.Context, root string, logger *slog.Logger, cb EventCallback) error {
	if cb == nil {
		return errors.New("watch: callback is required")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}

	known := seed(root)
	logger.Info("watcher: started", slog.String("root", root), slog.Int("documents", len(known)))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, docstore.Ext) {
				continue
			}
			logical := docstore.LogicalPath(name)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := os.ReadFile(ev.Name)
				if readErr != nil {
					logger.Debug("watcher: read failed", slog.String("path", name), slog.String("error", readErr.Error()))
					continue
				}
				sum := sha256.Sum256(data)
				prev, existed := known[name]
				if existed && prev == sum {
					continue
				}
				known[name] = sum
				kind := KindUpdated
				if !existed {
					kind = KindCreated
				}
				logger.Debug("watcher: changed", slog.String("path", logical), slog.String("op", kind))
				cb(kind, logical)

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Rename fires on the old name only; the new name arrives as Create.
				if _, existed := known[name]; !existed {
					continue
				}
				delete(known, name)
				logger.Debug("watcher: removed", slog.String("path", logical))
				cb(KindDeleted, logical)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// digests maps a markdown file name to the SHA-256 of its last seen content.
type digests map[string][sha256.Size]byte

// seed records the digest of every markdown file currently in root.
func seed(root string) digests {
	known := make(digests)
	entries, err := os.ReadDir(root)
	if err != nil {
		return known
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), docstore.Ext) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(root, e.Name()))
		if err != nil {
			continue
		}
		known[e.Name()] = sha256.Sum256(data)
	}
	return known
}
