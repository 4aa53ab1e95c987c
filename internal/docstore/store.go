// Package docstore reads markdown documents from a flat docs directory.
package docstore

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/starford/docserve/internal/apperr"
	"github.com/starford/docserve/internal/models"
	"github.com/starford/docserve/internal/parser"
)

// Ext is the file extension of markdown documents.
const Ext = ".md"

// IndexName is the logical path the root URL resolves to.
const IndexName = "index"

// Provider is the read interface over the docs directory.
type Provider interface {
	// List returns a sorted summary of every document in the directory.
	List(ctx context.Context) (models.Listing, error)
	// Get returns the document the logical path resolves to.
	Get(ctx context.Context, logicalPath string) (*models.Document, error)
}

// Store implements Provider backed by the local file system.
// Every call reads the directory afresh; nothing is cached.
type Store struct {
	root   string // absolute path to the docs directory
	logger *slog.Logger
}

var _ Provider = (*Store)(nil)

// New creates a Store rooted at dir. The directory does not have to exist
// yet; List reports it as unavailable until it does.
func New(dir string, logger *slog.Logger) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("docstore: resolve root: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{root: abs, logger: logger}, nil
}

// Root returns the absolute docs directory.
func (s *Store) Root() string {
	return s.root
}

// LogicalPath maps a file name to its logical path by stripping the
// markdown extension.
func LogicalPath(name string) string {
	return strings.TrimSuffix(name, Ext)
}

// Resolve maps a requested logical path to a file name relative to the docs
// directory. A trailing slash is dropped, the empty path becomes "index" and
// the markdown extension is appended when missing. Paths escaping the docs
// directory are rejected with apperr.ErrNotFound.
func Resolve(logicalPath string) (string, error) {
	p := strings.TrimSuffix(logicalPath, "/")
	if p == "" {
		p = IndexName
	}
	if !strings.HasSuffix(p, Ext) {
		p += Ext
	}
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") || strings.ContainsRune(p, '\\') {
		return "", fmt.Errorf("%w: absolute path %q", apperr.ErrNotFound, logicalPath)
	}
	cleaned := filepath.Clean(p)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path escapes docs root: %q", apperr.ErrNotFound, logicalPath)
	}
	return cleaned, nil
}

// safePath resolves rel against the docs root and rejects any result that
// escapes it.
func (s *Store) safePath(rel string) (string, error) {
	abs := filepath.Join(s.root, rel)
	if !strings.HasPrefix(abs, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: path escapes docs root: %s", apperr.ErrNotFound, rel)
	}
	return abs, nil
}

// Get reads and parses the document that logicalPath resolves to.
// It returns apperr.ErrNotFound when no such file exists and an error
// wrapping apperr.ErrParse when the file cannot be read or parsed.
func (s *Store) Get(ctx context.Context, logicalPath string) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, err := Resolve(logicalPath)
	if err != nil {
		return nil, err
	}
	abs, err := s.safePath(rel)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrNotFound, rel)
		}
		return nil, fmt.Errorf("%w: stat %s: %w", apperr.ErrParse, rel, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", apperr.ErrNotFound, rel)
	}

	return s.read(abs, rel)
}

func (s *Store) read(abs, rel string) (*models.Document, error) {
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", apperr.ErrParse, rel, err)
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperr.ErrParse, rel, err)
	}
	return &models.Document{
		LogicalPath: LogicalPath(filepath.ToSlash(rel)),
		Body:        res.Body,
		Metadata:    models.Metadata(res.Frontmatter),
	}, nil
}

// List scans the docs directory and returns a summary of every readable
// markdown file, sorted by order and then title. Files that fail to read or
// parse are skipped with a warning. The returned error wraps
// apperr.ErrStoreUnavailable when the directory itself cannot be read.
func (s *Store) List(ctx context.Context) (models.Listing, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return models.Listing{}, fmt.Errorf("%w: %w", apperr.ErrStoreUnavailable, err)
	}

	var listing models.Listing
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return models.Listing{}, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) {
			continue
		}
		doc, err := s.read(filepath.Join(s.root, e.Name()), e.Name())
		if err != nil {
			s.logger.Warn("docstore: skipping document",
				slog.String("file", e.Name()),
				slog.String("error", err.Error()))
			continue
		}

		listing.Documents = append(listing.Documents, summarize(doc))
	}

	slices.SortStableFunc(listing.Documents, func(a, b models.Summary) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})
	return listing, nil
}

func summarize(doc *models.Document) models.Summary {
	desc, _ := doc.Metadata.String("description")
	return models.Summary{
		LogicalPath: doc.LogicalPath,
		URL:         "/" + doc.LogicalPath,
		Title:       doc.Title(),
		Description: desc,
		Order:       doc.Metadata.Order(),
	}
}
