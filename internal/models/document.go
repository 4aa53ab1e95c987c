// Package models defines the domain types for docserve.
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultOrder places documents without an explicit order after all others.
const DefaultOrder = 999

// Metadata holds the front-matter key/value pairs of a document.
type Metadata map[string]any

// String returns the value of key as text. Numbers and booleans are
// formatted; empty strings, nulls and nested values count as absent.
func (m Metadata) String(key string) (string, bool) {
	var s string
	switch v := m[key].(type) {
	case string:
		s = v
	case int, int64, uint64, float64, bool:
		s = fmt.Sprint(v)
	}
	return s, s != ""
}

// Document is a parsed markdown file from the docs directory.
type Document struct {
	LogicalPath string   `json:"path"`
	Body        string   `json:"body"`
	Metadata    Metadata `json:"metadata,omitempty"`
}

// Title returns the front-matter title, falling back to the logical path.
func (d *Document) Title() string {
	if t, ok := d.Metadata.String("title"); ok {
		return t
	}
	return d.LogicalPath
}

// Summary is one entry of a document listing.
type Summary struct {
	LogicalPath string `json:"path"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

// Listing is the ordered set of documents in the docs directory. Logical
// paths are file names minus the exact ".md" suffix, so they are unique
// within the directory.
type Listing struct {
	Documents []Summary `json:"documents"`
}

// Order returns the numeric "order" field, or DefaultOrder when it is absent
// or not a number.
func (m Metadata) Order() int {
	switch v := m["order"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return DefaultOrder
}
