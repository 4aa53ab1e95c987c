// Package parser separates YAML front-matter from Markdown content.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delim = "---"

// ErrMalformed is returned when a document opens a front-matter block that
// is never closed or whose contents are not a YAML mapping.
var ErrMalformed = errors.New("malformed front-matter")

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]any
	Body        string
}

// Parse splits raw Markdown bytes into front-matter and body.
// A file that does not start with a "---" line has no front-matter and the
// whole content is returned unchanged as the body.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}
	return &Result{Frontmatter: fm, Body: body}, nil
}

func splitFrontmatter(data []byte) (map[string]any, string, error) {
	first, rest, hasNewline := cutLine(data)
	if !isDelimiter(first) {
		return map[string]any{}, string(data), nil
	}
	if !hasNewline {
		return nil, "", fmt.Errorf("%w: missing closing delimiter", ErrMalformed)
	}

	var block []byte
	remaining := rest
	for {
		line, next, more := cutLine(remaining)
		if isDelimiter(line) {
			block = rest[:len(rest)-len(remaining)]
			remaining = next
			break
		}
		if !more {
			return nil, "", fmt.Errorf("%w: missing closing delimiter", ErrMalformed)
		}
		remaining = next
	}

	fm := map[string]any{}
	if len(bytes.TrimSpace(block)) > 0 {
		if err := yaml.Unmarshal(block, &fm); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if fm == nil {
			fm = map[string]any{}
		}
	}

	body := strings.TrimLeft(string(remaining), "\n\r")
	return fm, body, nil
}

// cutLine returns the first line of data (without its line break), the data
// after the line break, and whether a line break was found.
func cutLine(data []byte) (line, rest []byte, found bool) {
	idx := bytes.IndexByte(data, '\n')
	if idx < 0 {
		return data, nil, false
	}
	return data[:idx], data[idx+1:], true
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimRight(line, " \t\r")) == delim
}
