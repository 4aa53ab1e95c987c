package render

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// newMarkdown builds the goldmark engine used for document pages: GFM
// (tables, strikethrough, autolinks, task lists) with heading anchors.
// goldmark.Markdown is stateless after construction and shared across
// requests.
func newMarkdown(rawHTML bool) goldmark.Markdown {
	rendererOptions := []goldmark.Option{}
	if rawHTML {
		rendererOptions = append(rendererOptions, goldmark.WithRendererOptions(html.WithUnsafe()))
	}

	return goldmark.New(append(rendererOptions,
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)...)
}
