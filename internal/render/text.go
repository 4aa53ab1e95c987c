package render

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/starford/docserve/internal/models"
)

const (
	notFoundText = "# 404 - Page Not Found\n\nThe requested documentation page does not exist."
	errorText    = "# 500 - Internal Server Error\n\nAn error occurred while processing your request."

	indexHeading = "# Documentation Index\n\n"
	indexIntro   = "Welcome to the documentation. Available pages:\n\n"
)

// Text renders o as plain markdown, the agent representation.
func Text(o Outcome) Response {
	switch o.Kind {
	case KindDocument:
		if o.Document == nil {
			return textResponse(http.StatusInternalServerError, errorText)
		}
		return textResponse(http.StatusOK, DocumentMarkdown(o.Document))
	case KindListing:
		return textResponse(http.StatusOK, IndexMarkdown(o.Listing))
	case KindNotFound:
		return textResponse(http.StatusNotFound, notFoundText)
	default:
		return textResponse(http.StatusInternalServerError, errorText)
	}
}

// DocumentMarkdown returns the document body, headed by its front-matter
// title when it has one.
func DocumentMarkdown(doc *models.Document) string {
	if title, ok := doc.Metadata.String("title"); ok {
		return fmt.Sprintf("# %s\n\n%s", title, doc.Body)
	}
	return doc.Body
}

// IndexMarkdown returns the listing as a markdown link list.
func IndexMarkdown(l models.Listing) string {
	var b strings.Builder
	b.WriteString(indexHeading)
	b.WriteString(indexIntro)
	for _, d := range l.Documents {
		fmt.Fprintf(&b, "- [%s](%s)\n", d.Title, d.URL)
	}
	return b.String()
}

func textResponse(status int, body string) Response {
	return Response{Status: status, ContentType: ContentTypeText, Body: []byte(body)}
}
