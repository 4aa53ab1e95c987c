// Package mcpserver exposes the docs directory to LLM clients as an MCP
// (Model Context Protocol) server over stdio. Documents are returned in the
// same plain markdown form the HTTP server sends to agents.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/docserve/internal/apperr"
	"github.com/starford/docserve/internal/docstore"
	"github.com/starford/docserve/internal/models"
	"github.com/starford/docserve/internal/render"
)

// IndexURI is the resource URI of the documentation index.
const IndexURI = "docs://index"

// Server wraps the MCP server with the documentation tools.
type Server struct {
	mcp    *server.MCPServer
	store  docstore.Provider
	logger *slog.Logger
}

// New creates an MCP server with all tools and resources registered.
func New(store docstore.Provider, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{store: store, logger: logger}

	s.mcp = server.NewMCPServer(
		"docserve",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List all documentation pages as a markdown link list, ordered as on the site index."),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read one documentation page as markdown. "+
			"The path is the page URL without the leading slash (e.g. getting-started); "+
			"an empty path reads the index page."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Logical path of the page")),
	), s.readDocument)

	s.mcp.AddResource(
		mcp.NewResource(IndexURI, "Documentation Index",
			mcp.WithResourceDescription("Markdown list of every documentation page."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readIndexResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// listing mirrors the HTTP index: an unreadable directory yields an empty
// listing rather than an error.
func (s *Server) listing(ctx context.Context) models.Listing {
	l, err := s.store.List(ctx)
	if err != nil {
		s.logger.Warn("mcp: list documents failed", slog.String("error", err.Error()))
		return models.Listing{}
	}
	return l
}

func (s *Server) listDocuments(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(render.IndexMarkdown(s.listing(ctx))), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.store.Get(ctx, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		s.logger.Error("mcp: read document failed", slog.String("path", path), slog.String("error", err.Error()))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(render.DocumentMarkdown(doc)), nil
}

func (s *Server) readIndexResource(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      IndexURI,
			MIMEType: "text/markdown",
			Text:     render.IndexMarkdown(s.listing(ctx)),
		},
	}, nil
}
