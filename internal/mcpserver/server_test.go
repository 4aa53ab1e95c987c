package mcpserver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/docserve/internal/docstore"
	"github.com/starford/docserve/internal/testutil"
)

func testServer(t *testing.T, files map[string]string) *Server {
	t.Helper()
	_, store := testutil.TestDocs(t, files)
	return New(store, "test", nil)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error
	switch name {
	case "list_documents":
		result, err = srv.listDocuments(ctx, req)
	case "read_document":
		result, err = srv.readDocument(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	require.NoError(t, err)
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

var docs = map[string]string{
	"index.md": "Welcome.",
	"intro.md": "---\ntitle: Foo\norder: 1\n---\nHello",
	"bad.md":   "---\ntitle: Bad\n",
}

func TestListDocuments(t *testing.T) {
	srv := testServer(t, docs)
	r := callTool(t, srv, "list_documents", map[string]any{})
	assert.False(t, r.IsError)
	assert.Equal(t,
		"# Documentation Index\n\nWelcome to the documentation. Available pages:\n\n- [Foo](/intro)\n- [index](/index)\n",
		resultText(r))
}

func TestReadDocument(t *testing.T) {
	srv := testServer(t, docs)

	r := callTool(t, srv, "read_document", map[string]any{"path": "intro"})
	assert.False(t, r.IsError)
	assert.Equal(t, "# Foo\n\nHello", resultText(r))

	r = callTool(t, srv, "read_document", map[string]any{"path": ""})
	assert.Equal(t, "Welcome.", resultText(r))
}

func TestReadDocumentErrors(t *testing.T) {
	srv := testServer(t, docs)

	r := callTool(t, srv, "read_document", map[string]any{"path": "nope"})
	assert.True(t, r.IsError)
	assert.Equal(t, "not found: nope", resultText(r))

	r = callTool(t, srv, "read_document", map[string]any{"path": "../../etc/passwd"})
	assert.True(t, r.IsError)

	r = callTool(t, srv, "read_document", map[string]any{"path": "bad"})
	assert.True(t, r.IsError)
	assert.Contains(t, resultText(r), "malformed front-matter")

	r = callTool(t, srv, "read_document", map[string]any{})
	assert.True(t, r.IsError)
}

func TestIndexResource(t *testing.T) {
	srv := testServer(t, docs)
	contents, err := srv.readIndexResource(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, IndexURI, text.URI)
	assert.Contains(t, text.Text, "- [Foo](/intro)")
}

func TestUnavailableDirectory(t *testing.T) {
	store, err := docstore.New(filepath.Join(t.TempDir(), "gone"), nil)
	require.NoError(t, err)
	srv := New(store, "test", nil)

	r := callTool(t, srv, "list_documents", map[string]any{})
	assert.False(t, r.IsError)
	assert.Equal(t, "# Documentation Index\n\nWelcome to the documentation. Available pages:\n\n", resultText(r))
}

func TestServerRegistersTools(t *testing.T) {
	srv := testServer(t, nil)
	assert.NotNil(t, srv.MCPServer())
}
