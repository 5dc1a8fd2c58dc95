// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Inkwell tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/inkwell/internal/search"
	"github.com/starford/inkwell/internal/vault"
)

// Server wraps the MCP server with Inkwell tools.
type Server struct {
	mcp   *server.MCPServer
	vault *vault.Vault
}

// New creates a new MCP server with all Inkwell tools registered.
func New(v *vault.Vault) *Server {
	s := &Server{vault: v}

	s.mcp = server.NewMCPServer(
		"Inkwell",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List all pages with their IDs, titles and categories."),
	), s.listPages)

	s.mcp.AddTool(mcp.NewTool("read_page",
		mcp.WithDescription("Read the full block document of a page."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Page ID (UUID)")),
	), s.readPage)

	s.mcp.AddTool(mcp.NewTool("search_pages",
		mcp.WithDescription("Search page titles and block contents."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPages)

	s.mcp.AddTool(mcp.NewTool("create_page",
		mcp.WithDescription("Create a new empty page with the given title."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Page title")),
		mcp.WithString("icon", mcp.Description("Optional emoji icon")),
	), s.createPage)

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

func (s *Server) listPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pages, idx, err := s.vault.ListPages()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lines := make([]string, 0, len(pages))
	for _, p := range pages {
		line := p.ID + "\t" + p.Title
		if catID := idx.CategoryMap[p.ID]; catID != "" {
			line += "\t(category " + catID + ")"
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no pages"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := vault.ValidateID(id, "page id"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.vault.Page(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(page, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pages, _, err := s.vault.ListPages()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results := search.Search(pages, query, search.DefaultLimit)
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	icon := ""
	if v, err := req.RequireString("icon"); err == nil {
		icon = v
	}
	page, err := s.vault.CreatePage(title, icon, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", page.ID)), nil
}
