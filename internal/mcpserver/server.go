// Package mcpserver exposes route lookups, sidebar navigation and search of
// a built site as Model Context Protocol tools for editors and agents.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"git.home.luguber.info/inful/docsite/internal/build"
)

// Tool names.
const (
	ToolLookupRoute       = "lookupRoute"
	ToolSidebarNavigation = "sidebarNavigation"
	ToolSearchDocs        = "searchDocs"
)

// Source returns the build the tools answer from. It may return nil while
// no build has succeeded.
type Source func() *build.Result

// Static serves a single, fixed build.
func Static(res *build.Result) Source {
	return func() *build.Result { return res }
}

type LookupRouteRequest struct {
	Path string `json:"path"`
}

type SidebarNavigationRequest struct {
	DocID  string `json:"docId"`
	Locale string `json:"locale"`
}

type SearchDocsRequest struct {
	Query  string `json:"query"`
	Locale string `json:"locale"`
	Limit  int    `json:"limit"`
}

// NewServer creates an MCP server with the route tools registered.
func NewServer(version string, src Source) *server.MCPServer {
	s := server.NewMCPServer(
		"docsite",
		version,
		server.WithToolCapabilities(false),
	)

	lookupTool := mcp.NewTool(ToolLookupRoute,
		mcp.WithDescription("Resolve a URL path of the documentation site to its route: locale, page component and the doc it renders"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Site-absolute URL path, e.g. /zh-CN/guide/getting-started"),
		),
	)
	s.AddTool(lookupTool, mcp.NewTypedToolHandler(lookupRouteHandler(src)))

	navTool := mcp.NewTool(ToolSidebarNavigation,
		mcp.WithDescription("Get the sidebar, breadcrumb and previous/next docs of a doc, with page paths in a locale"),
		mcp.WithString("docId",
			mcp.Required(),
			mcp.Description("Doc id, e.g. guide/getting-started"),
		),
		mcp.WithString("locale",
			mcp.Description("Locale to resolve page paths in; defaults to the site default locale"),
		),
	)
	s.AddTool(navTool, mcp.NewTypedToolHandler(sidebarNavigationHandler(src)))

	searchTool := mcp.NewTool(ToolSearchDocs,
		mcp.WithDescription("Full-text search over the docs of one locale; returns matching page sections best first"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search terms; every term must match"),
		),
		mcp.WithString("locale",
			mcp.Description("Locale to search; defaults to the site default locale"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of hits; defaults to searchResultLimits"),
		),
	)
	s.AddTool(searchTool, mcp.NewTypedToolHandler(searchDocsHandler(src)))

	return s
}

// ServeStdio serves s over stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func lookupRouteHandler(src Source) func(context.Context, mcp.CallToolRequest, LookupRouteRequest) (*mcp.CallToolResult, error) {
	return func(_ context.Context, _ mcp.CallToolRequest, args LookupRouteRequest) (*mcp.CallToolResult, error) {
		if args.Path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}
		res := src()
		if res == nil || res.Table == nil {
			return mcp.NewToolResultError("no successful build yet"), nil
		}
		m, ok := res.Table.Lookup(args.Path)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no route matches %s", args.Path)), nil
		}
		return jsonResult(m)
	}
}

func sidebarNavigationHandler(src Source) func(context.Context, mcp.CallToolRequest, SidebarNavigationRequest) (*mcp.CallToolResult, error) {
	return func(_ context.Context, _ mcp.CallToolRequest, args SidebarNavigationRequest) (*mcp.CallToolResult, error) {
		if args.DocID == "" {
			return mcp.NewToolResultError("docId is required"), nil
		}
		res := src()
		if res == nil || res.Table == nil {
			return mcp.NewToolResultError("no successful build yet"), nil
		}
		nav, err := res.Navigation(args.DocID, args.Locale)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(nav)
	}
}

func searchDocsHandler(src Source) func(context.Context, mcp.CallToolRequest, SearchDocsRequest) (*mcp.CallToolResult, error) {
	return func(_ context.Context, _ mcp.CallToolRequest, args SearchDocsRequest) (*mcp.CallToolResult, error) {
		if args.Query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		res := src()
		if res == nil || res.Table == nil {
			return mcp.NewToolResultError("no successful build yet"), nil
		}
		found, err := res.Search(args.Query, args.Locale, args.Limit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(found)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
