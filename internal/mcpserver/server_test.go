package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/routes"
	"git.home.luguber.info/inful/docsite/internal/testutil"
)

func builtSite(t *testing.T) *build.Result {
	t.Helper()
	root := testutil.WriteSite(t, map[string]string{
		"docsite.yaml": "title: Docs\nurl: https://docs.example.com\nbaseUrl: /\n" +
			"i18n: {defaultLocale: en, locales: [en, zh-CN]}\ndocs: {routeBasePath: /}\n",
		"sidebars.yaml":            "guide:\n  - intro\n  - {label: Modules, items: [modules/payments]}\n",
		"docs/intro.md":            "# Intro\n",
		"docs/modules/payments.md": "# Payments\n\n## Webhooks\n\nStripe retries deliveries.\n",
	})
	res, err := build.NewService("test").Run(t.Context(), build.Request{
		ConfigPath: filepath.Join(root, "docsite.yaml"),
		Mode:       build.ModeValidate,
	})
	require.NoError(t, err)
	return res
}

func callRequest(name string, args any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Request: mcp.Request{Method: "tools/call"},
		Params:  mcp.CallToolParams{Name: name, Arguments: args},
	}
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestNewServer(t *testing.T) {
	require.NotNil(t, NewServer("test", Static(nil)))
}

func TestLookupRoute(t *testing.T) {
	h := lookupRouteHandler(Static(builtSite(t)))
	ctx := context.Background()

	args := LookupRouteRequest{Path: "/zh-CN/modules/payments"}
	res, err := h(ctx, callRequest(ToolLookupRoute, args), args)
	require.NoError(t, err)
	require.False(t, res.IsError)

	var m routes.Match
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &m))
	require.Equal(t, "zh-CN", m.Locale)
	require.Equal(t, routes.MatchExact, m.Kind)
	require.Equal(t, "modules/payments", m.Route.DocID)

	args = LookupRouteRequest{}
	res, err = h(ctx, callRequest(ToolLookupRoute, args), args)
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Equal(t, "path is required", text(t, res))
}

func TestSidebarNavigation(t *testing.T) {
	h := sidebarNavigationHandler(Static(builtSite(t)))
	ctx := context.Background()

	args := SidebarNavigationRequest{DocID: "modules/payments", Locale: "zh-CN"}
	res, err := h(ctx, callRequest(ToolSidebarNavigation, args), args)
	require.NoError(t, err)
	require.False(t, res.IsError)

	var nav build.DocNavigation
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &nav))
	require.Equal(t, "guide", nav.Sidebar)
	require.Equal(t, []string{"Modules"}, nav.Breadcrumb)
	require.Equal(t, "intro", nav.Previous)
	require.Equal(t, "/zh-CN/intro", nav.PreviousPermalink)
	require.Equal(t, "/zh-CN/modules/payments", nav.Permalink)

	args = SidebarNavigationRequest{DocID: "unknown"}
	res, err = h(ctx, callRequest(ToolSidebarNavigation, args), args)
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, text(t, res), "not listed in any sidebar")
}

func TestSearchDocs(t *testing.T) {
	h := searchDocsHandler(Static(builtSite(t)))
	ctx := context.Background()

	args := SearchDocsRequest{Query: "stripe", Locale: "zh-CN"}
	res, err := h(ctx, callRequest(ToolSearchDocs, args), args)
	require.NoError(t, err)
	require.False(t, res.IsError)

	var found build.SearchResults
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &found))
	require.Equal(t, "zh-CN", found.Locale)
	require.Len(t, found.Hits, 1)
	require.Equal(t, "modules/payments", found.Hits[0].DocID)
	require.Equal(t, "Webhooks", found.Hits[0].Section)
	require.Equal(t, "/zh-CN/modules/payments#webhooks", found.Hits[0].URL)

	args = SearchDocsRequest{}
	res, err = h(ctx, callRequest(ToolSearchDocs, args), args)
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Equal(t, "query is required", text(t, res))

	args = SearchDocsRequest{Query: "stripe", Locale: "fr"}
	res, err = h(ctx, callRequest(ToolSearchDocs, args), args)
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, text(t, res), "locale is not declared")
}

func TestTools_WithoutBuild(t *testing.T) {
	args := LookupRouteRequest{Path: "/intro"}
	res, err := lookupRouteHandler(Static(nil))(context.Background(), callRequest(ToolLookupRoute, args), args)
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Equal(t, "no successful build yet", text(t, res))
}
