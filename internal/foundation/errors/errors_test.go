package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifiedError_BuilderAndAccessors(t *testing.T) {
	cause := stderrors.New("yaml: line 3")
	err := WrapError(cause, CategoryConfig, "failed to parse site configuration").
		Fatal().
		WithContext("path", "docsite.yaml").
		Build()

	require.Equal(t, CategoryConfig, err.Category())
	require.Equal(t, SeverityFatal, err.Severity())
	require.True(t, err.IsFatal())
	require.False(t, err.CanRetry())
	require.ErrorIs(t, err, cause)

	path, ok := err.Context().GetString("path")
	require.True(t, ok)
	require.Equal(t, "docsite.yaml", path)
	require.Contains(t, err.Error(), "[config:fatal]")
}

func TestAsClassified_FindsWrappedError(t *testing.T) {
	inner := SidebarError("sidebar references unknown document").Build()
	wrapped := fmt.Errorf("stage validate_sidebar: %w", inner)

	got, ok := AsClassified(wrapped)
	require.True(t, ok)
	require.Same(t, inner, got)
	require.True(t, HasCategory(wrapped, CategorySidebar))
	require.Equal(t, CategoryInternal, GetCategory(stderrors.New("plain")))
}

func TestClassifiedError_WithContextDoesNotMutateOriginal(t *testing.T) {
	base := RoutesError("duplicate route path").Build()
	withPath := base.WithContext("path", "/intro")

	_, ok := base.Context().Get("path")
	require.False(t, ok)
	got, _ := withPath.Context().GetString("path")
	require.Equal(t, "/intro", got)
	require.ErrorIs(t, withPath, base)
}

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("baseUrl must end with /").Build(), 2},
		{"config", ConfigError("configuration file not found").Build(), 7},
		{"sidebar", SidebarError("dangling reference").Build(), 11},
		{"routes wrapped", fmt.Errorf("build: %w", RoutesError("duplicate").Build()), 11},
		{"runtime", RuntimeError("watcher failed").Build(), 12},
		{"unclassified", stderrors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError_ListsContextAndFindings(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	findings := stderrors.Join(
		SidebarError("unknown document").WithContext("doc_id", "deploy/k8s").Build(),
		SidebarError("unknown document").WithContext("doc_id", "modules/search").Build(),
	)
	err := WrapError(findings, CategorySidebar, "sidebar validation failed").
		Fatal().
		WithContext("sidebar", "tutorialSidebar").
		Build()

	out := adapter.FormatError(err)
	require.True(t, strings.HasPrefix(out, "Error (sidebar): sidebar validation failed"))
	require.Contains(t, out, "sidebar: tutorialSidebar")
	require.Contains(t, out, "- unknown document (doc_id=deploy/k8s)")
	require.Contains(t, out, "- unknown document (doc_id=modules/search)")

	require.Equal(t, "Error: boom", adapter.FormatError(stderrors.New("boom")))
	require.Empty(t, adapter.FormatError(nil))
}

func TestHTTPErrorAdapter_WriteErrorResponse(t *testing.T) {
	adapter := NewHTTPErrorAdapter(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/routes?path=/nope", nil)

	adapter.WriteErrorResponse(rec, req, NewError(CategoryNotFound, "route not found").WithContext("path", "/nope").Build())

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"error":"route not found","code":"not_found","details":{"path":"/nope"}}`, rec.Body.String())
}
