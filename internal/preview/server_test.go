package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/routes"
	"git.home.luguber.info/inful/docsite/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const siteConfig = `title: Mountify Documentation
url: https://mountify-docs.example.com
baseUrl: /
i18n:
  defaultLocale: en
  locales: [en, zh-CN]
docs:
  routeBasePath: /
`

func writeSite(t *testing.T) string {
	t.Helper()
	return testutil.WriteSite(t, map[string]string{
		"docsite.yaml":       siteConfig,
		"sidebars.yaml":      "tutorialSidebar:\n  - intro\n  - {label: Deploy, items: [deploy/pm2]}\n",
		"docs/intro.md":      "# Introduction\n\n## Install\n\nRun the installer.\n",
		"docs/deploy/pm2.md": "# PM2\n\nKeep the shop running.\n",
		"i18n/zh-CN/docusaurus-plugin-content-docs/current/intro.md": "# 简介\n",
	})
}

type builderFunc func(ctx context.Context, req build.Request) (*build.Result, error)

func (f builderFunc) Run(ctx context.Context, req build.Request) (*build.Result, error) {
	return f(ctx, req)
}

func newTestServer(t *testing.T, b Builder, root string) *Server {
	t.Helper()
	return NewServer(b, Options{
		Request: build.Request{ConfigPath: filepath.Join(root, "docsite.yaml"), Mode: build.ModeValidate},
		Version: "test",
	})
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestServer_ServesCurrentArtifacts(t *testing.T) {
	root := writeSite(t)
	srv := newTestServer(t, build.NewService("test"), root)
	require.NoError(t, srv.Rebuild(t.Context(), "initial"))
	h := srv.Handler()

	rec := get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[HealthResponse](t, rec)
	require.Equal(t, HealthHealthy, health.Status)
	require.Equal(t, 1, health.Builds)
	require.Equal(t, map[string]int{"en": 2, "zh-CN": 2}, health.Pages)

	rec = get(t, h, "/routes.json")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, srv.Result().BuildID, rec.Header().Get("X-Build-Id"))
	table, err := routes.Parse(rec.Body.Bytes())
	require.NoError(t, err)
	_, ok := table.Locale("zh-CN")
	require.True(t, ok)

	t.Run("lookup", func(t *testing.T) {
		m := decode[routes.Match](t, get(t, h, "/api/routes?path=/deploy/pm2/"))
		require.Equal(t, routes.MatchExact, m.Kind)
		require.Equal(t, "deploy/pm2", m.Route.DocID)

		m = decode[routes.Match](t, get(t, h, "/api/routes?path=/blog/post"))
		require.Equal(t, routes.MatchPrefix, m.Kind)

		require.Equal(t, http.StatusBadRequest, get(t, h, "/api/routes").Code)
	})

	t.Run("navigation", func(t *testing.T) {
		nav := decode[build.DocNavigation](t, get(t, h, "/api/nav?doc=intro"))
		require.Equal(t, "tutorialSidebar", nav.Sidebar)
		require.Equal(t, "en", nav.Locale)
		require.Equal(t, "/intro", nav.Permalink)
		require.Equal(t, "deploy/pm2", nav.Next)
		require.Equal(t, "/deploy/pm2", nav.NextPermalink)
		require.Empty(t, nav.PreviousPermalink)

		nav = decode[build.DocNavigation](t, get(t, h, "/api/nav?doc=deploy/pm2&locale=zh-CN"))
		require.Equal(t, []string{"Deploy"}, nav.Breadcrumb)
		require.Equal(t, "/zh-CN/deploy/pm2", nav.Permalink)
		require.Equal(t, "/zh-CN/intro", nav.PreviousPermalink)

		require.Equal(t, http.StatusBadRequest, get(t, h, "/api/nav?doc=intro&locale=fr").Code)
		require.Equal(t, http.StatusBadRequest, get(t, h, "/api/nav").Code)

		rec := get(t, h, "/api/nav?doc=changelog")
		require.Equal(t, http.StatusNotFound, rec.Code)
		body := decode[errors.HTTPErrorResponse](t, rec)
		require.Equal(t, string(errors.CategoryNotFound), body.Code)
	})

	t.Run("search", func(t *testing.T) {
		rec := get(t, h, "/search/en/search-index.json")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"locale":"en"`)

		require.Equal(t, http.StatusNotFound, get(t, h, "/search/en/other.json").Code)
		require.Equal(t, http.StatusNotFound, get(t, h, "/search/fr/search-index.json").Code)
	})

	t.Run("query", func(t *testing.T) {
		resp := decode[build.SearchResults](t, get(t, h, "/api/search?q=shop"))
		require.Equal(t, "en", resp.Locale)
		require.NotEmpty(t, resp.Hits)
		require.Equal(t, "deploy/pm2", resp.Hits[0].DocID)

		resp = decode[build.SearchResults](t, get(t, h, "/api/search?q=installer&limit=1"))
		require.Len(t, resp.Hits, 1)
		require.Equal(t, "intro", resp.Hits[0].DocID)

		resp = decode[build.SearchResults](t, get(t, h, "/api/search?q=nothing-matches-this&locale=zh-CN"))
		require.Equal(t, "zh-CN", resp.Locale)
		require.NotNil(t, resp.Hits)
		require.Empty(t, resp.Hits)

		require.Equal(t, http.StatusBadRequest, get(t, h, "/api/search").Code)
		require.Equal(t, http.StatusBadRequest, get(t, h, "/api/search?q=shop&locale=fr").Code)
		require.Equal(t, http.StatusBadRequest, get(t, h, "/api/search?q=shop&limit=zero").Code)
	})

	require.Equal(t, http.StatusNotFound, get(t, h, "/metrics").Code, "metrics are only mounted when configured")
}

func TestServer_UnhealthyBeforeFirstSuccessfulBuild(t *testing.T) {
	fail := builderFunc(func(context.Context, build.Request) (*build.Result, error) {
		return &build.Result{Outcome: build.OutcomeFailed}, errors.ConfigError("site configuration is invalid").Build()
	})
	srv := newTestServer(t, fail, t.TempDir())
	require.Error(t, srv.Rebuild(t.Context(), "initial"))
	require.Nil(t, srv.Config())

	h := srv.Handler()
	rec := get(t, h, "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	health := decode[HealthResponse](t, rec)
	require.Equal(t, HealthUnhealthy, health.Status)
	require.Contains(t, health.Error, "site configuration is invalid")

	require.Equal(t, http.StatusServiceUnavailable, get(t, h, "/routes.json").Code)
	require.Equal(t, http.StatusServiceUnavailable, get(t, h, "/api/routes?path=/intro").Code)
	require.Equal(t, http.StatusServiceUnavailable, get(t, h, "/api/search?q=intro").Code)
}

func TestServer_FailedRebuildKeepsPreviousArtifacts(t *testing.T) {
	root := writeSite(t)
	svc := build.NewService("test")
	var broken atomic.Bool
	b := builderFunc(func(ctx context.Context, req build.Request) (*build.Result, error) {
		res, err := svc.Run(ctx, req)
		if broken.Load() {
			res.Table = nil
			return res, errors.SidebarError("sidebar references unknown docs").Build()
		}
		return res, err
	})

	srv := newTestServer(t, b, root)
	require.NoError(t, srv.Rebuild(t.Context(), "initial"))
	first := srv.Result()

	broken.Store(true)
	require.Error(t, srv.Rebuild(t.Context(), "watch"))
	require.Same(t, first, srv.Result())

	h := srv.Handler()
	rec := get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[HealthResponse](t, rec)
	require.Equal(t, HealthDegraded, health.Status)
	require.Equal(t, first.BuildID, health.BuildID)
	require.Equal(t, "watch", health.Trigger)
	require.Equal(t, 2, health.Builds)
	require.Equal(t, http.StatusOK, get(t, h, "/routes.json").Code)

	broken.Store(false)
	require.NoError(t, srv.Rebuild(t.Context(), "watch"))
	require.NotSame(t, first, srv.Result())
	require.Equal(t, HealthHealthy, decode[HealthResponse](t, get(t, h, "/healthz")).Status)
}

func TestServer_ScheduledRebuildsAreForced(t *testing.T) {
	var got []build.Request
	b := builderFunc(func(_ context.Context, req build.Request) (*build.Result, error) {
		got = append(got, req)
		return &build.Result{Outcome: build.OutcomeSuccess}, nil
	})
	srv := newTestServer(t, b, t.TempDir())
	require.NoError(t, srv.Rebuild(t.Context(), "watch"))
	require.NoError(t, srv.Rebuild(t.Context(), "schedule"))

	require.Len(t, got, 2)
	require.False(t, got[0].Force)
	require.Equal(t, "watch", got[0].Trigger)
	require.True(t, got[1].Force)
	require.Equal(t, build.ModeValidate, got[1].Mode)
}

func TestServer_RequestsCoalesceWhileBuilding(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{}, 4)
	release := make(chan struct{})
	b := builderFunc(func(ctx context.Context, _ build.Request) (*build.Result, error) {
		calls.Add(1)
		started <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
		}
		return &build.Result{Outcome: build.OutcomeSuccess}, nil
	})
	srv := newTestServer(t, b, t.TempDir())

	ctx, cancel := context.WithCancel(t.Context())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		srv.work(ctx)
	}()

	srv.Request("watch")
	<-started
	for range 5 {
		srv.Request("watch")
	}
	close(release)
	<-started

	require.Never(t, func() bool { return calls.Load() > 2 }, 200*time.Millisecond, 20*time.Millisecond)
	cancel()
	wg.Wait()
	require.Equal(t, int32(2), calls.Load())
}

func TestServer_RecoversHandlerPanics(t *testing.T) {
	srv := newTestServer(t, build.NewService("test"), t.TempDir())
	h := chain(srv.logger, srv.errs)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := get(t, h, "/anything")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, string(errors.CategoryInternal), decode[errors.HTTPErrorResponse](t, rec).Code)
}
