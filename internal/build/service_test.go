package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/eventstore"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/manifest"
	"git.home.luguber.info/inful/docsite/internal/notify"
	"git.home.luguber.info/inful/docsite/internal/routes"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/storage"
	"git.home.luguber.info/inful/docsite/internal/testutil"
)

const siteConfig = `title: Mountify Documentation
url: https://mountify-docs.example.com
baseUrl: /
onBrokenMarkdownLinks: warn
i18n:
  defaultLocale: en
  locales: [en, zh-CN]
docs:
  routeBasePath: /
themeConfig:
  navbar:
    items:
      - type: docSidebar
        sidebarId: tutorialSidebar
        label: Documentation
`

func siteFiles() map[string]string {
	return map[string]string{
		"docsite.yaml":  siteConfig,
		"sidebars.yaml": "tutorialSidebar:\n  - intro\n  - {label: Deploy, items: [deploy/pm2]}\n  - roadmap\n",
		"docs/intro.md": "---\nsidebar_position: 1\n---\n# Introduction\n\nSee [deployment](./deploy/pm2.md).\n\n## Install\n\nRun the installer.\n",
		"docs/deploy/pm2.md": "# PM2\n\nBack to [the intro](/intro).\n",
		"docs/roadmap.md":    "---\ndraft: true\n---\n# Roadmap\n",
		"i18n/zh-CN/docusaurus-plugin-content-docs/current/intro.md": "# 简介\n\n## 安装\n\n运行安装程序。\n",
	}
}

type recordingPublisher struct {
	events []notify.BuildCompleted
}

func (p *recordingPublisher) PublishBuildCompleted(_ context.Context, e notify.BuildCompleted) error {
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type harness struct {
	svc    *Service
	store  *storage.MemoryStore
	events *eventstore.SQLiteStore
	pub    *recordingPublisher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	events, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = events.Close() })

	h := &harness{store: storage.NewMemoryStore(), events: events, pub: &recordingPublisher{}}
	h.svc = NewService("test").WithStore(h.store).WithEventStore(events).WithPublisher(h.pub)
	return h
}

func TestRun_FullBuildWritesArtifacts(t *testing.T) {
	root := testutil.WriteSite(t, siteFiles())
	h := newHarness(t)

	res, err := h.svc.Run(t.Context(), Request{ConfigPath: filepath.Join(root, "docsite.yaml")})
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, res.Outcome)
	require.Len(t, res.Report.Stages, 10)
	require.Empty(t, res.Report.Warnings)
	require.Equal(t, map[string]int{"en": 2, "zh-CN": 2}, res.Report.Pages)

	outDir := filepath.Join(root, "build")
	table, err := routes.ReadFile(filepath.Join(outDir, routes.FileName))
	require.NoError(t, err)
	hash, err := table.Hash()
	require.NoError(t, err)
	require.Equal(t, res.Report.TableHash, hash)

	m, err := manifest.ReadFile(filepath.Join(outDir, manifest.FileName))
	require.NoError(t, err)
	require.Equal(t, res.BuildID, m.ID)
	require.Equal(t, manifest.StatusSuccess, m.Status)
	require.Len(t, m.Outputs.SearchIndexes, 2)
	for _, rel := range m.Outputs.SearchIndexes {
		require.FileExists(t, filepath.Join(outDir, filepath.FromSlash(rel)))
	}

	latest, err := h.store.Latest(t.Context())
	require.NoError(t, err)
	refs, err := h.store.BuildRef(t.Context(), res.BuildID)
	require.NoError(t, err)
	require.Contains(t, refs, latest)
	require.Len(t, refs, 4)

	history, err := eventstore.History(t.Context(), h.events, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, eventstore.StatusSuccess, history[0].Status)
	require.Equal(t, 10, history[0].Stages)

	require.Len(t, h.pub.events, 1)
	require.Equal(t, 4, h.pub.events[0].Routes)
}

func TestRun_DraftReferencedBySidebarIsPruned(t *testing.T) {
	root := testutil.WriteSite(t, siteFiles())
	res, err := NewService("test").Run(t.Context(), Request{ConfigPath: filepath.Join(root, "docsite.yaml"), Mode: ModeValidate})
	require.NoError(t, err)
	require.NotContains(t, res.Sidebars.DocIDs("tutorialSidebar"), "roadmap")
	_, ok := res.Table.FindDoc("en", "roadmap")
	require.False(t, ok)

	res, err = NewService("test").Run(t.Context(), Request{
		ConfigPath:    filepath.Join(root, "docsite.yaml"),
		Mode:          ModeValidate,
		IncludeDrafts: true,
	})
	require.NoError(t, err)
	_, ok = res.Table.FindDoc("en", "roadmap")
	require.True(t, ok)
}

func TestRun_UnchangedInputsSkipWrites(t *testing.T) {
	root := testutil.WriteSite(t, siteFiles())
	h := newHarness(t)
	req := Request{ConfigPath: filepath.Join(root, "docsite.yaml")}

	first, err := h.svc.Run(t.Context(), req)
	require.NoError(t, err)

	second, err := h.svc.Run(t.Context(), req)
	require.NoError(t, err)
	require.Equal(t, OutcomeUnchanged, second.Outcome)
	require.Equal(t, "no_changes", second.Report.SkipReason)
	require.Equal(t, StageResultSkipped, second.Report.StageResults[StageWriteArtifacts])
	require.Equal(t, StageResultSkipped, second.Report.StageResults[StageRecordManifest])
	require.Equal(t, first.Report.TableHash, second.Report.TableHash)
	require.Equal(t, first.BuildID, second.Manifest.ID)

	forced, err := h.svc.Run(t.Context(), Request{ConfigPath: req.ConfigPath, Force: true})
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, forced.Outcome)

	// Tampering with the artifact defeats the skip.
	require.NoError(t, os.WriteFile(filepath.Join(root, "build", routes.FileName), []byte(`{"locales":[]}`), 0o600))
	repaired, err := h.svc.Run(t.Context(), req)
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, repaired.Outcome)

	// As does a truncated search index.
	index := filepath.Join(root, "build", filepath.FromSlash(repaired.Manifest.Outputs.SearchIndexes[0]))
	require.NoError(t, os.WriteFile(index, []byte(`{"locale":`), 0o600))
	reindexed, err := h.svc.Run(t.Context(), req)
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, reindexed.Outcome)
	_, err = search.Load(index)
	require.NoError(t, err)

	// So does an edited doc.
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "deploy", "pm2.md"), []byte("# PM2\n\nUpdated.\n"), 0o600))
	edited, err := h.svc.Run(t.Context(), req)
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, edited.Outcome)
	require.Equal(t, first.Report.TableHash, edited.Report.TableHash, "content edits do not move routes")
}

func TestRun_DanglingSidebarReferenceFails(t *testing.T) {
	files := siteFiles()
	files["sidebars.yaml"] = "tutorialSidebar:\n  - intro\n  - deploy/missing\n"
	root := testutil.WriteSite(t, files)
	h := newHarness(t)

	res, err := h.svc.Run(t.Context(), Request{ConfigPath: filepath.Join(root, "docsite.yaml")})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategorySidebar))
	require.Equal(t, OutcomeFailed, res.Outcome)
	require.Equal(t, StageValidateSidebar, res.Report.FailedStage)
	require.NoFileExists(t, filepath.Join(root, "build", routes.FileName))

	history, err := eventstore.History(t.Context(), h.events, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, eventstore.StatusFailed, history[0].Status)
	require.Equal(t, string(StageValidateSidebar), history[0].ErrorStage)
	require.Empty(t, h.pub.events)
}

func TestRun_BrokenLinkPolicies(t *testing.T) {
	files := siteFiles()
	files["docs/deploy/pm2.md"] = "# PM2\n\nSee [ops](./ops.md) and [the guide](/guide/setup).\n"

	t.Run("warn and throw", func(t *testing.T) {
		root := testutil.WriteSite(t, files)
		res, err := NewService("test").Run(t.Context(), Request{ConfigPath: filepath.Join(root, "docsite.yaml")})
		require.Error(t, err)
		require.True(t, errors.HasCategory(err, errors.CategoryLinks))
		require.Equal(t, StageCheckLinks, res.Report.FailedStage)
	})

	t.Run("warn only", func(t *testing.T) {
		relaxed := siteFiles()
		for k, v := range files {
			relaxed[k] = v
		}
		relaxed["docsite.yaml"] = siteConfig + "onBrokenLinks: warn\n"
		root := testutil.WriteSite(t, relaxed)

		res, err := NewService("test").Run(t.Context(), Request{ConfigPath: filepath.Join(root, "docsite.yaml")})
		require.NoError(t, err)
		require.Equal(t, StageResultWarning, res.Report.StageResults[StageCheckLinks])
		// Both links are broken in both locales.
		require.Len(t, res.Report.Warnings, 4)
		require.Equal(t, errors.CategoryLinks, res.Report.Warnings[0].Category)
	})
}

func TestRun_ValidateModeWritesNothing(t *testing.T) {
	root := testutil.WriteSite(t, siteFiles())
	h := newHarness(t)

	res, err := h.svc.Run(t.Context(), Request{ConfigPath: filepath.Join(root, "docsite.yaml"), Mode: ModeValidate})
	require.NoError(t, err)
	require.Len(t, res.Report.Stages, 8)
	require.NotNil(t, res.Table)
	require.Len(t, res.Indexes, 2)
	require.NoDirExists(t, filepath.Join(root, "build"))

	history, err := eventstore.History(t.Context(), h.events, 0)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestResult_Search(t *testing.T) {
	root := testutil.WriteSite(t, siteFiles())
	res, err := NewService("test").Run(t.Context(), Request{ConfigPath: filepath.Join(root, "docsite.yaml"), Mode: ModeValidate})
	require.NoError(t, err)

	found, err := res.Search("installer", "", 0)
	require.NoError(t, err)
	require.Equal(t, "en", found.Locale)
	require.NotEmpty(t, found.Hits)
	require.Equal(t, "intro", found.Hits[0].DocID)

	zh, err := res.Search("pm2", "zh-CN", 1)
	require.NoError(t, err)
	require.Len(t, zh.Hits, 1)
	require.Equal(t, "/zh-CN/deploy/pm2", zh.Hits[0].URL)

	none, err := res.Search("absent", "", 0)
	require.NoError(t, err)
	require.NotNil(t, none.Hits)
	require.Empty(t, none.Hits)

	_, err = res.Search("pm2", "fr", 0)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
	_, err = res.Search("", "", 0)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestRun_CanceledContext(t *testing.T) {
	root := testutil.WriteSite(t, siteFiles())
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	res, err := NewService("test").Run(ctx, Request{ConfigPath: filepath.Join(root, "docsite.yaml")})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, OutcomeCanceled, res.Outcome)
	require.Equal(t, StageLoadConfig, res.Report.FailedStage)
}

func TestRun_MissingConfig(t *testing.T) {
	res, err := NewService("test").Run(t.Context(), Request{ConfigPath: filepath.Join(t.TempDir(), "docsite.yaml")})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
	require.Equal(t, StageLoadConfig, res.Report.FailedStage)
	require.Nil(t, res.Table)
}
