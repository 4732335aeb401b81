package linkcheck

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/routes"
	"git.home.luguber.info/inful/docsite/internal/sidebar"
)

func siteConfig(t *testing.T, extra string) *config.SiteConfig {
	t.Helper()
	cfg, err := config.Parse([]byte(`
title: Mountify Documentation
url: https://mountify-docs.example.com
baseUrl: /
i18n:
  defaultLocale: en
  locales: [en, zh-CN]
docs:
  routeBasePath: /
` + extra))
	require.NoError(t, err)
	return cfg
}

func newDoc(id, source, body string) *content.Doc {
	return &content.Doc{
		ID:     id,
		Slug:   id,
		Source: source,
		Links:  markdown.Analyze([]byte(body)).Links,
	}
}

func build(t *testing.T, cfg *config.SiteConfig, en, zh []*content.Doc) (*routes.Table, map[string]*content.Set) {
	t.Helper()
	sets := map[string]*content.Set{
		"en":    content.NewSet("en", en...),
		"zh-CN": content.NewSet("zh-CN", zh...),
	}
	sb, err := sidebar.Parse([]byte("docs: [intro]\n"))
	require.NoError(t, err)
	table, err := routes.Generate(cfg, sb, sets)
	require.NoError(t, err)
	return table, sets
}

func TestCheck_DocLinks(t *testing.T) {
	cfg := siteConfig(t, "")
	en := []*content.Doc{
		newDoc("intro", "docs/intro.md", `
[ok md](./deploy/pm2.md#setup)
[broken md](./deploy/missing.md)
[ok route](/deploy/pm2)
[broken route](/deploy/nowhere)
[ok relative](deploy/pm2)
[external](https://example.com)
[anchor](#top)
[asset](/img/logo.svg)
`),
		newDoc("deploy/pm2", "docs/deploy/pm2.md", "[up](../intro.md) [sibling](./vercel.md)\n"),
	}
	zh := []*content.Doc{
		newDoc("intro", "i18n/zh-CN/docusaurus-plugin-content-docs/current/intro.md", "[ok](./deploy/pm2.md) [route](/intro)\n"),
		newDoc("deploy/pm2", "docs/deploy/pm2.md", "[up](../intro.md)\n"),
	}
	table, sets := build(t, cfg, en, zh)

	r := Check(cfg, table, sets)
	require.Equal(t, []Finding{
		{Kind: KindMarkdown, Locale: "en", Source: "docs/intro.md", DocID: "intro", Target: "./deploy/missing.md", Line: 3},
		{Kind: KindRoute, Locale: "en", Source: "docs/intro.md", DocID: "intro", Target: "/deploy/nowhere", Line: 5},
		{Kind: KindMarkdown, Locale: "en", Source: "docs/deploy/pm2.md", DocID: "deploy/pm2", Target: "./vercel.md", Line: 1},
	}, sortedByDoc(r.Findings))
	require.Equal(t, 2, r.Count(KindMarkdown))
}

// sortedByDoc orders findings intro first to keep the expectation readable.
func sortedByDoc(in []Finding) []Finding {
	var intro, rest []Finding
	for _, f := range in {
		if f.DocID == "intro" {
			intro = append(intro, f)
		} else {
			rest = append(rest, f)
		}
	}
	return append(intro, rest...)
}

func TestCheck_ThemeTargets(t *testing.T) {
	cfg := siteConfig(t, `
themeConfig:
  navbar:
    items:
      - {type: doc, docId: intro, label: Intro}
      - {type: doc, docId: missing, label: Missing}
      - {to: /intro, label: Home}
  footer:
    links:
      - title: Docs
        items:
          - {label: Gone, to: /guide/getting-started}
`)
	table, sets := build(t, cfg, []*content.Doc{newDoc("intro", "docs/intro.md", "")}, []*content.Doc{newDoc("intro", "docs/intro.md", "")})

	r := Check(cfg, table, sets)
	require.Len(t, r.Findings, 4, "two findings per locale")
	require.Equal(t, "themeConfig.navbar.items[1].docId", r.Findings[0].Source)
	require.Equal(t, "themeConfig.footer.links[0].items[0].to", r.Findings[1].Source)
	require.Equal(t, "zh-CN", r.Findings[3].Locale)
}

func TestEnforce_Policies(t *testing.T) {
	report := Report{Findings: []Finding{
		{Kind: KindMarkdown, Locale: "en", Source: "docs/a.md", Target: "./b.md", Line: 2},
		{Kind: KindRoute, Locale: "en", Source: "docs/a.md", Target: "/nowhere", Line: 3},
	}}

	tests := []struct {
		name          string
		links, mdLink config.BrokenLinkPolicy
		warnings      int
		fails         bool
		logged        string
	}{
		{"throw routes warn markdown", config.PolicyThrow, config.PolicyWarn, 1, true, "level=WARN"},
		{"ignore everything", config.PolicyIgnore, config.PolicyIgnore, 0, false, ""},
		{"log routes", config.PolicyLog, config.PolicyIgnore, 1, false, "level=INFO"},
		{"throw both", config.PolicyThrow, config.PolicyThrow, 0, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.SiteConfig{OnBrokenLinks: tt.links, OnBrokenMarkdownLinks: tt.mdLink}
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			warnings, err := Enforce(cfg, report, logger)
			require.Len(t, warnings, tt.warnings)
			if tt.fails {
				require.Error(t, err)
				require.True(t, errors.HasCategory(err, errors.CategoryLinks))
			} else {
				require.NoError(t, err)
			}
			if tt.logged != "" {
				require.Contains(t, buf.String(), tt.logged)
			} else {
				require.Empty(t, buf.String())
			}
		})
	}
}
