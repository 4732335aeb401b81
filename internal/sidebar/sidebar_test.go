package sidebar

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

var mountifyDocs = []string{
	"intro",
	"guide/getting-started",
	"deploy/overview", "deploy/vercel", "deploy/pm2", "deploy/docker",
	"architecture/overview",
	"modules/database", "modules/authentication", "modules/payments",
	"modules/caching", "modules/security", "modules/ui-design",
	"dev-log/overview", "dev-log/v1-foundation", "dev-log/v2-database-payments",
	"dev-log/v3-ui-security", "dev-log/v4-auth-redis", "dev-log/v5-admin-features",
	"dev-log/v6-shipping",
}

func loadMountify(t *testing.T) *Sidebars {
	t.Helper()
	sb, err := Load(filepath.Join("testdata", "sidebars.yaml"))
	require.NoError(t, err)
	return sb
}

func TestLoad_MountifySidebar(t *testing.T) {
	sb := loadMountify(t)

	require.Equal(t, []string{"tutorialSidebar"}, sb.IDs())
	require.Equal(t, mountifyDocs, sb.DocIDs("tutorialSidebar"))
	require.Nil(t, sb.DocIDs("missing"))

	s, ok := sb.Get("tutorialSidebar")
	require.True(t, ok)
	require.Len(t, s.Items, 6)
	require.Equal(t, EntryDoc, s.Items[0].Type)
	require.Equal(t, EntryCategory, s.Items[2].Type)
	require.Equal(t, "How to deploy", s.Items[2].Label)
	require.Equal(t, 7, s.Items[2].Line())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "sidebars.yaml"))
	require.True(t, errors.HasCategory(err, errors.CategorySidebar))
}

func TestParse_EntryForms(t *testing.T) {
	sb, err := Parse([]byte(`
docs:
  - intro
  - {type: doc, id: guide/getting-started, label: Start here}
  - {type: link, label: GitHub, href: https://github.com/lhq5520/Mountify-Commerce}
  - Deploy:
      - deploy/overview
  - label: Modules
    collapsed: false
    link: modules/overview
    items: [modules/database]
api:
  Reference: [api/index]
`))
	require.NoError(t, err)
	require.Equal(t, []string{"docs", "api"}, sb.IDs(), "declaration order is preserved")

	docs, _ := sb.Get("docs")
	require.Equal(t, EntryLink, docs.Items[2].Type)
	require.Equal(t, EntryCategory, docs.Items[3].Type)
	require.Equal(t, "Deploy", docs.Items[3].Label)
	require.Equal(t, EntryCategory, docs.Items[4].Type)
	require.NotNil(t, docs.Items[4].Collapsed)
	require.False(t, *docs.Items[4].Collapsed)

	require.Equal(t, []string{"intro", "guide/getting-started", "deploy/overview", "modules/overview", "modules/database"}, sb.DocIDs("docs"))
	require.Equal(t, []string{"api/index"}, sb.DocIDs("api"))
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"empty":             "",
		"not a mapping":     "- intro\n",
		"empty sidebar":     "docs: []\n",
		"category no items": "docs:\n  - {type: category, label: X, items: []}\n",
		"category no label": "docs:\n  - {type: category, items: [a]}\n",
		"unknown field":     "docs:\n  - {id: a, weight: 3}\n",
		"unknown type":      "docs:\n  - {type: autogenerated, id: a}\n",
		"link without href": "docs:\n  - {type: link, label: X}\n",
		"duplicate sidebar": "docs: [a]\ndocs: [b]\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			require.Error(t, err)
			require.True(t, errors.HasCategory(err, errors.CategorySidebar))
		})
	}
}

func TestValidate_DanglingAndDuplicates(t *testing.T) {
	sb, err := Parse([]byte(`
docs:
  - intro
  - {label: Guide, items: [guide/missing, intro]}
`))
	require.NoError(t, err)

	report := sb.Validate(func(id string) bool { return id == "intro" })
	require.Len(t, report.Dangling, 1)
	require.Equal(t, "guide/missing", report.Dangling[0].DocID)
	require.Equal(t, "items[1].items[0]", report.Dangling[0].Location)
	require.Len(t, report.Duplicates, 1)
	require.Equal(t, "intro", report.Duplicates[0].DocID)

	err = report.Err()
	require.Error(t, err)
	c, ok := errors.AsClassified(err)
	require.True(t, ok)
	require.True(t, c.IsFatal())
	require.ErrorContains(t, err, "references a doc that does not exist")
}

func TestValidate_MountifyAgainstDocs(t *testing.T) {
	sb := loadMountify(t)
	report := sb.Validate(func(id string) bool { return slices.Contains(mountifyDocs, id) })
	require.NoError(t, report.Err())
	require.Empty(t, report.Duplicates)
}

func TestSidebarForAndNavigation(t *testing.T) {
	sb := loadMountify(t)

	sid, ok := sb.SidebarFor("deploy/pm2")
	require.True(t, ok)
	require.Equal(t, "tutorialSidebar", sid)
	_, ok = sb.SidebarFor("nope")
	require.False(t, ok)

	nav, ok := sb.Navigation("deploy/overview")
	require.True(t, ok)
	require.Equal(t, "guide/getting-started", nav.Previous)
	require.Equal(t, "deploy/vercel", nav.Next)
	require.Equal(t, []string{"How to deploy"}, nav.Breadcrumb)

	first, _ := sb.Navigation("intro")
	require.Empty(t, first.Previous)
	require.Empty(t, first.Breadcrumb)

	last, _ := sb.Navigation("dev-log/v6-shipping")
	require.Equal(t, "dev-log/v5-admin-features", last.Previous)
	require.Empty(t, last.Next)
}

func TestNavigation_DuplicateReferenceFirstWins(t *testing.T) {
	sb, err := Parse([]byte("docs: [a, b, a, c]\n"))
	require.NoError(t, err)

	nav, ok := sb.Navigation("a")
	require.True(t, ok)
	require.Equal(t, "b", nav.Next)

	nav, _ = sb.Navigation("c")
	require.Equal(t, "b", nav.Previous)
}

func TestPrune_DropsRejectedDocsAndEmptyCategories(t *testing.T) {
	sb, err := Parse([]byte(`
docs:
  - intro
  - {label: Drafts, items: [wip]}
  - {label: Guide, link: wip, items: [guide/a]}
`))
	require.NoError(t, err)

	pruned := sb.Prune(func(id string) bool { return id != "wip" })
	require.Equal(t, []string{"intro", "guide/a"}, pruned.DocIDs("docs"))
	s, _ := pruned.Get("docs")
	require.Len(t, s.Items, 2)
	require.Empty(t, s.Items[1].Link)

	require.Equal(t, []string{"intro", "wip", "wip", "guide/a"}, sb.DocIDs("docs"), "original is unchanged")
}

func TestHash_Stable(t *testing.T) {
	a := loadMountify(t)
	b := loadMountify(t)
	require.Equal(t, a.Hash(), b.Hash())
}
