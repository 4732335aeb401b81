package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sample = `# Getting Started

Intro with a [relative link](../deploy/docker.md) and <https://example.com>.

## Install the CLI

Run it.

## Install the CLI

![diagram](./img/arch.png)

### 数据库 设计

See [the docs](/modules/database#schema).
`

func TestAnalyze_HeadingsTitleAndAnchors(t *testing.T) {
	doc := Analyze([]byte(sample))

	require.Equal(t, "Getting Started", doc.Title)
	require.Equal(t, []Heading{
		{Level: 1, Text: "Getting Started", ID: "getting-started"},
		{Level: 2, Text: "Install the CLI", ID: "install-the-cli"},
		{Level: 2, Text: "Install the CLI", ID: "install-the-cli-1"},
		{Level: 3, Text: "数据库 设计", ID: "数据库-设计"},
	}, doc.Headings)
}

func TestAnalyze_Links(t *testing.T) {
	doc := Analyze([]byte(sample))

	require.Len(t, doc.Links, 4)
	require.Equal(t, Link{Kind: LinkKindInline, Destination: "../deploy/docker.md", Text: "relative link", Line: 3}, doc.Links[0])
	require.Equal(t, LinkKindAuto, doc.Links[1].Kind)
	require.Equal(t, "https://example.com", doc.Links[1].Destination)
	require.Equal(t, Link{Kind: LinkKindImage, Destination: "./img/arch.png", Text: "diagram", Line: 11}, doc.Links[2])
	require.Equal(t, "/modules/database#schema", doc.Links[3].Destination)
	require.Equal(t, 15, doc.Links[3].Line)
}

func TestAnalyze_NoH1(t *testing.T) {
	doc := Analyze([]byte("## Only a section\n"))
	require.Empty(t, doc.Title)
	require.Len(t, doc.Headings, 1)
}

func TestRenderHTML_UsesSameAnchors(t *testing.T) {
	out, err := RenderHTML([]byte(sample))
	require.NoError(t, err)

	html := string(out)
	require.Contains(t, html, `<h2 id="install-the-cli">`)
	require.Contains(t, html, `<h2 id="install-the-cli-1">`)
	require.True(t, strings.Contains(html, `<a href="../deploy/docker.md">relative link</a>`))
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Getting Started":          "getting-started",
		"  Déploiement   rapide  ": "deploiement-rapide",
		"v1_foundation":            "v1-foundation",
		"What's new?":              "whats-new",
		"Redis & Auth (v4)":        "redis-auth-v4",
		"支付 模块":                    "支付-模块",
		"---":                      "",
	}
	for in, want := range tests {
		require.Equal(t, want, Slugify(in), "input %q", in)
	}
}
