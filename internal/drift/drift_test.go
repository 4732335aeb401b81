package drift

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/routes"
	"git.home.luguber.info/inful/docsite/internal/testutil"
)

func writeSite(t *testing.T) string {
	t.Helper()
	return testutil.WriteSite(t, map[string]string{
		"docsite.yaml":  "title: Docs\nurl: https://docs.example.com\nbaseUrl: /\ndocs: {routeBasePath: /}\n",
		"sidebars.yaml": "guide:\n  - intro\n  - faq\n",
		"docs/intro.md": "# Intro\n",
		"docs/faq.md":   "# FAQ\n",
	})
}

func TestCheck(t *testing.T) {
	root := writeSite(t)
	svc := build.NewService("test")
	req := build.Request{ConfigPath: filepath.Join(root, "docsite.yaml")}
	committed := filepath.Join(root, "build", routes.FileName)

	rep, err := Check(t.Context(), svc, req, "")
	require.NoError(t, err)
	require.True(t, rep.Missing)
	require.Equal(t, committed, rep.Path)
	require.True(t, errors.HasCategory(rep.Err(), errors.CategoryRoutes))
	_, statErr := os.Stat(committed)
	require.True(t, os.IsNotExist(statErr), "check must not write artifacts")

	_, err = svc.Run(t.Context(), req)
	require.NoError(t, err)

	rep, err = Check(t.Context(), svc, req, "")
	require.NoError(t, err)
	require.True(t, rep.InSync())
	require.NoError(t, rep.Err())

	data, err := os.ReadFile(committed)
	require.NoError(t, err)
	edited := strings.Replace(string(data), `"path": "/faq"`, `"path": "/questions"`, 1)
	require.NotEqual(t, string(data), edited)
	require.NoError(t, os.WriteFile(committed, []byte(edited), 0o600))

	rep, err = Check(t.Context(), svc, req, "")
	require.NoError(t, err)
	require.False(t, rep.InSync())
	require.Regexp(t, `(?m)^-\s+"path": "/questions"`, rep.Diff)
	require.Regexp(t, `(?m)^\+\s+"path": "/faq"`, rep.Diff)
	require.Contains(t, rep.Diff, "--- committed/routes.json")
	require.ErrorContains(t, rep.Err(), "differs from the generated one")
}

func TestCheck_BuildFailureIsAnError(t *testing.T) {
	_, err := Check(t.Context(), build.NewService("test"), build.Request{
		ConfigPath: filepath.Join(t.TempDir(), "docsite.yaml"),
	}, "")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}
