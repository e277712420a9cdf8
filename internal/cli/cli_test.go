package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sai-sandeep-seelam/CheatStack/internal/platform/config"
)

func runCLI(t *testing.T, env map[string]string, stdin string, args ...string) (string, error) {
	t.Helper()

	if env == nil {
		env = map[string]string{}
	}
	opts := &rootOptions{
		logger: zap.NewNop(),
		configOpts: []config.Option{
			config.WithoutSystemEnv(),
			config.WithEnvFile(filepath.Join(t.TempDir(), "missing.env")),
			config.WithEnvMap(env),
		},
	}
	cmd := newRootCmd(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderFromStdin(t *testing.T) {
	t.Parallel()

	out, err := runCLI(t, nil, "# Title\n- **one**\n- two", "render")
	require.NoError(t, err)
	require.Equal(t, "<h1>Title</h1>\n<ul><li><strong>one</strong></li><li>two</li></ul>\n", out)
}

func TestRenderPlaceholderForEmptyInput(t *testing.T) {
	t.Parallel()

	out, err := runCLI(t, nil, "   \n", "render")
	require.NoError(t, err)
	require.Equal(t, "<p>Content preview will appear here...</p>\n", out)
}

func TestRenderStandardFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("| a |\n|---|\n| b |\n\n<script>x</script>\n"), 0o644))

	out, err := runCLI(t, nil, "", "render", "--standard", "--sanitize", path)
	require.NoError(t, err)
	require.Contains(t, out, "<table>")
	require.NotContains(t, out, "<script>")
}

func TestRenderMissingFile(t *testing.T) {
	t.Parallel()

	_, err := runCLI(t, nil, "", "render", filepath.Join(t.TempDir(), "nope.md"))
	require.Error(t, err)
}

func TestSearchSortsByPopularity(t *testing.T) {
	t.Parallel()

	out, err := runCLI(t, nil, "", "search", "script", "--sort", "popularity")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "NAME"))
	require.True(t, strings.HasPrefix(lines[1], "javascript"))
	require.True(t, strings.HasPrefix(lines[2], "typescript"))
	require.Contains(t, lines[1], "98")
}

func TestSearchNoResults(t *testing.T) {
	t.Parallel()

	out, err := runCLI(t, nil, "", "search", "zzzz")
	require.NoError(t, err)
	require.Equal(t, "no cheatsheets found\n", out)
}

func TestSearchRejectsUnknownSort(t *testing.T) {
	t.Parallel()

	_, err := runCLI(t, nil, "", "search", "git", "--sort", "stars")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown sort")
}

func TestShowPrintsSections(t *testing.T) {
	t.Parallel()

	out, err := runCLI(t, nil, "", "show", "JavaScript", "--text")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Javascript\n==========\n"))
	require.Contains(t, out, "\nBasics\n")
	require.Contains(t, out, `  const name = "value"`)
	require.Contains(t, out, "Constant declaration")
}

func TestShowHTML(t *testing.T) {
	t.Parallel()

	out, err := runCLI(t, nil, "", "show", "python")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "<h1>Python Cheatsheet</h1>"))
}

func TestShowUsesFileCache(t *testing.T) {
	t.Parallel()

	cacheFile := filepath.Join(t.TempDir(), "cache.json")
	env := map[string]string{
		"CHEATSTACK_CACHE_BACKEND": "file",
		"CHEATSTACK_CACHE_FILE":    cacheFile,
	}
	_, err := runCLI(t, env, "", "show", "go")
	require.NoError(t, err)

	data, err := os.ReadFile(cacheFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "cheatstack_cache")
	require.Contains(t, string(data), "cheatsheet_go")
}

func TestInvalidConfigFails(t *testing.T) {
	t.Parallel()

	_, err := runCLI(t, map[string]string{"CHEATSTACK_CONTENT_SOURCE": "ftp"}, "", "search", "git")
	require.Error(t, err)
	require.Contains(t, err.Error(), "load config")
}

func TestCommandArgs(t *testing.T) {
	t.Parallel()

	_, err := runCLI(t, nil, "", "search")
	require.Error(t, err)
	_, err = runCLI(t, nil, "", "show", "a", "b")
	require.Error(t, err)
}
