package cli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdwarehouse/internal/cli"
	"github.com/yaklabco/gomdwarehouse/pkg/extract"
	"github.com/yaklabco/gomdwarehouse/pkg/fsutil"
)

func testInfo() cli.BuildInfo {
	return cli.BuildInfo{Version: "test-version", Commit: "test-commit", Date: "test-date"}
}

// execute runs the root command with args and captures stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(testInfo())
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--color", "never"}, args...))

	err := cmd.Execute()
	return stdout.String(), err
}

func writeDocs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

const riskyDoc = "# Risky\n\n[ok](https://example.com) and [bad](javascript:alert(1))\n"

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	require.NotNil(t, cmd)
	assert.Equal(t, "gomdwarehouse", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	for _, name := range []string{"extract", "sections", "check-url", "collectors", "init", "version"} {
		sub, _, err := cmd.Find([]string{name})
		if assert.NoError(t, err, name) {
			assert.Equal(t, name, sub.Name())
		}
	}

	for _, flag := range []string{"debug", "config", "color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestHelp(t *testing.T) {
	t.Parallel()

	root, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, root, "Extraction Commands:")
	assert.Contains(t, root, "Setup Commands:")
	assert.Contains(t, root, "check-url")
	assert.Contains(t, root, "Environment:")
	assert.Contains(t, root, "GOMDWAREHOUSE_MAX_BYTES")
	assert.NotContains(t, root, "Containers (for ignore_inside):")
	assert.NotContains(t, root, "\x1b[", "help is plain with --color never")

	extractHelp, err := execute(t, "extract", "--help")
	require.NoError(t, err)
	assert.Contains(t, extractHelp, "--enable")
	assert.Contains(t, extractHelp, "Global Flags:")
	assert.Contains(t, extractHelp, "Containers (for ignore_inside):")
	assert.Contains(t, extractHelp, "front_matter")
	assert.NotContains(t, extractHelp, "Environment:")

	sectionsHelp, err := execute(t, "sections", "--help")
	require.NoError(t, err)
	assert.NotContains(t, sectionsHelp, "Containers (for ignore_inside):")
}

func TestExtractCommandFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	extractCmd, _, err := cmd.Find([]string{"extract"})
	require.NoError(t, err)

	for _, flag := range []string{"format", "output", "jobs", "ignore", "enable", "disable", "strict", "flavor", "verbose", "compact"} {
		assert.NotNil(t, extractCmd.Flags().Lookup(flag), flag)
	}
}

func TestExtract_JSONToFile(t *testing.T) {
	t.Parallel()

	dir := writeDocs(t, map[string]string{"risky.md": riskyDoc})
	out := filepath.Join(dir, "out", "result.json")

	stdout, err := execute(t, "extract", "--format", "json", "--output", out, dir)
	require.NoError(t, err, "unsafe URLs only fail in strict mode")
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var parsed struct {
		Files []struct {
			Path string `json:"path"`
		} `json:"files"`
		Summary struct {
			FilesProcessed int            `json:"files_processed"`
			UnsafeURLs     int            `json:"unsafe_urls"`
			Items          map[string]int `json:"items"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.Len(t, parsed.Files, 1)
	assert.Contains(t, parsed.Files[0].Path, "risky.md")
	assert.Equal(t, 1, parsed.Summary.FilesProcessed)
	assert.Equal(t, 1, parsed.Summary.UnsafeURLs)
	assert.Equal(t, 2, parsed.Summary.Items["links"])
}

func TestExtract_Strict(t *testing.T) {
	t.Parallel()

	dir := writeDocs(t, map[string]string{"risky.md": riskyDoc})

	_, err := execute(t, "extract", "--strict", "--format", "summary", dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cli.ErrFindings))
	assert.Equal(t, cli.ExitFindings, cli.ExitCode(err))
}

func TestExtract_UsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "format", args: []string{"extract", "--format", "sarif"}},
		{name: "flavor", args: []string{"extract", "--flavor", "markdown-it"}},
		{name: "sections flavor", args: []string{"sections", "--flavor", "x", "README.md"}},
		{name: "collectors format", args: []string{"collectors", "--format", "yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
		})
	}
}

func TestExtract_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "extract", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, cli.ExitIOError, cli.ExitCode(err))
}

func TestExtract_ExplicitConfig(t *testing.T) {
	t.Parallel()

	dir := writeDocs(t, map[string]string{
		"doc.md":            "# Doc\n\n<div>raw</div>\n",
		"warehouse.yml":     "collectors:\n  html:\n    enabled: true\n",
		"broken-config.yml": "flavor: rst\n",
	})

	stdout, err := execute(t, "--config", filepath.Join(dir, "warehouse.yml"),
		"extract", "--format", "json", filepath.Join(dir, "doc.md"))
	require.NoError(t, err)
	assert.Contains(t, stdout, `"html"`)

	_, err = execute(t, "--config", filepath.Join(dir, "broken-config.yml"), "extract", dir)
	require.Error(t, err)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCode(err))
}

func TestSections(t *testing.T) {
	t.Parallel()

	dir := writeDocs(t, map[string]string{
		"guide.md": "intro\n\n# Guide\n\n## Install\n\n```sh\nmake\n```\n",
	})

	stdout, err := execute(t, "sections", filepath.Join(dir, "guide.md"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "(document)")
	assert.Contains(t, stdout, "Guide")
	assert.Contains(t, stdout, "Install")
	assert.Contains(t, stdout, "3 sections")
}

func TestSections_TooLarge(t *testing.T) {
	t.Parallel()

	dir := writeDocs(t, map[string]string{
		"big.md":        "# Big\n\n" + fmt.Sprintf("%0200d\n", 0),
		"warehouse.yml": "limits:\n  max_bytes: 64\n",
	})

	_, err := execute(t, "--config", filepath.Join(dir, "warehouse.yml"), "sections", filepath.Join(dir, "big.md"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fsutil.ErrTooLarge))
	assert.Equal(t, cli.ExitIOError, cli.ExitCode(err))
}

func TestCheckURL(t *testing.T) {
	t.Parallel()

	stdout, err := execute(t, "check-url", "https://example.com/a")
	require.NoError(t, err)
	assert.Contains(t, stdout, "safe")

	stdout, err = execute(t, "check-url", "https://example.com", "javascript:alert(1)")
	require.Error(t, err)
	assert.Equal(t, cli.ExitFindings, cli.ExitCode(err))
	assert.Contains(t, err.Error(), "1 of 2 URLs rejected")
	assert.Contains(t, stdout, "unsafe")
	assert.Contains(t, stdout, `"javascript:alert(1)"`)

	_, err = execute(t, "check-url", "--allow-relative", "../guide.md")
	require.NoError(t, err)
}

func TestCollectors(t *testing.T) {
	t.Parallel()

	stdout, err := execute(t, "collectors", "--format", "json")
	require.NoError(t, err)

	var infos []struct {
		Name         string   `json:"name"`
		Enabled      bool     `json:"enabled"`
		Interests    []string `json:"interests"`
		IgnoreInside []string `json:"ignore_inside"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &infos))

	enabled := map[string]bool{}
	for _, info := range infos {
		enabled[info.Name] = info.Enabled
		assert.NotEmpty(t, info.Interests, info.Name)
		assert.NotNil(t, info.IgnoreInside, info.Name)
	}
	assert.Equal(t, map[string]bool{
		"fences": true, "headings": true, "html": false,
		"images": true, "links": true, "tables": true,
	}, enabled)

	text, err := execute(t, "collectors")
	require.NoError(t, err)
	assert.Contains(t, text, "links")
	assert.Contains(t, text, "ignore_inside=")
}

func TestInit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cfg", ".gomdwarehouse.yml")

	_, err := execute(t, "init", "--full", "-o", path)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# gomdwarehouse configuration")
	assert.Contains(t, string(content), "collectors:")

	_, err = execute(t, "init", "-o", path)
	require.Error(t, err, "existing file without --force")
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))

	_, err = execute(t, "init", "--force", "--format", "json", "-o", path)
	require.NoError(t, err)
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(content))

	// The generated file loads as an explicit config.
	dir := writeDocs(t, map[string]string{"a.md": "# A\n"})
	_, err = execute(t, "--config", path, "extract", "--format", "summary", dir)
	require.NoError(t, err)
}

func TestVersion(t *testing.T) {
	t.Parallel()

	stdout, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "test-version")
	assert.Contains(t, stdout, "test-commit")
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: cli.ExitSuccess},
		{name: "findings", err: fmt.Errorf("wrap: %w", cli.ErrFindings), want: cli.ExitFindings},
		{name: "usage", err: cli.ErrUsage, want: cli.ExitInvalidUsage},
		{name: "config", err: cli.ErrConfig, want: cli.ExitConfigError},
		{name: "not found", err: fmt.Errorf("read: %w", os.ErrNotExist), want: cli.ExitIOError},
		{name: "permission", err: fsutil.ErrPermissionDenied, want: cli.ExitIOError},
		{name: "other", err: errors.New("boom"), want: cli.ExitInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cli.ExitCode(tt.err))
		})
	}
}

func TestExitCodeFromResult(t *testing.T) {
	t.Parallel()

	clean := &extract.Result{}
	unsafe := &extract.Result{Stats: extract.Stats{UnsafeURLs: 1}}
	failed := &extract.Result{Stats: extract.Stats{FilesErrored: 1}}

	assert.Equal(t, cli.ExitSuccess, cli.ExitCodeFromResult(nil, true))
	assert.Equal(t, cli.ExitSuccess, cli.ExitCodeFromResult(clean, true))
	assert.Equal(t, cli.ExitSuccess, cli.ExitCodeFromResult(unsafe, false))
	assert.Equal(t, cli.ExitFindings, cli.ExitCodeFromResult(unsafe, true))
	assert.Equal(t, cli.ExitFindings, cli.ExitCodeFromResult(failed, true))
}
