package configloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdwarehouse/pkg/config"
)

// isolatedDir returns a temp directory marked as a VCS root so the upward
// project search stops there.
func isolatedDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	return dir
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func localOptions(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	result, err := Load(context.Background(), localOptions(isolatedDir(t)))
	require.NoError(t, err)
	require.NotNil(t, result.Config)

	assert.Equal(t, config.FlavorGFM, result.Config.Flavor)
	assert.Equal(t, config.FormatText, result.Config.Format)
	assert.Empty(t, result.LoadedFrom)
	assert.Empty(t, result.Warnings)
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	dir := isolatedDir(t)
	writeConfig(t, filepath.Join(dir, ".gomdwarehouse.yml"), `
flavor: commonmark
limits:
  max_bytes: 4096
urls:
  allowed_schemes: [https]
collectors:
  html:
    enabled: true
  links:
    max_items: 10
`)

	result, err := Load(context.Background(), localOptions(dir))
	require.NoError(t, err)

	cfg := result.Config
	assert.Equal(t, config.FlavorCommonMark, cfg.Flavor)
	assert.Equal(t, int64(4096), cfg.Limits.MaxBytes)
	assert.Equal(t, []string{"https"}, cfg.URLs.AllowedSchemes)
	assert.True(t, cfg.CollectorEnabled("html", false))
	require.NotNil(t, cfg.Collector("links").MaxItems)
	assert.Equal(t, 10, *cfg.Collector("links").MaxItems)
	assert.Equal(t, []string{filepath.Join(dir, ".gomdwarehouse.yml")}, result.LoadedFrom)
}

func TestLoad_ProjectConfigFoundUpward(t *testing.T) {
	t.Parallel()

	dir := isolatedDir(t)
	writeConfig(t, filepath.Join(dir, ".gomdwarehouse.yml"), "flavor: commonmark\n")
	nested := filepath.Join(dir, "docs", "guide")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	result, err := Load(context.Background(), localOptions(nested))
	require.NoError(t, err)
	assert.Equal(t, config.FlavorCommonMark, result.Config.Flavor)
}

func TestLoad_ExplicitOverridesProject(t *testing.T) {
	t.Parallel()

	dir := isolatedDir(t)
	writeConfig(t, filepath.Join(dir, ".gomdwarehouse.yml"), "flavor: commonmark\nignore: [\"vendor/**\"]\n")
	explicit := filepath.Join(dir, "ci", "warehouse.yml")
	writeConfig(t, explicit, "flavor: gfm\n")

	opts := localOptions(dir)
	opts.ExplicitPath = explicit

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, config.FlavorGFM, result.Config.Flavor)
	assert.Equal(t, []string{"vendor/**"}, result.Config.Ignore, "unset fields keep lower layers")
	assert.Len(t, result.LoadedFrom, 2)
	assert.Equal(t, explicit, result.Paths.Explicit)
}

func TestLoad_CLIOverrides(t *testing.T) {
	t.Parallel()

	dir := isolatedDir(t)
	writeConfig(t, filepath.Join(dir, ".gomdwarehouse.yml"), "flavor: commonmark\nlimits:\n  max_tokens: 500\n")

	opts := localOptions(dir)
	opts.CLIConfig = &config.Config{
		Flavor:            config.FlavorGFM,
		Format:            config.FormatJSON,
		Jobs:              3,
		Strict:            true,
		DisableCollectors: []string{"tables"},
	}

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)

	cfg := result.Config
	assert.Equal(t, config.FlavorGFM, cfg.Flavor)
	assert.Equal(t, config.FormatJSON, cfg.Format)
	assert.Equal(t, 3, cfg.Jobs)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 500, cfg.Limits.MaxTokens)
	assert.False(t, cfg.CollectorEnabled("tables", true))
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "bad flavor", content: "flavor: asciidoc\n", wantErr: "invalid flavor"},
		{name: "unknown key", content: "rules:\n  MD001: {}\n", wantErr: "field rules not found"},
		{name: "negative limit", content: "limits:\n  max_depth: -1\n", wantErr: "limits.max_depth"},
		{name: "bad container", content: "collectors:\n  links:\n    ignore_inside: [sidebar]\n", wantErr: "unknown container"},
		{name: "bad scheme", content: "urls:\n  allowed_schemes: [\"1http\"]\n", wantErr: "invalid scheme name"},
		{name: "malformed yaml", content: "flavor: [\n", wantErr: "parse yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := isolatedDir(t)
			writeConfig(t, filepath.Join(dir, ".gomdwarehouse.yml"), tt.content)

			_, err := Load(context.Background(), localOptions(dir))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_UnknownCollectorWarns(t *testing.T) {
	t.Parallel()

	dir := isolatedDir(t)
	writeConfig(t, filepath.Join(dir, ".gomdwarehouse.yml"), "collectors:\n  footnotes:\n    enabled: true\n")

	result, err := Load(context.Background(), localOptions(dir))
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], `unknown collector "footnotes"`)
}

func TestLoad_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, localOptions(isolatedDir(t)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLoad_Environment(t *testing.T) {
	// t.Setenv forbids t.Parallel.
	dir := isolatedDir(t)
	writeConfig(t, filepath.Join(dir, ".gomdwarehouse.yml"), "flavor: commonmark\n")

	t.Setenv("GOMDWAREHOUSE_FLAVOR", "gfm")
	t.Setenv("GOMDWAREHOUSE_MAX_BYTES", "2048")
	t.Setenv("GOMDWAREHOUSE_ALLOWED_SCHEMES", "https, ftp")
	t.Setenv("GOMDWAREHOUSE_ENABLE", "html")

	opts := localOptions(dir)
	opts.IgnoreEnv = false
	opts.CLIConfig = &config.Config{Limits: config.LimitsConfig{MaxBytes: 1024}}

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)

	cfg := result.Config
	assert.Equal(t, config.FlavorGFM, cfg.Flavor, "env beats project config")
	assert.Equal(t, int64(1024), cfg.Limits.MaxBytes, "CLI beats env")
	assert.Equal(t, []string{"https", "ftp"}, cfg.URLs.AllowedSchemes)
	assert.True(t, cfg.CollectorEnabled("html", false))
}

func TestLoad_EnvironmentInvalid(t *testing.T) {
	dir := isolatedDir(t)
	t.Setenv("GOMDWAREHOUSE_JOBS", "many")

	opts := localOptions(dir)
	opts.IgnoreEnv = false

	_, err := Load(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "GOMDWAREHOUSE_JOBS"))
}

func TestLoad_UserConfig(t *testing.T) {
	dir := isolatedDir(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	userPath := filepath.Join(xdg, "gomdwarehouse", "config.yaml")
	writeConfig(t, userPath, "flavor: commonmark\nurls:\n  allow_relative: true\n")
	writeConfig(t, filepath.Join(dir, ".gomdwarehouse.yml"), "flavor: gfm\n")

	opts := localOptions(dir)
	opts.IgnoreUserConfig = false

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, config.FlavorGFM, result.Config.Flavor, "project beats user")
	assert.True(t, result.Config.URLs.AllowRelative)
	assert.Equal(t, userPath, result.Paths.User)
	assert.Equal(t, userPath, result.LoadedFrom[0])
}
