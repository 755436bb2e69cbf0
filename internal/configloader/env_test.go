package configloader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdwarehouse/pkg/config"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GOMDWAREHOUSE_FORMAT", "summary")
	t.Setenv("GOMDWAREHOUSE_JOBS", "4")
	t.Setenv("GOMDWAREHOUSE_STRICT", "true")
	t.Setenv("GOMDWAREHOUSE_IGNORE", "vendor/**, ,build/**")
	t.Setenv("GOMDWAREHOUSE_MAX_TOKENS", "1000")
	t.Setenv("GOMDWAREHOUSE_MAX_DEPTH", "64")
	t.Setenv("GOMDWAREHOUSE_ALLOW_RELATIVE", "1")
	t.Setenv("GOMDWAREHOUSE_DISABLE", "tables")

	cfg := config.NewConfig()
	require.NoError(t, LoadFromEnv(cfg))

	assert.Equal(t, config.FormatSummary, cfg.Format)
	assert.Equal(t, 4, cfg.Jobs)
	assert.True(t, cfg.Strict)
	assert.Equal(t, []string{"vendor/**", "build/**"}, cfg.Ignore)
	assert.Equal(t, 1000, cfg.Limits.MaxTokens)
	assert.Equal(t, 64, cfg.Limits.MaxDepth)
	assert.True(t, cfg.URLs.AllowRelative)
	assert.Equal(t, []string{"tables"}, cfg.DisableCollectors)
}

func TestLoadFromEnv_InvalidBool(t *testing.T) {
	t.Setenv("GOMDWAREHOUSE_STRICT", "maybe")

	err := LoadFromEnv(config.NewConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid boolean for GOMDWAREHOUSE_STRICT")
}

func TestLoadFromEnv_Nil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, LoadFromEnv(nil))
}

func TestEnvVarNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "GOMDWAREHOUSE_MAX_BYTES", GetEnvVarName("limits.max_bytes"))
	assert.Empty(t, GetEnvVarName("rules"))

	vars := ListEnvVars()
	require.Len(t, vars, len(envMappings))
	for i, v := range vars {
		assert.True(t, strings.HasPrefix(v.Name, envVarPrefix))
		assert.NotEmpty(t, v.Description)
		if i > 0 {
			assert.Less(t, vars[i-1].Name, v.Name)
		}
	}
}
