package configloader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdwarehouse/pkg/config"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestMerge_Collectors(t *testing.T) {
	t.Parallel()

	base := config.NewConfig()
	base.Collectors["links"] = config.CollectorConfig{
		Enabled:      boolPtr(true),
		MaxItems:     intPtr(5),
		IgnoreInside: []string{"fence"},
		Options:      map[string]any{"bare_urls": true, "autolinks": true},
	}

	override := &config.Config{Collectors: map[string]config.CollectorConfig{
		"links": {MaxItems: intPtr(50), Options: map[string]any{"bare_urls": false}},
		"html":  {Enabled: boolPtr(true)},
	}}

	got := merge(base, override)

	links := got.Collectors["links"]
	require.NotNil(t, links.Enabled)
	assert.True(t, *links.Enabled)
	assert.Equal(t, 50, *links.MaxItems)
	assert.Equal(t, []string{"fence"}, links.IgnoreInside)
	assert.Equal(t, map[string]any{"bare_urls": false, "autolinks": true}, links.Options)
	assert.True(t, got.CollectorEnabled("html", false))

	assert.Equal(t, true, base.Collectors["links"].Options["bare_urls"], "base is not mutated")
	assert.NotContains(t, base.Collectors, "html")
}

func TestMerge_ScalarsAndSlices(t *testing.T) {
	t.Parallel()

	base := &config.Config{
		Flavor: config.FlavorCommonMark,
		Limits: config.LimitsConfig{MaxTokens: 10, MaxBytes: 20, MaxDepth: 30},
		URLs:   config.URLConfig{AllowedSchemes: []string{"https"}, AllowRelative: true},
		Ignore: []string{"a/**"},
		Jobs:   2,
	}

	t.Run("zero override keeps base", func(t *testing.T) {
		t.Parallel()
		got := merge(base, &config.Config{})
		assert.Equal(t, base.Flavor, got.Flavor)
		assert.Equal(t, base.Limits, got.Limits)
		assert.Equal(t, base.URLs, got.URLs)
		assert.Equal(t, base.Ignore, got.Ignore)
		assert.Equal(t, 2, got.Jobs)
	})

	t.Run("set fields win", func(t *testing.T) {
		t.Parallel()
		got := merge(base, &config.Config{
			Limits: config.LimitsConfig{MaxBytes: 99},
			URLs:   config.URLConfig{AllowedSchemes: []string{}},
			Ignore: []string{"b/**"},
		})
		assert.Equal(t, config.LimitsConfig{MaxTokens: 10, MaxBytes: 99, MaxDepth: 30}, got.Limits)
		assert.Empty(t, got.URLs.AllowedSchemes, "an empty non-nil slice replaces")
		assert.NotNil(t, got.URLs.AllowedSchemes)
		assert.Equal(t, []string{"b/**"}, got.Ignore)
	})
}

func TestMergeAll(t *testing.T) {
	t.Parallel()

	assert.Nil(t, MergeAll())

	got := MergeAll(
		config.NewConfig(),
		&config.Config{Flavor: config.FlavorCommonMark},
		&config.Config{Format: config.FormatSummary},
		nil,
	)
	assert.Equal(t, config.FlavorCommonMark, got.Flavor)
	assert.Equal(t, config.FormatSummary, got.Format)
}
