package configloader

import (
	"maps"
	"slices"

	"github.com/yaklabco/gomdwarehouse/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
//   - Scalar values: override overwrites base if override is non-zero
//   - Maps: deep merge, with override's values taking precedence
//   - Slices: override replaces base entirely if override is non-nil
//
// Booleans can only be switched on by a higher layer, since false is
// indistinguishable from unset.
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.Flavor != "" {
		result.Flavor = override.Flavor
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.Strict {
		result.Strict = true
	}

	if override.Limits.MaxTokens != 0 {
		result.Limits.MaxTokens = override.Limits.MaxTokens
	}
	if override.Limits.MaxBytes != 0 {
		result.Limits.MaxBytes = override.Limits.MaxBytes
	}
	if override.Limits.MaxDepth != 0 {
		result.Limits.MaxDepth = override.Limits.MaxDepth
	}

	if override.URLs.AllowedSchemes != nil {
		result.URLs.AllowedSchemes = slices.Clone(override.URLs.AllowedSchemes)
	}
	if override.URLs.AllowRelative {
		result.URLs.AllowRelative = true
	}

	result.Collectors = mergeCollectors(base.Collectors, override.Collectors)

	if override.Ignore != nil {
		result.Ignore = slices.Clone(override.Ignore)
	}
	if override.EnableCollectors != nil {
		result.EnableCollectors = slices.Clone(override.EnableCollectors)
	}
	if override.DisableCollectors != nil {
		result.DisableCollectors = slices.Clone(override.DisableCollectors)
	}

	return &result
}

// mergeCollectors deep-merges per-collector settings into a fresh map.
func mergeCollectors(base, override map[string]config.CollectorConfig) map[string]config.CollectorConfig {
	if base == nil && override == nil {
		return nil
	}

	result := make(map[string]config.CollectorConfig, len(base)+len(override))
	maps.Copy(result, base)

	for name, val := range override {
		if existing, ok := result[name]; ok {
			result[name] = mergeCollectorConfig(existing, val)
		} else {
			result[name] = val
		}
	}

	return result
}

func mergeCollectorConfig(base, override config.CollectorConfig) config.CollectorConfig {
	result := base

	if override.Enabled != nil {
		result.Enabled = override.Enabled
	}
	if override.MaxItems != nil {
		result.MaxItems = override.MaxItems
	}
	if override.IgnoreInside != nil {
		result.IgnoreInside = slices.Clone(override.IgnoreInside)
	}

	if override.Options != nil {
		options := make(map[string]any, len(base.Options)+len(override.Options))
		maps.Copy(options, base.Options)
		maps.Copy(options, override.Options)
		result.Options = options
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for _, cfg := range configs[1:] {
		result = merge(result, cfg)
	}
	return result
}
