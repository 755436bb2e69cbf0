package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/yaklabco/gomdwarehouse/pkg/config"
)

// envVarPrefix is the prefix for all gomdwarehouse environment variables.
const envVarPrefix = "GOMDWAREHOUSE_"

type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeSlice
)

type envMapping struct {
	field string
	typ   envFieldType
	help  string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"FLAVOR":          {field: "flavor", typ: envTypeString, help: "Markdown flavor: commonmark or gfm"},
	"FORMAT":          {field: "format", typ: envTypeString, help: "Output format: text, json or summary"},
	"JOBS":            {field: "jobs", typ: envTypeInt, help: "Number of parallel workers (0 = auto)"},
	"STRICT":          {field: "strict", typ: envTypeBool, help: "Fail on unsafe URLs or collector failures"},
	"IGNORE":          {field: "ignore", typ: envTypeSlice, help: "Comma-separated list of ignore patterns"},
	"MAX_TOKENS":      {field: "limits.max_tokens", typ: envTypeInt, help: "Token limit per document"},
	"MAX_BYTES":       {field: "limits.max_bytes", typ: envTypeInt, help: "Byte limit per document"},
	"MAX_DEPTH":       {field: "limits.max_depth", typ: envTypeInt, help: "Nesting depth limit per document"},
	"ALLOWED_SCHEMES": {field: "urls.allowed_schemes", typ: envTypeSlice, help: "Comma-separated accepted URL schemes"},
	"ALLOW_RELATIVE":  {field: "urls.allow_relative", typ: envTypeBool, help: "Accept relative URL references"},
	"ENABLE":          {field: "enable", typ: envTypeSlice, help: "Comma-separated collectors to enable"},
	"DISABLE":         {field: "disable", typ: envTypeSlice, help: "Comma-separated collectors to disable"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}
		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	case envTypeSlice:
		return setSliceField(cfg, mapping.field, parseSliceValue(value))
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue splits a comma-separated list, dropping empty elements.
func parseSliceValue(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "flavor":
		cfg.Flavor = config.Flavor(value)
	case "format":
		cfg.Format = config.OutputFormat(value)
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "strict":
		cfg.Strict = value
	case "urls.allow_relative":
		cfg.URLs.AllowRelative = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

func setIntField(cfg *config.Config, field string, value int64) error {
	switch field {
	case "jobs":
		cfg.Jobs = int(value)
	case "limits.max_tokens":
		cfg.Limits.MaxTokens = int(value)
	case "limits.max_bytes":
		cfg.Limits.MaxBytes = value
	case "limits.max_depth":
		cfg.Limits.MaxDepth = int(value)
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

func setSliceField(cfg *config.Config, field string, value []string) error {
	switch field {
	case "ignore":
		cfg.Ignore = value
	case "urls.allowed_schemes":
		cfg.URLs.AllowedSchemes = value
	case "enable":
		cfg.EnableCollectors = value
	case "disable":
		cfg.DisableCollectors = value
	default:
		return fmt.Errorf("unknown slice field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// EnvVar describes one supported environment variable.
type EnvVar struct {
	Name        string
	Description string
}

// ListEnvVars returns the supported environment variables sorted by name.
func ListEnvVars() []EnvVar {
	vars := make([]EnvVar, 0, len(envMappings))
	for suffix, mapping := range envMappings {
		vars = append(vars, EnvVar{Name: envVarPrefix + suffix, Description: mapping.help})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}
