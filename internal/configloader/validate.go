package configloader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yaklabco/gomdwarehouse/pkg/collectors"
	"github.com/yaklabco/gomdwarehouse/pkg/config"
	"github.com/yaklabco/gomdwarehouse/pkg/warehouse"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "collectors.links.max_items").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues (e.g., unknown collectors).
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// Validate checks a configuration against the built-in collector set.
func Validate(cfg *config.Config) *ValidationResult {
	return ValidateWith(cfg, collectors.Default)
}

// ValidateWith checks a configuration, resolving collector names against reg.
func ValidateWith(cfg *config.Config, reg *collectors.Registry) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Flavor != "" && !cfg.Flavor.IsValid() {
		result.fail("flavor", cfg.Flavor, "invalid flavor %q; must be one of: commonmark, gfm", cfg.Flavor)
	}

	if cfg.Format != "" {
		if _, err := config.ParseFormat(string(cfg.Format)); err != nil {
			result.fail("format", cfg.Format, "%v", err)
		}
	}

	if cfg.Jobs < 0 {
		result.fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}

	validateLimits(cfg.Limits, result)
	validateSchemes(cfg.URLs.AllowedSchemes, result)
	validateCollectors(cfg, reg, result)
	validateIgnorePatterns(cfg, result)

	return result
}

func validateLimits(limits config.LimitsConfig, result *ValidationResult) {
	if limits.MaxTokens < 0 {
		result.fail("limits.max_tokens", limits.MaxTokens, "must be >= 0 (0 means default)")
	}
	if limits.MaxBytes < 0 {
		result.fail("limits.max_bytes", limits.MaxBytes, "must be >= 0 (0 means default)")
	}
	if limits.MaxDepth < 0 {
		result.fail("limits.max_depth", limits.MaxDepth, "must be >= 0 (0 means default)")
	}
}

// validateSchemes checks scheme names against the RFC 3986 scheme grammar.
func validateSchemes(schemes []string, result *ValidationResult) {
	for i, scheme := range schemes {
		if !isSchemeName(scheme) {
			result.fail(fmt.Sprintf("urls.allowed_schemes[%d]", i), scheme, "invalid scheme name %q", scheme)
		}
	}
}

func isSchemeName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

func validateCollectors(cfg *config.Config, reg *collectors.Registry, result *ValidationResult) {
	known := func(name string) bool {
		_, ok := reg.Get(name)
		return ok
	}

	for name, cc := range cfg.Collectors {
		field := "collectors." + name
		if !known(name) {
			result.warn(field, name, "unknown collector %q; it will be ignored", name)
		}
		if cc.MaxItems != nil && *cc.MaxItems < 0 {
			result.fail(field+".max_items", *cc.MaxItems, "must be >= 0 (0 means no cap)")
		}
		if _, err := warehouse.ParseMask(cc.IgnoreInside); err != nil {
			result.fail(field+".ignore_inside", cc.IgnoreInside, "%v", err)
		}
	}

	for _, list := range []struct {
		field string
		names []string
	}{
		{"enable", cfg.EnableCollectors},
		{"disable", cfg.DisableCollectors},
	} {
		for _, name := range list.names {
			if !known(name) {
				result.warn(list.field, name, "unknown collector %q; it will be ignored", name)
			}
		}
	}
}

// validateIgnorePatterns checks that ignore patterns are valid globs.
func validateIgnorePatterns(cfg *config.Config, result *ValidationResult) {
	for i, pattern := range cfg.Ignore {
		if _, err := filepath.Match(pattern, ""); err != nil {
			result.fail(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}
}

// ValidateWithFile validates configuration and includes file path in findings.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)
	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}
	return result
}
