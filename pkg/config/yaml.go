package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// ToYAML serializes the configuration to YAML format.
func (c *Config) ToYAML() ([]byte, error) {
	if c == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(YAMLIndent())

	if err := encoder.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}

	return buf.Bytes(), nil
}

// ToYAMLWithHeader serializes the configuration with a header comment.
func (c *Config) ToYAMLWithHeader(header string) ([]byte, error) {
	yamlBytes, err := c.ToYAML()
	if err != nil {
		return nil, err
	}

	if header == "" {
		return yamlBytes, nil
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	if header[len(header)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(yamlBytes)

	return buf.Bytes(), nil
}

// FromYAML parses a configuration from YAML bytes. Unknown keys are errors.
func FromYAML(data []byte) (*Config, error) {
	cfg := &Config{}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if cfg.Collectors == nil {
		cfg.Collectors = make(map[string]CollectorConfig)
	}

	return cfg, nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := &Config{
		Flavor: c.Flavor,
		Limits: c.Limits,
		URLs: URLConfig{
			AllowedSchemes: slices.Clone(c.URLs.AllowedSchemes),
			AllowRelative:  c.URLs.AllowRelative,
		},
		Ignore: slices.Clone(c.Ignore),
	}

	if c.Collectors != nil {
		clone.Collectors = make(map[string]CollectorConfig, len(c.Collectors))
		for k, v := range c.Collectors {
			clone.Collectors[k] = v.clone()
		}
	}

	c.copyCLIFields(clone)

	return clone
}

// copyCLIFields copies CLI-only fields (yaml:"-") to the target config.
func (c *Config) copyCLIFields(target *Config) {
	target.Format = c.Format
	target.Output = c.Output
	target.Jobs = c.Jobs
	target.Strict = c.Strict
	target.EnableCollectors = slices.Clone(c.EnableCollectors)
	target.DisableCollectors = slices.Clone(c.DisableCollectors)
}

// clone creates a deep copy of a CollectorConfig.
func (cc CollectorConfig) clone() CollectorConfig {
	clone := CollectorConfig{
		IgnoreInside: slices.Clone(cc.IgnoreInside),
	}

	if cc.Enabled != nil {
		enabled := *cc.Enabled
		clone.Enabled = &enabled
	}

	if cc.MaxItems != nil {
		maxItems := *cc.MaxItems
		clone.MaxItems = &maxItems
	}

	if cc.Options != nil {
		clone.Options = make(map[string]any, len(cc.Options))
		maps.Copy(clone.Options, cc.Options) // Note: nested maps/slices in Options are not deep copied
	}

	return clone
}

// YAMLIndent returns the default YAML indentation.
func YAMLIndent() int {
	return 2
}
