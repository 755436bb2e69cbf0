package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// commentWrapWidth is the maximum width for wrapped comments in templates.
const commentWrapWidth = 70

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full documents every collector. If false, generates a minimal template.
	Full bool

	// Format is the output format: "yaml" or "json".
	Format string

	// Collectors describes the available collectors. The caller supplies it
	// so this package stays free of collector imports.
	Collectors []CollectorInfo
}

// CollectorInfo contains collector metadata for template generation.
type CollectorInfo struct {
	Name         string
	Description  string
	Enabled      bool
	Interests    []string
	IgnoreInside []string
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`

# Markdown flavor: commonmark or gfm (tables, strikethrough, task lists)
flavor: gfm

# Per-document resource limits (0 = built-in default)
limits:
  max_tokens: 0 # default 1000000
  max_bytes: 0  # default 16 MiB
  max_depth: 0  # default 10000

# URL validation policy for links and images
urls:
  allowed_schemes: [http, https, mailto]
  allow_relative: false

# File patterns to ignore (glob patterns)
ignore:
  - "vendor/**"
  - "node_modules/**"
`)

	if opts.Full {
		writeCollectors(&buf, opts.Collectors)
	} else {
		buf.WriteString(`
# Collector-specific configuration
# collectors:
#   links:
#     enabled: true
#     max_items: 1000
#     ignore_inside: [fence, code_block, html_block]
`)
	}

	if opts.Format == "json" {
		return templateToJSON(opts.Collectors, opts.Full)
	}

	return buf.Bytes(), nil
}

func writeCollectors(buf *bytes.Buffer, collectors []CollectorInfo) {
	sorted := slices.Clone(collectors)
	slices.SortFunc(sorted, func(a, b CollectorInfo) int {
		return strings.Compare(a.Name, b.Name)
	})

	buf.WriteString("\n# Collector-specific configuration\ncollectors:\n")
	for _, c := range sorted {
		fmt.Fprintf(buf, "\n  # %s\n", wrapComment(c.Description, commentWrapWidth))
		if len(c.Interests) > 0 {
			fmt.Fprintf(buf, "  # Tokens: %s\n", strings.Join(c.Interests, ", "))
		}
		fmt.Fprintf(buf, "  %s:\n", c.Name)
		fmt.Fprintf(buf, "    enabled: %t\n", c.Enabled)
		buf.WriteString("    # max_items: 0\n")
		fmt.Fprintf(buf, "    ignore_inside: [%s]\n", strings.Join(c.IgnoreInside, ", "))
	}
}

// wrapComment wraps a comment to fit within maxWidth characters.
func wrapComment(text string, maxWidth int) string {
	if len(text) <= maxWidth {
		return text
	}

	var lines []string
	currentLine := ""

	for _, word := range strings.Fields(text) {
		switch {
		case currentLine == "":
			currentLine = word
		case len(currentLine)+1+len(word) <= maxWidth:
			currentLine += " " + word
		default:
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n  # ")
}

// templateToJSON renders the template settings as JSON. Comments have no
// JSON equivalent and are dropped.
func templateToJSON(collectors []CollectorInfo, full bool) ([]byte, error) {
	cfg := map[string]any{
		"flavor": string(FlavorGFM),
		"limits": map[string]any{
			"max_tokens": 0,
			"max_bytes":  0,
			"max_depth":  0,
		},
		"urls": map[string]any{
			"allowed_schemes": []string{"http", "https", "mailto"},
			"allow_relative":  false,
		},
		"ignore": []string{"vendor/**", "node_modules/**"},
	}

	if full {
		entries := make(map[string]any, len(collectors))
		for _, c := range collectors {
			entries[c.Name] = map[string]any{
				"enabled":       c.Enabled,
				"ignore_inside": c.IgnoreInside,
			}
		}
		cfg["collectors"] = entries
	}

	jsonBytes, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}

	return jsonBytes, nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# gomdwarehouse configuration
# See: https://github.com/yaklabco/gomdwarehouse`
}
