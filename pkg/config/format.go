package config

import "fmt"

// OutputFormat specifies the output format for extraction results.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatJSON    OutputFormat = "json"
	FormatSummary OutputFormat = "summary"
)

// Formats lists the supported output formats.
func Formats() []OutputFormat {
	return []OutputFormat{FormatText, FormatJSON, FormatSummary}
}

// ParseFormat validates a format name. Empty selects text.
func ParseFormat(name string) (OutputFormat, error) {
	switch format := OutputFormat(name); format {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatSummary:
		return format, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or summary)", name)
	}
}
