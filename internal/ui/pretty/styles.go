// Package pretty renders warehouse results for terminals with Lipgloss.
package pretty

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles holds the renderers used by findings, verdicts, summaries and the
// section table.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Findings: "path:line collector url (reason)".
	FilePath  lipgloss.Style
	Location  lipgloss.Style
	Collector lipgloss.Style
	URL       lipgloss.Style
	Reason    lipgloss.Style

	// URL verdicts.
	Safe   lipgloss.Style
	Unsafe lipgloss.Style

	SummaryTitle lipgloss.Style
	SummaryValue lipgloss.Style
	Success      lipgloss.Style
	Failure      lipgloss.Style

	// Section table.
	TableHeader    lipgloss.Style
	TableSeparator lipgloss.Style
	HeadingText    lipgloss.Style
	RootSection    lipgloss.Style

	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// ANSI colors.
const (
	colorGray   = "8"
	colorRed    = "9"
	colorGreen  = "10"
	colorYellow = "11"
	colorBlue   = "12"
	colorCyan   = "14"
	colorWhite  = "7"
)

// styleSpec describes one style; it is ignored when color is off.
type styleSpec struct {
	fg        string
	bold      bool
	italic    bool
	underline bool
}

// NewStyles creates Styles. With colorEnabled false every style renders
// text unchanged.
func NewStyles(colorEnabled bool) *Styles {
	mk := func(spec styleSpec) lipgloss.Style {
		style := lipgloss.NewStyle()
		if !colorEnabled {
			return style
		}
		if spec.fg != "" {
			style = style.Foreground(lipgloss.Color(spec.fg))
		}
		return style.Bold(spec.bold).Italic(spec.italic).Underline(spec.underline)
	}

	return &Styles{
		Error:   mk(styleSpec{fg: colorRed, bold: true}),
		Warning: mk(styleSpec{fg: colorYellow, bold: true}),
		Info:    mk(styleSpec{fg: colorBlue, bold: true}),

		FilePath:  mk(styleSpec{bold: true}),
		Location:  mk(styleSpec{fg: colorGray}),
		Collector: mk(styleSpec{fg: colorGray}),
		URL:       mk(styleSpec{underline: true}),
		Reason:    mk(styleSpec{fg: colorWhite, italic: true}),

		Safe:   mk(styleSpec{fg: colorGreen, bold: true}),
		Unsafe: mk(styleSpec{fg: colorRed, bold: true}),

		SummaryTitle: mk(styleSpec{bold: true}),
		SummaryValue: mk(styleSpec{}),
		Success:      mk(styleSpec{fg: colorGreen, bold: true}),
		Failure:      mk(styleSpec{fg: colorRed, bold: true}),

		TableHeader:    mk(styleSpec{fg: colorWhite, bold: true}),
		TableSeparator: mk(styleSpec{fg: colorGray}),
		HeadingText:    mk(styleSpec{fg: colorCyan}),
		RootSection:    mk(styleSpec{fg: colorGray, italic: true}),

		Dim:  mk(styleSpec{fg: colorGray}),
		Bold: mk(styleSpec{bold: true}),
	}
}

// IsColorEnabled resolves a --color mode for writer. "always" and "never"
// are absolute; anything else means auto: color only on a terminal and only
// when NO_COLOR is unset.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "always":
		return true
	case "never":
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
