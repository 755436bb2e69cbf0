package pretty

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/yaklabco/gomdwarehouse/pkg/extract"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "3 files, 42 items, 2 unsafe URLs, 1 collector failure".
func (s *Styles) FormatSummaryOneLine(stats extract.Stats) string {
	items := 0
	for _, n := range stats.Items {
		items += n
	}

	parts := []string{
		fmt.Sprintf("%d %s", stats.FilesProcessed, plural(stats.FilesProcessed, wordFile, wordFiles)),
		fmt.Sprintf("%d %s", items, plural(items, "item", "items")),
	}

	if stats.UnsafeURLs > 0 {
		parts = append(parts, s.Unsafe.Render(fmt.Sprintf("%d unsafe %s",
			stats.UnsafeURLs, plural(stats.UnsafeURLs, "URL", "URLs"))))
	}
	if stats.CollectorFailures > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d collector %s",
			stats.CollectorFailures, plural(stats.CollectorFailures, "failure", "failures"))))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d %s not extracted",
			stats.FilesErrored, plural(stats.FilesErrored, wordFile, wordFiles))))
	}
	if stats.Truncated > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d truncated", stats.Truncated)))
	}

	line := strings.Join(parts, ", ")
	if stats.UnsafeURLs == 0 && stats.CollectorFailures == 0 && stats.FilesErrored == 0 {
		line = s.Success.Render("OK") + " " + line
	}
	return line + "\n"
}

// FormatSummary formats run statistics as a block with per-collector counts.
func (s *Styles) FormatSummary(stats extract.Stats) string {
	var b strings.Builder

	b.WriteString(s.SummaryTitle.Render("Summary"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", summaryDividerWidth))
	b.WriteString("\n")

	row := func(label string, value string) {
		fmt.Fprintf(&b, "  %-20s %s\n", label+":", value)
	}

	row("Files discovered", s.SummaryValue.Render(strconv.Itoa(stats.FilesDiscovered)))
	row("Files extracted", s.SummaryValue.Render(strconv.Itoa(stats.FilesProcessed)))
	if stats.FilesErrored > 0 {
		row("Files failed", s.Failure.Render(strconv.Itoa(stats.FilesErrored)))
	}
	b.WriteString("\n")

	names := make([]string, 0, len(stats.Items))
	for name := range stats.Items {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		row(name, s.SummaryValue.Render(strconv.Itoa(stats.Items[name])))
	}
	if len(names) > 0 {
		b.WriteString("\n")
	}

	if stats.UnsafeURLs > 0 {
		row("Unsafe URLs", s.Unsafe.Render(strconv.Itoa(stats.UnsafeURLs)))
	}
	if stats.CollectorFailures > 0 {
		row("Collector failures", s.Failure.Render(strconv.Itoa(stats.CollectorFailures)))
	}
	if stats.Truncated > 0 {
		row("Truncated results", s.Warning.Render(strconv.Itoa(stats.Truncated)))
	}
	if stats.Warnings > 0 {
		row("Malformed tokens", s.Warning.Render(strconv.Itoa(stats.Warnings)))
	}

	switch {
	case stats.CollectorFailures > 0 || stats.FilesErrored > 0:
		b.WriteString(s.Failure.Render("Extraction completed with failures"))
	case stats.UnsafeURLs > 0:
		b.WriteString(s.Warning.Render("Extraction found unsafe URLs"))
	default:
		b.WriteString(s.Success.Render("Extraction passed"))
	}
	b.WriteString("\n")

	return b.String()
}
