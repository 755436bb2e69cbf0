package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/gomdwarehouse/pkg/urlguard"
)

// Finding is one reportable item in a document: an unsafe URL, a failed
// collector or a truncated result.
type Finding struct {
	Path      string
	Line      int
	Collector string
	Message   string

	// URL and Reason are set for unsafe URLs.
	URL    string
	Reason string
}

// FormatFinding renders a finding as
// "  path:line  message  url  (reason) [collector]".
func (s *Styles) FormatFinding(f Finding) string {
	var b strings.Builder

	loc := s.FilePath.Render(f.Path)
	if f.Line > 0 {
		loc += s.Location.Render(fmt.Sprintf(":%d", f.Line))
	}

	b.WriteString("  ")
	b.WriteString(loc)
	b.WriteString("  ")
	if f.URL != "" {
		b.WriteString(s.Unsafe.Render(f.Message))
		b.WriteString("  ")
		b.WriteString(s.URL.Render(f.URL))
	} else {
		b.WriteString(s.Error.Render(f.Message))
	}
	if f.Reason != "" {
		b.WriteString("  ")
		b.WriteString(s.Reason.Render("(" + f.Reason + ")"))
	}
	if f.Collector != "" {
		b.WriteString("  ")
		b.WriteString(s.Collector.Render("[" + f.Collector + "]"))
	}
	b.WriteString("\n")
	return b.String()
}

// FormatVerdict renders a validator verdict for raw.
func (s *Styles) FormatVerdict(raw string, v urlguard.Verdict) string {
	var b strings.Builder

	if v.Valid {
		b.WriteString(s.Safe.Render("safe"))
		b.WriteString("  ")
	} else {
		b.WriteString(s.Unsafe.Render("unsafe"))
	}
	b.WriteString("  ")
	b.WriteString(fmt.Sprintf("%q", raw))

	if v.Valid && v.Normalized != raw {
		b.WriteString(s.Dim.Render(" -> "))
		b.WriteString(fmt.Sprintf("%q", v.Normalized))
	}
	if !v.Valid {
		b.WriteString("  ")
		b.WriteString(s.Reason.Render(fmt.Sprintf("(%s: %s)", v.Layer, v.Reason)))
	}
	b.WriteString("\n")

	for _, w := range v.Warnings {
		b.WriteString("        ")
		b.WriteString(s.Warning.Render("warning: "))
		b.WriteString(w)
		b.WriteString("\n")
	}
	return b.String()
}
