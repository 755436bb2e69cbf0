package pretty

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/gomdwarehouse/pkg/warehouse"
)

const (
	defaultTermWidth = 100
	minHeadingWidth  = 16
	colGap           = 2
	rootLabel        = "(document)"
)

// SectionTable renders a warehouse's sections as an aligned table, one row
// per section with its own lines, its nested extent and fence count.
type SectionTable struct {
	styles    *Styles
	termWidth int
}

// NewSectionTable creates a section table renderer. termWidth <= 0 selects
// a 100 column layout.
func NewSectionTable(styles *Styles, termWidth int) *SectionTable {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &SectionTable{styles: styles, termWidth: termWidth}
}

type sectionRow struct {
	id, level, lines, extent, fences string
	heading                          string
	root                             bool
}

// Format renders every section of wh. Line numbers are 1-based and
// inclusive; empty ranges show as "-".
func (t *SectionTable) Format(wh *warehouse.Warehouse) string {
	sections := wh.Sections()

	fenceCount := make([]int, len(sections))
	for _, f := range wh.Fences() {
		if sid, ok := wh.SectionContaining(f.StartLine); ok {
			fenceCount[sid]++
		}
	}

	headers := sectionRow{id: "#", level: "LEVEL", lines: "LINES", extent: "EXTENT", fences: "FENCES", heading: "HEADING"}
	rows := make([]sectionRow, len(sections))
	for i, s := range sections {
		row := sectionRow{
			id:     strconv.Itoa(i),
			level:  strconv.Itoa(int(s.Level)),
			lines:  lineSpan(s.StartLine, s.EndLine),
			extent: lineSpan(s.StartLine, s.ExtentEnd),
			fences: strconv.Itoa(fenceCount[i]),
		}
		if s.Level == 0 {
			row.heading = rootLabel
			row.root = true
		} else {
			row.heading = strings.Repeat("  ", int(s.Level)-1) + s.HeadingText
		}
		rows[i] = row
	}

	w := widthsOf(headers, rows)
	fixed := 1 + w.id + w.level + w.lines + w.extent + w.fences + colGap*5
	w.heading = max(minHeadingWidth, min(w.heading, t.termWidth-fixed))
	total := fixed + w.heading

	var b strings.Builder
	b.WriteString(t.styles.TableHeader.Render(w.line(headers)))
	b.WriteString("\n")
	b.WriteString(t.styles.TableSeparator.Render(strings.Repeat("=", total)))
	b.WriteString("\n")
	for _, row := range rows {
		row.heading = truncate(row.heading, w.heading)
		line := w.line(row)
		if row.root {
			line = t.styles.RootSection.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(t.styles.TableSeparator.Render(strings.Repeat("=", total)))
	b.WriteString("\n")
	b.WriteString(t.styles.Dim.Render(fmt.Sprintf(" %d sections, %d lines, %d tokens",
		len(sections), wh.LineCount(), wh.Len())))
	b.WriteString("\n")
	return b.String()
}

type sectionWidths struct {
	id, level, lines, extent, fences, heading int
}

func widthsOf(headers sectionRow, rows []sectionRow) sectionWidths {
	n := utf8.RuneCountInString
	w := sectionWidths{
		id: n(headers.id), level: n(headers.level), lines: n(headers.lines),
		extent: n(headers.extent), fences: n(headers.fences), heading: n(headers.heading),
	}
	for _, r := range rows {
		w.id = max(w.id, n(r.id))
		w.level = max(w.level, n(r.level))
		w.lines = max(w.lines, n(r.lines))
		w.extent = max(w.extent, n(r.extent))
		w.fences = max(w.fences, n(r.fences))
		w.heading = max(w.heading, n(r.heading))
	}
	return w
}

func (w sectionWidths) line(r sectionRow) string {
	return strings.TrimRight(fmt.Sprintf(" %*s  %*s  %-*s  %-*s  %*s  %s",
		w.id, r.id,
		w.level, r.level,
		w.lines, r.lines,
		w.extent, r.extent,
		w.fences, r.fences,
		r.heading,
	), " ")
}

// lineSpan formats the 0-based half-open range [start, end) as 1-based
// inclusive lines.
func lineSpan(start, end uint32) string {
	switch {
	case end <= start:
		return "-"
	case end == start+1:
		return strconv.FormatUint(uint64(start)+1, 10)
	default:
		return fmt.Sprintf("%d-%d", start+1, end)
	}
}

// truncate shortens s to maxLen runes, marking the cut with "...".
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	if maxLen <= 3 {
		return string(r[:max(maxLen, 0)])
	}
	return string(r[:maxLen-3]) + "..."
}
