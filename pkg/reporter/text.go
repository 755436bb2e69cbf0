package reporter

import (
	"bufio"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/yaklabco/gomdwarehouse/internal/ui/pretty"
	"github.com/yaklabco/gomdwarehouse/pkg/collectors"
	"github.com/yaklabco/gomdwarehouse/pkg/extract"
)

// TextReporter writes findings (unsafe URLs, failed or truncated
// collectors, unreadable files) grouped by file. Verbose mode lists every
// extracted item as well.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *extract.Result) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No files to extract."))
		}
		return nil
	}

	for _, file := range result.Files {
		path := displayPath(file.Path, r.opts.WorkingDir)

		if file.Error != nil {
			fmt.Fprintf(r.bw, "%s: %s\n",
				r.styles.FilePath.Render(path),
				r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)),
			)
			continue
		}
		if file.Result == nil {
			continue
		}

		found := Findings(path, file.Result)
		if r.opts.Verbose {
			r.writeDocument(path, file.Result)
		} else if len(found) > 0 {
			fmt.Fprintln(r.bw, r.styles.FilePath.Render(path))
		}
		for _, f := range found {
			fmt.Fprint(r.bw, r.styles.FormatFinding(f))
		}
		if r.opts.Verbose || len(found) > 0 {
			fmt.Fprintln(r.bw)
		}
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}
	return nil
}

// writeDocument lists a document's counts and items.
func (r *TextReporter) writeDocument(path string, doc *extract.DocumentResult) {
	fmt.Fprintf(r.bw, "%s %s\n",
		r.styles.FilePath.Render(path),
		r.styles.Dim.Render(fmt.Sprintf("(%d lines, %d sections)", doc.Lines, len(doc.Sections))),
	)

	for _, name := range slices.Sorted(maps.Keys(doc.Results)) {
		res := doc.Results[name]
		if res.Failed() {
			continue
		}
		n, _ := extract.ItemCount(res.Value)
		fmt.Fprintf(r.bw, "  %s %d\n", r.styles.Bold.Render(name+":"), n)
		for _, line := range describeItems(res.Value) {
			fmt.Fprintln(r.bw, "    "+line)
		}
	}
}

// Findings returns the reportable problems in doc: unsafe links and images,
// failed collectors and truncated results.
func Findings(path string, doc *extract.DocumentResult) []pretty.Finding {
	var out []pretty.Finding

	for _, name := range slices.Sorted(maps.Keys(doc.Results)) {
		res := doc.Results[name]
		switch {
		case res.Failed():
			out = append(out, pretty.Finding{
				Path: path, Collector: name, Message: "collector failed", Reason: res.Err.Error(),
			})
			continue
		case res.Truncated:
			out = append(out, pretty.Finding{
				Path: path, Collector: name, Message: "result truncated", Reason: strings.Join(res.Warnings, "; "),
			})
		}

		switch items := res.Value.(type) {
		case []collectors.Link:
			for _, l := range items {
				if !l.Safe {
					out = append(out, unsafeFinding(path, name, l.Line, "unsafe "+string(l.Source), l.URL, l.Check))
				}
			}
		case []collectors.Image:
			for _, img := range items {
				if !img.Safe {
					out = append(out, unsafeFinding(path, name, img.Line, "unsafe image", img.Src, img.Check))
				}
			}
		}
	}

	slices.SortStableFunc(out, func(a, b pretty.Finding) int { return a.Line - b.Line })
	return out
}

func unsafeFinding(path, collector string, line int, msg, url string, c collectors.Check) pretty.Finding {
	reason := c.Reason
	if c.Layer != "" {
		reason = c.Layer + ": " + reason
	}
	return pretty.Finding{Path: path, Line: line, Collector: collector, Message: msg, URL: url, Reason: reason}
}

// describeItems renders one line per item for the built-in collector types.
func describeItems(value any) []string {
	var lines []string
	switch items := value.(type) {
	case []collectors.Link:
		for _, l := range items {
			lines = append(lines, fmt.Sprintf("%d: %s %s%s", l.Line, l.Source, l.URL, safeMark(l.Safe)))
		}
	case []collectors.Image:
		for _, img := range items {
			lines = append(lines, fmt.Sprintf("%d: %s %q%s", img.Line, img.Src, img.Alt, safeMark(img.Safe)))
		}
	case []collectors.Heading:
		for _, h := range items {
			lines = append(lines, fmt.Sprintf("%d: %s %s #%s", h.Line, strings.Repeat("#", int(h.Level)), h.Text, h.Anchor))
		}
	case []collectors.Table:
		for _, tb := range items {
			lines = append(lines, fmt.Sprintf("%d-%d: %d columns, %d rows", tb.StartLine, tb.EndLine, tb.Columns, tb.Rows))
		}
	case []collectors.CodeBlock:
		for _, cb := range items {
			lines = append(lines, fmt.Sprintf("%d-%d: %s (%s, %d lines)", cb.StartLine, cb.EndLine, cb.Language, cb.Method, cb.CodeLines))
		}
	case []collectors.HTMLFragment:
		for _, h := range items {
			lines = append(lines, fmt.Sprintf("%d-%d: %q", h.StartLine, h.EndLine, h.Snippet))
		}
	}
	return lines
}

func safeMark(safe bool) string {
	if safe {
		return ""
	}
	return " (unsafe)"
}
