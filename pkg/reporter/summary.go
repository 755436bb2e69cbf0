package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/gomdwarehouse/internal/ui/pretty"
	"github.com/yaklabco/gomdwarehouse/pkg/extract"
)

// SummaryReporter writes per-collector totals and the files that need
// attention.
type SummaryReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewSummaryReporter creates a new summary reporter.
func NewSummaryReporter(opts Options) *SummaryReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &SummaryReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *SummaryReporter) Report(_ context.Context, result *extract.Result) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil {
		result = &extract.Result{}
	}

	var attention []string
	for _, file := range result.Files {
		path := displayPath(file.Path, r.opts.WorkingDir)
		switch {
		case file.Error != nil:
			attention = append(attention, fmt.Sprintf("%s  %s", path, r.styles.Error.Render("not extracted")))
		case file.Result != nil:
			unsafe := file.Result.UnsafeURLs()
			failed := len(file.Result.Failed())
			if unsafe == 0 && failed == 0 {
				continue
			}
			attention = append(attention, fmt.Sprintf("%s  %s",
				path, r.styles.Dim.Render(fmt.Sprintf("%d unsafe URLs, %d failed collectors", unsafe, failed))))
		}
	}

	fmt.Fprint(r.bw, r.styles.FormatSummary(result.Stats))

	if len(attention) > 0 {
		fmt.Fprintln(r.bw)
		fmt.Fprintln(r.bw, r.styles.Bold.Render("Files needing attention"))
		for _, line := range attention {
			fmt.Fprintln(r.bw, "  "+line)
		}
	}
	return nil
}
