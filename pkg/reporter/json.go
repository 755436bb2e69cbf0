package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/gomdwarehouse/pkg/extract"
	"github.com/yaklabco/gomdwarehouse/pkg/warehouse"
)

// JSONSchemaVersion is bumped on incompatible output changes.
const JSONSchemaVersion = "1"

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string      `json:"version"`
	Files   []JSONFile  `json:"files"`
	Summary JSONSummary `json:"summary"`
}

// JSONFile is one document. Line numbers are 1-based.
type JSONFile struct {
	Path       string                   `json:"path"`
	Digest     string                   `json:"sha256,omitempty"`
	Size       int64                    `json:"size"`
	Lines      int                      `json:"lines"`
	Tokens     int                      `json:"tokens"`
	Sections   []JSONSection            `json:"sections"`
	Collectors map[string]JSONCollector `json:"collectors"`
	Warnings   []string                 `json:"warnings,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

// JSONSection is a section with its own lines and nested extent, both
// 1-based inclusive. An empty section has end_line < start_line.
type JSONSection struct {
	Level     uint8  `json:"level"`
	Heading   string `json:"heading,omitempty"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	ExtentEnd int    `json:"extent_end"`
}

// JSONCollector is one collector's outcome. Items is the collector's own
// value.
type JSONCollector struct {
	Items     any      `json:"items,omitempty"`
	Count     int      `json:"count"`
	Truncated bool     `json:"truncated,omitempty"`
	Error     string   `json:"error,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesDiscovered   int            `json:"files_discovered"`
	FilesProcessed    int            `json:"files_processed"`
	FilesErrored      int            `json:"files_errored"`
	Items             map[string]int `json:"items"`
	UnsafeURLs        int            `json:"unsafe_urls"`
	CollectorFailures int            `json:"collector_failures"`
	Truncated         int            `json:"truncated"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *extract.Result) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(BuildJSON(result, r.opts.WorkingDir)); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// BuildJSON converts a run result to its JSON form.
func BuildJSON(result *extract.Result, workDir string) *JSONOutput {
	out := &JSONOutput{
		Version: JSONSchemaVersion,
		Files:   make([]JSONFile, 0),
		Summary: JSONSummary{Items: make(map[string]int)},
	}
	if result == nil {
		return out
	}

	stats := result.Stats
	out.Summary = JSONSummary{
		FilesDiscovered:   stats.FilesDiscovered,
		FilesProcessed:    stats.FilesProcessed,
		FilesErrored:      stats.FilesErrored,
		Items:             stats.Items,
		UnsafeURLs:        stats.UnsafeURLs,
		CollectorFailures: stats.CollectorFailures,
		Truncated:         stats.Truncated,
	}
	if out.Summary.Items == nil {
		out.Summary.Items = make(map[string]int)
	}

	out.Files = make([]JSONFile, 0, len(result.Files))
	for _, file := range result.Files {
		jf := JSONFile{
			Path:       displayPath(file.Path, workDir),
			Sections:   make([]JSONSection, 0),
			Collectors: make(map[string]JSONCollector),
		}
		if file.Error != nil {
			jf.Error = file.Error.Error()
		}
		if doc := file.Result; doc != nil {
			jf.Digest = doc.Digest
			jf.Size = doc.Size
			jf.Lines = doc.Lines
			jf.Tokens = doc.Tokens
			jf.Warnings = doc.Warnings
			for _, s := range doc.Sections {
				jf.Sections = append(jf.Sections, jsonSection(s))
			}
			for name, res := range doc.Results {
				jf.Collectors[name] = jsonCollector(res)
			}
		}
		out.Files = append(out.Files, jf)
	}
	return out
}

func jsonSection(s warehouse.Section) JSONSection {
	return JSONSection{
		Level:     s.Level,
		Heading:   s.HeadingText,
		StartLine: int(s.StartLine) + 1,
		EndLine:   int(s.EndLine),
		ExtentEnd: int(s.ExtentEnd),
	}
}

func jsonCollector(res warehouse.Result) JSONCollector {
	jc := JSONCollector{Truncated: res.Truncated, Warnings: res.Warnings}
	if res.Failed() {
		jc.Error = res.Err.Error()
		return jc
	}
	jc.Items = res.Value
	jc.Count, _ = extract.ItemCount(res.Value)
	return jc
}
