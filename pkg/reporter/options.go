package reporter

import (
	"io"
	"os"

	"github.com/yaklabco/gomdwarehouse/pkg/config"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// Options configures reporter behavior.
type Options struct {
	// Writer is the destination for output (typically os.Stdout).
	Writer io.Writer

	// Format specifies the output format.
	Format config.OutputFormat

	// Color controls colorized output: "auto" (default), "always", "never".
	Color string

	// ShowSummary appends aggregate statistics to text output.
	ShowSummary bool

	// Verbose lists every extracted item in text output, not only findings.
	Verbose bool

	// Compact disables JSON indentation.
	Compact bool

	// WorkingDir makes reported paths relative. Empty keeps them as given.
	WorkingDir string
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Writer:      os.Stdout,
		Format:      config.FormatText,
		Color:       "auto",
		ShowSummary: true,
	}
}
