package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdwarehouse/internal/logging"
	"github.com/yaklabco/gomdwarehouse/pkg/config"
	"github.com/yaklabco/gomdwarehouse/pkg/extract"
	"github.com/yaklabco/gomdwarehouse/pkg/fsutil"
	"github.com/yaklabco/gomdwarehouse/pkg/reporter"
)

type extractFlags struct {
	format  string
	flavor  string
	verbose bool
	compact bool
}

func newExtractCommand() *cobra.Command {
	var cfg config.Config
	flags := &extractFlags{}

	cmd := &cobra.Command{
		Use:   "extract [paths...]",
		Short: "Extract links, images, headings, tables and code from Markdown files",
		Long:  extractLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args, &cfg, flags)
		},
	}

	addExtractFlags(cmd, &cfg, flags)

	return cmd
}

const extractLongDescription = `Extract structured data from Markdown files.

By default, processes all .md and .markdown files in the current directory
and subdirectories. Hidden files and directories are skipped. Each document
is tokenized once and dispatched to every enabled collector in one pass.
A collector skips tokens inside the containers named by its ignore_inside
setting in the config file.

Examples:
  gomdwarehouse extract                        # Current directory
  gomdwarehouse extract docs/ README.md        # Specific paths
  gomdwarehouse extract --format json -o out.json
  gomdwarehouse extract --enable html          # Add an opt-in collector
  gomdwarehouse extract --strict               # Fail on unsafe URLs`

func addExtractFlags(cmd *cobra.Command, cfg *config.Config, flags *extractFlags) {
	cmd.Flags().StringVar(&flags.format, "format", "", "output format: text, json, summary (default text)")
	cmd.Flags().StringVarP(&cfg.Output, "output", "o", "", "write results to a file instead of stdout")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&cfg.Ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringSliceVar(&cfg.EnableCollectors, "enable", nil, "collectors to enable")
	cmd.Flags().StringSliceVar(&cfg.DisableCollectors, "disable", nil, "collectors to disable")
	cmd.Flags().BoolVar(&cfg.Strict, "strict", false, "exit 1 on unsafe URLs, collector failures or unreadable files")
	cmd.Flags().StringVar(&flags.flavor, "flavor", "", "Markdown flavor: commonmark, gfm (default gfm)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "list every extracted item in text output")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "disable JSON indentation")
}

func runExtract(cmd *cobra.Command, args []string, cfg *config.Config, flags *extractFlags) error {
	if flags.format != "" {
		format, err := config.ParseFormat(flags.format)
		if err != nil {
			return usageError("%v", err)
		}
		cfg.Format = format
	}
	if flags.flavor != "" {
		if !config.Flavor(flags.flavor).IsValid() {
			return usageError("unknown flavor %q (want commonmark or gfm)", flags.flavor)
		}
		cfg.Flavor = config.Flavor(flags.flavor)
	}

	sess, err := newSession(cmd, cfg)
	if err != nil {
		return err
	}
	finalCfg := sess.cfg
	logger := logging.FromContext(sess.ctx)

	logger.Debug("configuration loaded",
		logging.FieldFlavor, finalCfg.Flavor,
		logging.FieldFormat, finalCfg.Format,
		logging.FieldJobs, finalCfg.Jobs,
		logging.FieldStrict, finalCfg.Strict,
	)

	runOpts := extract.Options{
		Paths:      args,
		WorkingDir: sess.workDir,
		Extensions: extract.DefaultExtensions(),
		Jobs:       finalCfg.Jobs,
		Config:     finalCfg,
	}

	result, err := extract.NewRunner(extract.NewEngine()).Run(sess.ctx, runOpts)
	if err != nil {
		return errors.Join(errors.New("extraction failed"), err)
	}

	for _, outcome := range result.Files {
		if outcome.Error != nil {
			logger.Warn("document not extracted", logging.FieldPath, outcome.Path, logging.FieldError, outcome.Error)
		}
	}

	var buf bytes.Buffer
	var out io.Writer = cmd.OutOrStdout()
	color := sess.color
	if finalCfg.Output != "" {
		out = &buf
		color = "never"
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      out,
		Format:      finalCfg.Format,
		Color:       color,
		ShowSummary: true,
		Verbose:     flags.verbose,
		Compact:     flags.compact,
		WorkingDir:  sess.workDir,
	})
	if err != nil {
		return usageError("%v", err)
	}

	if err := rep.Report(sess.ctx, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	if finalCfg.Output != "" {
		changed, err := fsutil.WriteAtomicIfChanged(sess.ctx, finalCfg.Output, buf.Bytes(), fsutil.DefaultFileMode)
		if err != nil {
			return fmt.Errorf("write %s: %w", finalCfg.Output, err)
		}
		logger.Debug("results written", logging.FieldOutput, finalCfg.Output, "changed", changed)
	}

	if ExitCodeFromResult(result, finalCfg.Strict) != ExitSuccess {
		return ErrFindings
	}

	return nil
}
