package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdwarehouse/internal/configloader"
	"github.com/yaklabco/gomdwarehouse/internal/logging"
	"github.com/yaklabco/gomdwarehouse/pkg/collectors"
	"github.com/yaklabco/gomdwarehouse/pkg/config"
	"github.com/yaklabco/gomdwarehouse/pkg/fsutil"
)

type initFlags struct {
	force  bool
	full   bool
	format string
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new gomdwarehouse configuration file",
		Long: `Create a new .gomdwarehouse.yml configuration file in the current directory
with the default limits, URL policy and ignore patterns.

Examples:
  gomdwarehouse init                     Create minimal .gomdwarehouse.yml
  gomdwarehouse init --full              Document every collector
  gomdwarehouse init --format json       Create .gomdwarehouse.json instead
  gomdwarehouse init -o ci/warehouse.yml Write to a custom file path`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "generate full template with all collectors documented")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "output format: yaml or json")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "",
		"output file path (default: .gomdwarehouse.yml or .gomdwarehouse.json)")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), "info")

	if flags.format != "yaml" && flags.format != formatJSON {
		return usageError("invalid format %q: must be yaml or json", flags.format)
	}

	outputPath := flags.output
	if outputPath == "" {
		outputPath = configloader.DefaultProjectConfig()
		if flags.format == formatJSON {
			outputPath = ".gomdwarehouse.json"
		}
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil {
		if !flags.force {
			return usageError("file %q already exists; use --force to overwrite", outputPath)
		}
		logger.Warn("overwriting existing file", logging.FieldPath, outputPath)
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{
		Full:       flags.full,
		Format:     flags.format,
		Collectors: collectors.Default.Infos(),
	})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := fsutil.WriteAtomic(ctx, absPath, content, fsutil.DefaultFileMode); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	logger.Info("created configuration file", logging.FieldPath, outputPath)
	logger.Info("run 'gomdwarehouse collectors' to see all available collectors")

	return nil
}
