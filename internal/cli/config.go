package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdwarehouse/internal/configloader"
	"github.com/yaklabco/gomdwarehouse/internal/logging"
	"github.com/yaklabco/gomdwarehouse/pkg/config"
)

// session is the resolved state every command starts from.
type session struct {
	ctx     context.Context
	cfg     *config.Config
	workDir string
	color   string
}

// newSession resolves the working directory and loads configuration with
// overrides as the highest layer. The command's context carries the
// default logger.
func newSession(cmd *cobra.Command, overrides *config.Config) (*session, error) {
	logger := logging.Default()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithLogger(ctx, logger)

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loaded, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    overrides,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	for _, warning := range loaded.Warnings {
		logger.Warn(warning)
	}
	if len(loaded.LoadedFrom) > 0 {
		logger.Debug("loaded configuration", logging.FieldFiles, loaded.LoadedFrom)
	}

	return &session{ctx: ctx, cfg: loaded.Config, workDir: workDir, color: colorMode}, nil
}
