package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/gomdwarehouse/internal/ui/pretty"
	"github.com/yaklabco/gomdwarehouse/pkg/config"
	"github.com/yaklabco/gomdwarehouse/pkg/extract"
	"github.com/yaklabco/gomdwarehouse/pkg/fsutil"
	"github.com/yaklabco/gomdwarehouse/pkg/warehouse"
)

func newSectionsCommand() *cobra.Command {
	var flavor string

	cmd := &cobra.Command{
		Use:   "sections <file>",
		Short: "Show the section tree of a Markdown file",
		Long: `Index a Markdown file and print its sections: heading level, the lines
each section owns, the nested extent up to the next heading of the same or
a higher level, and the fenced code blocks inside.

Line ranges are 1-based and inclusive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var overrides config.Config
			if flavor != "" {
				if !config.Flavor(flavor).IsValid() {
					return usageError("unknown flavor %q (want commonmark or gfm)", flavor)
				}
				overrides.Flavor = config.Flavor(flavor)
			}
			return runSections(cmd, args[0], &overrides)
		},
	}

	cmd.Flags().StringVar(&flavor, "flavor", "", "Markdown flavor: commonmark, gfm (default gfm)")

	return cmd
}

func runSections(cmd *cobra.Command, path string, overrides *config.Config) error {
	sess, err := newSession(cmd, overrides)
	if err != nil {
		return err
	}

	maxBytes := sess.cfg.Limits.MaxBytes
	if maxBytes <= 0 {
		maxBytes = warehouse.DefaultMaxBytes
	}

	content, _, err := fsutil.ReadFile(sess.ctx, path, maxBytes)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	wh, err := extract.NewEngine().Build(sess.ctx, path, content, sess.cfg)
	if err != nil {
		if errors.Is(err, warehouse.ErrLimitExceeded) {
			return fmt.Errorf("%w: %w", fsutil.ErrTooLarge, err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(sess.color, out))
	table := pretty.NewSectionTable(styles, terminalWidth())

	if _, err := fmt.Fprint(out, table.Format(wh)); err != nil {
		return fmt.Errorf("write sections: %w", err)
	}
	for _, w := range wh.Warnings() {
		if _, err := fmt.Fprintln(cmd.ErrOrStderr(), styles.Warning.Render("warning: "+w)); err != nil {
			return fmt.Errorf("write warnings: %w", err)
		}
	}

	return nil
}

// terminalWidth returns the stdout width, or 0 when stdout is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}
