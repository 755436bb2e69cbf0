package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdwarehouse/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root gomdwarehouse command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "gomdwarehouse",
		Short: "Index Markdown once, extract links, headings, tables and code in one pass",
		Long: `gomdwarehouse tokenizes Markdown documents once, indexes the token stream
into an immutable warehouse of sections, fences and pairings, and dispatches
every token to a set of collectors in a single pass.

Built-in collectors extract links, images, headings, tables, fenced code and
raw HTML. Every link and image URL is checked by a layered validator that
rejects dangerous schemes, encoded payloads and homograph hosts.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupExtraction, Title: "Extraction Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	extractCmd := newExtractCommand()
	collectorsCmd := newCollectorsCommand()
	for _, cmd := range []*cobra.Command{extractCmd, collectorsCmd} {
		cmd.Annotations = map[string]string{annotationContainers: "true"}
	}

	for _, cmd := range []*cobra.Command{extractCmd, newSectionsCommand(), newCheckURLCommand()} {
		cmd.GroupID = groupExtraction
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{collectorsCmd, newInitCommand(), newVersionCommand(info)} {
		cmd.GroupID = groupSetup
		rootCmd.AddCommand(cmd)
	}

	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
