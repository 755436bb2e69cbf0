package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdwarehouse/internal/logging"
	"github.com/yaklabco/gomdwarehouse/pkg/collectors"
	"github.com/yaklabco/gomdwarehouse/pkg/config"
)

const formatJSON = "json"

// collectorInfo represents a collector in JSON output.
type collectorInfo struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Enabled      bool     `json:"enabled"`
	Interests    []string `json:"interests"`
	IgnoreInside []string `json:"ignore_inside"`
}

func newCollectorsCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "collectors",
		Short: "List built-in collectors",
		Long: `List the built-in collectors with the token kinds they subscribe to,
the containers they skip, and whether they run by default.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos := collectors.Default.Infos()

			switch format {
			case formatJSON:
				return outputCollectorsJSON(cmd.OutOrStdout(), infos)
			case "text", "":
				outputCollectorsText(cmd.OutOrStdout(), infos)
				return nil
			default:
				return usageError("unknown format %q (want text or json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")

	return cmd
}

func outputCollectorsText(w io.Writer, infos []config.CollectorInfo) {
	logger := logging.NewWithWriter(w, "info")
	for _, info := range infos {
		ignore := "-"
		if len(info.IgnoreInside) > 0 {
			ignore = strings.Join(info.IgnoreInside, ",")
		}
		logger.Info(info.Name,
			logging.FieldEnabled, info.Enabled,
			logging.FieldInterests, strings.Join(info.Interests, ","),
			logging.FieldIgnoreInside, ignore,
			logging.FieldDescription, info.Description,
		)
	}
}

func outputCollectorsJSON(w io.Writer, infos []config.CollectorInfo) error {
	out := make([]collectorInfo, 0, len(infos))
	for _, info := range infos {
		out = append(out, collectorInfo{
			Name:         info.Name,
			Description:  info.Description,
			Enabled:      info.Enabled,
			Interests:    nonNil(info.Interests),
			IgnoreInside: nonNil(info.IgnoreInside),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding collectors: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
