package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdwarehouse/internal/logging"
	"github.com/yaklabco/gomdwarehouse/internal/ui/pretty"
	"github.com/yaklabco/gomdwarehouse/pkg/config"
	"github.com/yaklabco/gomdwarehouse/pkg/urlguard"
)

func newCheckURLCommand() *cobra.Command {
	var overrides config.Config

	cmd := &cobra.Command{
		Use:   "check-url <url>...",
		Short: "Validate URLs with the configured policy",
		Long: `Run URLs through the same layered validator the link and image collectors
use and print a verdict for each. The command exits 1 when any URL is
rejected.

Examples:
  gomdwarehouse check-url https://example.com
  gomdwarehouse check-url 'javascript:alert(1)' '%6A%61vascript:x'
  gomdwarehouse check-url --allow-relative ../guide.md`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckURL(cmd, args, &overrides)
		},
	}

	cmd.Flags().StringSliceVar(&overrides.URLs.AllowedSchemes, "allow-scheme", nil,
		"accepted schemes (default http, https, mailto)")
	cmd.Flags().BoolVar(&overrides.URLs.AllowRelative, "allow-relative", false, "accept relative references")

	return cmd
}

func runCheckURL(cmd *cobra.Command, urls []string, overrides *config.Config) error {
	sess, err := newSession(cmd, overrides)
	if err != nil {
		return err
	}
	logger := logging.FromContext(sess.ctx)

	validator := urlguard.New(urlguard.Policy{
		AllowedSchemes: sess.cfg.URLs.AllowedSchemes,
		AllowRelative:  sess.cfg.URLs.AllowRelative,
	})

	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(sess.color, out))

	rejected := 0
	for _, raw := range urls {
		verdict := validator.Validate(raw)
		if !verdict.Valid {
			rejected++
			logger.Debug("url rejected", logging.FieldURL, raw, logging.FieldLayer, verdict.Layer.String())
		}
		if _, err := fmt.Fprint(out, styles.FormatVerdict(raw, verdict)); err != nil {
			return fmt.Errorf("write verdict: %w", err)
		}
	}

	if rejected > 0 {
		return fmt.Errorf("%w: %d of %d URLs rejected", ErrFindings, rejected, len(urls))
	}
	return nil
}
