package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	settingsPath string
	verbosity    int
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tiktok-comments",
		Short: "Scrapes TikTok comment threads into JSON/CSV files.",
		Long: `tiktok-comments retrieves paginated comment data for TikTok videos
through the platform's web API, normalizes the loosely structured
payloads into a stable schema, and exports the results as JSON and/or
CSV files. Jobs are supplied as a JSON list and run sequentially; each
job degrades gracefully on upstream failures.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&settingsPath, "settings", "s", "",
		"path to the JSON settings file (defaults apply when omitted)")
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase logging verbosity (use -v or -vv)")

	cmd.AddCommand(newScrapeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
