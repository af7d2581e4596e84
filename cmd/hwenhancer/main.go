package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/fr4nk3nst1ner/hwenhancer/internal/logger"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/ui"
)

// rootFlags are the persistent flags shared by every command
type rootFlags struct {
	configPath string
	debug      bool
	silence    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "hwenhancer",
		Short: "Collect and sort Hello Work job listings",
		Long: `hwenhancer - collect and sort Hello Work job listings.

Listings are read from the search result pages, optionally across every
page of the result, and kept in a session so they can be shown and sorted
by wage or shift length.

Examples:
  hwenhancer fetch "https://www.hellowork.mhlw.go.jp/kensaku/..."   # Crawl all pages
  hwenhancer open "https://www.hellowork.mhlw.go.jp/kensaku/..." --sort salary_max
  hwenhancer parse saved.html --sort hours --out sorted.html
  hwenhancer reset                                                # Forget collected listings
  hwenhancer session end                                          # Forget everything`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.PrintBanner(flags.silence)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to the config file (default: ./hwenhancer.yaml)")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&flags.silence, "silence", false, "Silence the banner")

	cmd.AddCommand(
		newOpenCmd(flags),
		newFetchCmd(flags),
		newParseCmd(flags),
		newResetCmd(flags),
		newSessionCmd(flags),
	)
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		printError(err)
		stop()
		os.Exit(1)
	}
}

func printError(err error) {
	pterm.Error.Println(err.Error())
	if hint := errors.FlattenHints(err); hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
}
