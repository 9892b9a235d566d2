// Package cmd defines and implements the CLI commands for the ticketwatch executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticketwatch",
		Short: "Watches a ticket-resale event page for high value-score listings.",
		Long: `ticketwatch polls a single ticket-resale event page, parses the
rendered listing cards, and sends a Pushover notification whenever a
listing's value score crosses the configured threshold. Alerts are
de-duplicated across polling cycles for the life of the process.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; env vars suffice)")
	cmd.AddCommand(newWatchCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
