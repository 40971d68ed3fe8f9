// Command watchctl runs the extraction pipeline and notification channels
// from the command line, without the HTTP server or the database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/use-agent/statuswatch/app"
	"github.com/use-agent/statuswatch/config"
)

var flagLogLevel string

var rootCmd = &cobra.Command{
	Use:   "watchctl",
	Short: "watchctl checks page statuses and tests notifications",
	Long: `watchctl runs one-off status checks with the same pipeline the
statuswatch server uses, and sends test notifications through the
configured channels. Configuration comes from the WATCH_* and TWILIO_*
environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if flagLogLevel != "" {
			cfg.Log.Level = flagLogLevel
		}
		app.InitLogger(cfg.Log, os.Stderr)
		loaded = cfg
		return nil
	},
}

// loaded is set by the root command before any subcommand runs.
var loaded *config.Config

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
