package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/use-agent/statuswatch/app"
	"github.com/use-agent/statuswatch/models"
	"github.com/use-agent/statuswatch/notify"
)

var (
	flagSelector string
	flagTerm     string
	flagJSON     bool
	flagNoDemo   bool
	flagMessage  string
	flagTracker  string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Print the current status line for a page",
	Long: `Scrape fetches a page once and prints the status line a tracker
would store for it.

Examples:
  watchctl scrape https://example.com/results --term 17032
  watchctl scrape https://example.com --selector "#status"
  watchctl scrape https://example.com --selector "regex:SGPA: ([0-9.]+)"`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

var notifyCmd = &cobra.Command{
	Use:   "notify <phone>",
	Short: "Send a test notification through every configured channel",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotify,
}

func init() {
	rootCmd.AddCommand(scrapeCmd, notifyCmd)

	scrapeCmd.Flags().StringVar(&flagSelector, "selector", "", "CSS selector, or a regular expression prefixed with 'regex:'")
	scrapeCmd.Flags().StringVar(&flagTerm, "term", "", "Search term (roll number, application id, ...)")
	scrapeCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the result as JSON")
	scrapeCmd.Flags().BoolVar(&flagNoDemo, "no-demo", false, "Disable the demo sentinels for this run")

	notifyCmd.Flags().StringVar(&flagMessage, "message", "Test notification from watchctl", "Message body")
	notifyCmd.Flags().StringVar(&flagTracker, "tracker", "Test Tracker", "Tracker name shown in the message")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg := loaded
	if flagNoDemo {
		cfg.Demo.Enabled = false
	}
	pipe, err := app.NewPipeline(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	st := pipe.Scraper.Scrape(ctx, models.ScrapeRequest{
		TargetURL:  args[0],
		Selector:   flagSelector,
		SearchTerm: flagTerm,
	})

	out := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(models.ScrapeResponse{
			Result:     st.String(),
			StatusKind: st.Kind.String(),
			TargetURL:  args[0],
			SearchTerm: flagTerm,
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, st.String())
	}

	if st.IsFault() {
		return errors.New("scrape failed")
	}
	return nil
}

func runNotify(cmd *cobra.Command, args []string) error {
	cfg := loaded
	nc, err := app.ConnectNATS(cfg.Notify)
	if err != nil {
		return err
	}
	if nc != nil {
		defer nc.Close()
	}
	n := app.NewNotifier(cfg.Notify, nc)

	ctx, cancel := signalContext()
	defer cancel()

	sent := n.Deliver(ctx, &notify.Event{
		Phone:       args[0],
		TrackerName: flagTracker,
		NewStatus:   flagMessage,
	})
	if nc != nil {
		if err := nc.FlushWithContext(ctx); err != nil {
			return fmt.Errorf("flush nats: %w", err)
		}
	}
	if !sent {
		return fmt.Errorf("no channel accepted the notification (channels: %v)", n.Channels())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "notification sent to %s\n", args[0])
	return nil
}
