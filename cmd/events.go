package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/snapbox/internal/app"
)

var eventsCmd = &cobra.Command{
	Use:   "events <instance>",
	Short: "Display the lifecycle events of a build instance",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvents,
}

var (
	eventsRaw   bool
	eventsClear bool
)

func init() {
	eventsCmd.Flags().BoolVar(&eventsRaw, "raw", false, "Output events as JSON lines")
	eventsCmd.Flags().BoolVar(&eventsClear, "clear", false, "Delete the event log instead of showing it")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	name := args[0]
	logger := app.Default.Audit

	if eventsClear {
		if err := logger.Remove(name); err != nil {
			return fmt.Errorf("failed to remove event log: %w", err)
		}
		logSuccess("Cleared events of %s", name)
		return nil
	}

	events, err := logger.Events(name)
	if err != nil {
		return fmt.Errorf("failed to read event log: %w", err)
	}

	if len(events) == 0 {
		logInfo("No events found for instance %s", name)
		return nil
	}

	out := cmd.OutOrStdout()
	for _, e := range events {
		if eventsRaw {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to marshal event: %w", err)
			}
			fmt.Fprintln(out, string(data))
			continue
		}

		ts := e.Timestamp.Local().Format("2006-01-02 15:04:05")
		if e.Details != "" {
			fmt.Fprintf(out, "[%s] %-8s %s (%s)\n", ts, e.Type, shortID(e.Session), e.Details)
		} else {
			fmt.Fprintf(out, "[%s] %-8s %s\n", ts, e.Type, shortID(e.Session))
		}
	}

	return nil
}
