package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/worktally/internal/observability"
)

var (
	eventsType  string
	eventsTask  string
	eventsSince string
	eventsLimit int
	eventsJSON  bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recorded events",
	Long: `List events from the event log, oldest first.

--type matches an exact event type, or a family when it ends with a dot
(--type timer.). --limit keeps the most recent events; 0 shows all.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if EventLog == nil {
			return fmt.Errorf("event log not initialized")
		}

		since, err := observability.ParseSince(eventsSince, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}
		filter := observability.EventFilter{Since: &since, TaskID: eventsTask}
		if strings.HasSuffix(eventsType, ".") {
			filter.Prefix = eventsType
		} else {
			filter.Type = eventsType
		}

		events, err := EventLog.Read(filter)
		if err != nil {
			return fmt.Errorf("reading events: %w", err)
		}
		if eventsLimit > 0 && len(events) > eventsLimit {
			events = events[len(events)-eventsLimit:]
		}

		out := cmd.OutOrStdout()
		if eventsJSON {
			if events == nil {
				events = []observability.Event{}
			}
			data, err := json.MarshalIndent(events, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting events as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if len(events) == 0 {
			fmt.Fprintln(out, "No events found.")
			return nil
		}
		for _, e := range events {
			line := fmt.Sprintf("%s  %-5s %-22s %s", e.Time.Local().Format("2006-01-02 15:04:05"), e.Level, e.Type, e.Message)
			if id := e.TaskID(); id != "" {
				line += "  [" + id + "]"
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().StringVar(&eventsType, "type", "", "Event type, or a family ending in a dot")
	eventsCmd.Flags().StringVar(&eventsTask, "task", "", "Only events about this task ID")
	eventsCmd.Flags().StringVar(&eventsSince, "since", "7d", "Time window (e.g. 7d, 24h, 30d)")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 20, "Most recent events to show (0 for all)")
	eventsCmd.Flags().BoolVar(&eventsJSON, "json", false, "Output events as JSON")
	_ = eventsCmd.RegisterFlagCompletionFunc("task", completeTaskIDs)
	rootCmd.AddCommand(eventsCmd)
}
