package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/worktally/internal/core"
	"github.com/valter-silva-au/worktally/internal/observability"
)

var (
	metricsJSON  bool
	metricsSince string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display task and timer metrics",
	Long: `Display aggregated metrics derived from the event log.

Metrics include task creation, update and deletion counts, timer sessions,
and the time logged in total and per task.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (observability may be disabled)")
		}

		sinceTime, err := observability.ParseSince(metricsSince, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		out := cmd.OutOrStdout()
		if metricsJSON {
			data, err := json.MarshalIndent(metrics, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting metrics as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintf(out, "Metrics (since %s)\n\n", sinceTime.Format("2006-01-02"))
		fmt.Fprintf(out, "  %-24s %d\n", "Events recorded:", metrics.EventCount)
		fmt.Fprintf(out, "  %-24s %d\n", "Tasks created:", metrics.TasksCreated)
		fmt.Fprintf(out, "  %-24s %d\n", "Tasks updated:", metrics.TasksUpdated)
		fmt.Fprintf(out, "  %-24s %d\n", "Tasks deleted:", metrics.TasksDeleted)
		fmt.Fprintf(out, "  %-24s %d\n", "Timer sessions:", metrics.TimerSessions)
		fmt.Fprintf(out, "  %-24s %d\n", "Timers discarded:", metrics.TimersDiscarded)
		fmt.Fprintf(out, "  %-24s %s\n", "Time logged:", core.FormatDuration(metrics.TimeLogged))

		if len(metrics.TimeByTask) > 0 {
			fmt.Fprintln(out, "\n  Time by task:")
			for _, id := range sortedTaskIDs(metrics.TimeByTask) {
				fmt.Fprintf(out, "    %-40s %s\n", taskLabel(id), core.FormatDuration(metrics.TimeByTask[id]))
			}
		}

		if metrics.OldestEvent != nil {
			fmt.Fprintf(out, "\n  %-24s %s\n", "Oldest event:", metrics.OldestEvent.Format(time.RFC3339))
		}
		if metrics.NewestEvent != nil {
			fmt.Fprintf(out, "  %-24s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
		}

		return nil
	},
}

// sortedTaskIDs orders tasks by logged time, largest first.
func sortedTaskIDs(byTask map[string]time.Duration) []string {
	ids := make([]string, 0, len(byTask))
	for id := range byTask {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if byTask[ids[i]] != byTask[ids[j]] {
			return byTask[ids[i]] > byTask[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

// taskLabel shows the task name when the task still exists.
func taskLabel(id string) string {
	if Workspace != nil {
		if t, err := Workspace.Task(id); err == nil {
			return t.Name
		}
	}
	return id
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output metrics as JSON")
	metricsCmd.Flags().StringVar(&metricsSince, "since", "7d", "Time window for metrics (e.g. 7d, 30d, 24h)")
	rootCmd.AddCommand(metricsCmd)
}
