package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/worktally/internal/core"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize tasks and workload",
	Long: `Print the headline numbers of the workspace: tasks in progress, due today,
overdue and completed, total logged time, and the open work of each user.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireWorkspace(); err != nil {
			return err
		}

		stats := Workspace.Stats()
		out := cmd.OutOrStdout()

		if statsJSON {
			data, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting stats as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintf(out, "  %-16s %d\n", "Tasks:", stats.Total)
		fmt.Fprintf(out, "  %-16s %d\n", "In progress:", stats.InProgress)
		fmt.Fprintf(out, "  %-16s %d\n", "Due today:", stats.DueToday)
		fmt.Fprintf(out, "  %-16s %d\n", "Overdue:", stats.Overdue)
		fmt.Fprintf(out, "  %-16s %d\n", "Completed:", stats.Completed)
		fmt.Fprintf(out, "  %-16s %s\n", "Time logged:", core.FormatDuration(stats.TimeLogged))

		if len(stats.Workload) > 0 {
			fmt.Fprintln(out, "\n  Workload:")
			for _, u := range stats.Workload {
				fmt.Fprintf(out, "    %-20s %d to do, %d in progress\n", u.Name, u.ToDo, u.InProgress)
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output stats as JSON")
	rootCmd.AddCommand(statsCmd)
}
