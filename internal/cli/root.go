package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "tally",
	Short: "worktally - hierarchical tasks with a built-in stopwatch",
	Long: `worktally (tally) manages a tree of tasks with assignees, tags, custom
fields and due dates, and tracks time spent on them with a single stopwatch.

The workspace is seeded from a YAML snapshot at start-up and served over
an HTTP API, an MCP server, a terminal dashboard and the commands below.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tally %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func requireWorkspace() error {
	if Workspace == nil {
		return fmt.Errorf("workspace not initialized")
	}
	return nil
}
