package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	tallymcp "github.com/valter-silva-au/worktally/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the tally MCP server on stdio",
	Long: `Start the tally MCP (Model Context Protocol) server on stdio transport.

The server exposes the workspace as MCP tools that AI assistants can call:
list_rows, get_task, create_task, delete_task, toggle_timer, stop_timer,
total_time, get_stats, get_metrics, get_alerts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireWorkspace(); err != nil {
			return err
		}

		srv := tallymcp.NewServer(Workspace, MetricsCalc, AlertEngine, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
