package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/worktally/internal/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workspace as a JSON HTTP API",
	Long: `Start the HTTP API on the configured address (http.addr in .tallyconfig,
or --addr). State lives in memory for the life of the process; use
PUT /api/snapshot or "tally export" to move it in and out.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireWorkspace(); err != nil {
			return err
		}

		addr := serveAddr
		if addr == "" && Config != nil {
			addr = Config.HTTP.Addr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Fprintf(cmd.ErrOrStderr(), "Serving worktally on http://%s/api\n", addr)
		if err := api.NewServer(Workspace).Run(ctx, addr); err != nil {
			return fmt.Errorf("running HTTP server: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides http.addr)")
	rootCmd.AddCommand(serveCmd)
}
