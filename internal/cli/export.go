package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/worktally/internal/storage"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the workspace to a YAML snapshot",
	Long: `Write every user, tag, custom field and task to a YAML snapshot file.
The file can be used as seed_file for a later run or sent to a running
server with PUT /api/snapshot.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireWorkspace(); err != nil {
			return err
		}

		store := storage.NewSnapshotStore(args[0])
		snap := Workspace.Snapshot()
		if err := store.Save(snap); err != nil {
			return fmt.Errorf("exporting workspace: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d task(s), %d user(s), %d tag(s), %d field(s) to %s\n",
			len(snap.Tasks), len(snap.Users), len(snap.Tags), len(snap.CustomFields), store.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
