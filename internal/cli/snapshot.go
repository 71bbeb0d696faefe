package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newSnapshotCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save, restore and manage named copies of the region",
	}
	cmd.AddCommand(
		a.forwardCmd("save", "Save the region under a name", func(fs *pflag.FlagSet) {
			fs.Bool("force", false, "replace an existing snapshot")
		}),
		a.forwardCmd("load", "Restore a snapshot into the empty region", nil),
		a.forwardCmd("delete", "Delete a snapshot", nil),
		a.forwardCmd("list", "List snapshots of the region", nil),
	)
	return cmd
}
