package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cellbuf/pkg/cellbuf"
)

const modulePath = "github.com/mesh-intelligence/cellbuf"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the cellbuf version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "cellbuf v%s\nmodule: %s\n", cellbuf.Version, modulePath)
			return nil
		},
	}
}
