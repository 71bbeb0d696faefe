package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

func exporter(store types.Store) (types.Exporter, error) {
	ex, ok := store.(types.Exporter)
	if !ok {
		return nil, types.ErrNotSupported
	}
	return ex, nil
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the region's cells to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store types.Store, _ types.Config) error {
				ex, err := exporter(store)
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}
				n, err := ex.ExportJSONL(args[0])
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d cells to %s\n", n, args[0])
				return nil
			})
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load cells from a JSONL file into the empty region",
		Long: "Load cells from a JSONL file written by export. The region must be\n" +
			"empty. Every record is checked against the grid before any is stored.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store types.Store, cfg types.Config) error {
				ex, err := exporter(store)
				if err != nil {
					return fmt.Errorf("import: %w", err)
				}
				n, err := ex.ImportJSONL(args[0], cfg.GridWidth)
				if err != nil {
					return fmt.Errorf("import: %w", err)
				}
				if err := store.SaveCursor(0); err != nil {
					return sysError(fmt.Errorf("import: reset cursor: %w", err))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d cells from %s\n", n, args[0])
				return nil
			})
		},
	}
}
