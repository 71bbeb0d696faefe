package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cellbuf/internal/driver"
	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// errCommandsFailed reports that a script finished with failing lines.
var errCommandsFailed = errors.New("commands failed")

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run [file]",
		Short: "Execute commands line by line from a file or stdin",
		Long: "Execute one driver command per line against a single buffer. Blank\n" +
			"lines and lines starting with # are skipped. A failing line is\n" +
			"reported on stderr and the script continues.\n\n" + driver.Help(),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return sysError(err)
				}
				defer f.Close()
				in = f
			}
			return a.withDriver(func(d *driver.Driver, _ types.Store, _ types.Config) error {
				return runScript(cmd.Context(), d, in, cmd.OutOrStdout(), cmd.ErrOrStderr())
			})
		},
	}
}

// runScript feeds each line of r to d.Run and prints the results. Outputs go
// to out and errors to errOut prefixed with the line number.
func runScript(ctx context.Context, d *driver.Driver, r io.Reader, out, errOut io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	results := make(chan driver.Result)
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx, lines, results) }()

	var lineNo, failed int
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		select {
		case lines <- scanner.Text():
		case err := <-done:
			return err
		}
		var res driver.Result
		select {
		case res = <-results:
		case err := <-done:
			return err
		}
		if res.Err != nil {
			failed++
			fmt.Fprintf(errOut, "line %d: %v\n", lineNo, res.Err)
			continue
		}
		printOutput(out, res.Output)
	}
	close(lines)
	if err := <-done; err != nil {
		return err
	}
	if err := scanner.Err(); err != nil {
		return sysError(fmt.Errorf("read commands: %w", err))
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d lines", errCommandsFailed, failed, lineNo)
	}
	return nil
}
