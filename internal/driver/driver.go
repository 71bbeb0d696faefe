// Package driver runs text commands against a Buffer.
//
// Commands arrive on a channel and are executed one at a time by Run, so a
// Buffer is never touched by two goroutines. Execute runs a single line
// synchronously for callers that already own the Buffer.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/cellbuf/pkg/buffer"
	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// Driver errors.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownType    = errors.New("unknown value type")
	ErrInvalidValue   = errors.New("invalid value")
	ErrUsage          = errors.New("usage")
	ErrBadHeader      = errors.New("unexpected scenario header")
)

// Config configures a Driver.
type Config struct {
	// Store backs the snapshot commands and receives the cursor after each
	// successful command. Nil disables both.
	Store types.Store

	// Logger receives one debug record per command. Nil discards them.
	Logger *slog.Logger
}

// Driver executes commands against one Buffer.
type Driver struct {
	buf    *buffer.Buffer
	store  types.Store
	logger *slog.Logger
}

// Result is the outcome of one command handled by Run.
type Result struct {
	Line   string
	Output string
	Err    error
}

// New returns a Driver over buf.
func New(buf *buffer.Buffer, cfg Config) *Driver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Driver{buf: buf, store: cfg.Store, logger: logger}
}

// Buffer returns the Buffer the driver operates on.
func (d *Driver) Buffer() *buffer.Buffer {
	return d.buf
}

// Run executes each line received on commands and sends its Result on
// results. It returns nil when commands is closed, or the context error when
// ctx is cancelled first. Run never closes results.
func (d *Driver) Run(ctx context.Context, commands <-chan string, results chan<- Result) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-commands:
			if !ok {
				return nil
			}
			out, err := d.Execute(line)
			select {
			case results <- Result{Line: line, Output: out, Err: err}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Execute tokenizes line and runs it. Blank lines and lines starting with
// '#' do nothing.
func (d *Driver) Execute(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", nil
	}
	args, err := Tokenize(line)
	if err != nil {
		return "", err
	}
	return d.ExecuteArgs(args)
}

// ExecuteArgs runs a command given as its name followed by its arguments.
// A --help flag returns the command's usage as output.
func (d *Driver) ExecuteArgs(args []string) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	name := args[0]
	if name == "help" {
		return Help(), nil
	}
	cmd, ok := commands[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}

	out, err := cmd.run(d, args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return cmd.usage, nil
	}
	if err != nil {
		d.logger.Debug("command failed", "command", name, "error", err)
		return "", fmt.Errorf("%s: %w", name, err)
	}
	d.logger.Debug("command done", "command", name, "offset", d.buf.Offset())

	if err := d.saveCursor(); err != nil {
		return out, err
	}
	return out, nil
}

func (d *Driver) saveCursor() error {
	if d.store == nil || d.buf.Closed() {
		return nil
	}
	if err := d.store.SaveCursor(d.buf.Offset()); err != nil {
		return fmt.Errorf("saving cursor: %w", err)
	}
	return nil
}

func (d *Driver) snapshotter() (types.Snapshotter, error) {
	if d.store == nil {
		return nil, types.ErrNotSupported
	}
	return d.store, nil
}
