// Package cli implements the cellbuf command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/cellbuf/internal/driver"
	"github.com/mesh-intelligence/cellbuf/internal/paths"
	"github.com/mesh-intelligence/cellbuf/pkg/cellbuf"
	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir  string
	dataDir    string
	backend    string
	region     string
	gridWidth  int
	allowClose bool
	logLevel   string
	logFormat  string
}

// app is the state one invocation shares between the root command and its
// subcommands.
type app struct {
	flags     rootFlags
	configDir string
	viper     *viper.Viper
	logger    *slog.Logger
}

// NewRootCmd creates the top-level "cellbuf" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{logger: slog.New(slog.DiscardHandler)}

	root := &cobra.Command{
		Use:   "cellbuf",
		Short: "Typed binary storage on a grid of cells",
		Long: "cellbuf stores booleans, integers, floats and strings as bytes in a\n" +
			"grid of cells, one cell per byte, behind a persistent cursor.",
		Version: cellbuf.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/"+paths.DefaultDataDirName+")")
	pf.StringVar(&a.flags.backend, "backend", types.BackendSQLite, "storage backend (sqlite, memory)")
	pf.StringVar(&a.flags.region, "region", types.DefaultRegion, "region name inside the data directory")
	pf.IntVar(&a.flags.gridWidth, "grid-width", types.DefaultGridWidth, "rows and columns of the cell grid")
	pf.BoolVar(&a.flags.allowClose, "allow-close", false, "enable the close command")
	pf.StringVar(&a.flags.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVar(&a.flags.logFormat, "log-format", "text", "log format (text, json)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(a.bufferCommands()...)
	root.AddCommand(newSnapshotCmd(a))
	root.AddCommand(newExportCmd(a), newImportCmd(a))
	root.AddCommand(newRunCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// setup loads config.yaml and builds the logger. The version command needs
// neither.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	if err := bindFlags(v, cmd); err != nil {
		return sysError(err)
	}

	logger, err := newLogger(v.GetString(cfgKeyLogLevel), v.GetString(cfgKeyLogFormat), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.configDir = configDir
	a.viper = v
	a.logger = logger
	return nil
}

// config assembles the medium configuration from flags, config.yaml and
// environment.
func (a *app) config() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.viper.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	cfg := types.Config{
		Backend:    a.viper.GetString(cfgKeyBackend),
		DataDir:    dataDir,
		Region:     a.viper.GetString(cfgKeyRegion),
		GridWidth:  a.viper.GetInt(cfgKeyGridWidth),
		AllowClose: a.viper.GetBool(cfgKeyAllowClose),
	}.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// withStore opens the configured store for the duration of fn.
func (a *app) withStore(fn func(store types.Store, cfg types.Config) error) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}
	store, err := cellbuf.OpenStore(cfg, a.logger)
	if err != nil {
		return sysError(fmt.Errorf("open store: %w", err))
	}
	defer store.Close()
	return fn(store, cfg)
}

// withDriver binds a Buffer resuming the stored cursor and runs fn with a
// Driver over it.
func (a *app) withDriver(fn func(d *driver.Driver, store types.Store, cfg types.Config) error) error {
	return a.withStore(func(store types.Store, cfg types.Config) error {
		buf, err := cellbuf.NewBuffer(store, cfg, a.logger)
		if err != nil {
			return sysError(err)
		}
		d := driver.New(buf, driver.Config{Store: store, Logger: a.logger})
		return fn(d, store, cfg)
	})
}

// systemError marks failures of the environment rather than of the request.
type systemError struct {
	err error
}

func (e *systemError) Error() string { return e.err.Error() }
func (e *systemError) Unwrap() error { return e.err }

func sysError(err error) error {
	if err == nil {
		return nil
	}
	return &systemError{err: err}
}

// exitCode maps an error to exitSysError for environment and medium
// failures and exitUserError for everything else.
func exitCode(err error) int {
	var se *systemError
	var pw *types.PartialWriteError
	var pe *fs.PathError
	switch {
	case err == nil:
		return exitSuccess
	case errors.As(err, &se), errors.As(err, &pw), errors.As(err, &pe),
		errors.Is(err, types.ErrCorruptCell), errors.Is(err, types.ErrMediumClosed):
		return exitSysError
	default:
		return exitUserError
	}
}

// printOutput writes out followed by a newline unless it is empty.
func printOutput(w io.Writer, out string) {
	if out != "" {
		fmt.Fprintln(w, out)
	}
}
