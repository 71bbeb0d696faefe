package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend    = "backend"
	cfgKeyDataDir    = "data_dir"
	cfgKeyRegion     = "region"
	cfgKeyGridWidth  = "grid_width"
	cfgKeyAllowClose = "allow_close"
	cfgKeyLogLevel   = "log_level"
	cfgKeyLogFormat  = "log_format"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# cellbuf configuration

# Backend selection: sqlite or memory
backend: sqlite

# Region inside the data directory
region: default

# Rows and columns of the cell grid; capacity is grid_width^2 * 27 bytes
grid_width: 16

# Enable the close command
allow_close: false

# Data directory (optional; overridable by --data-dir flag)
# data_dir:
`

// flagKeys maps persistent flags to the config keys they override when set.
var flagKeys = map[string]string{
	"backend":     cfgKeyBackend,
	"region":      cfgKeyRegion,
	"grid-width":  cfgKeyGridWidth,
	"allow-close": cfgKeyAllowClose,
	"log-level":   cfgKeyLogLevel,
	"log-format":  cfgKeyLogFormat,
}

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyRegion, types.DefaultRegion)
	v.SetDefault(cfgKeyGridWidth, types.DefaultGridWidth)
	v.SetDefault(cfgKeyAllowClose, false)
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetDefault(cfgKeyLogFormat, "text")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// bindFlags lets explicitly set persistent flags win over config.yaml.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	return nil
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// newLogger builds the CLI logger on w. Libraries log at debug, so the
// default warn level keeps normal runs quiet.
func newLogger(level, format string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: want text or json", format)
	}
}
