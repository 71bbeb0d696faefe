package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// configFile holds the structure written to config.yaml by init.
type configFile struct {
	Backend    string `yaml:"backend"`
	DataDir    string `yaml:"data_dir,omitempty"`
	Region     string `yaml:"region"`
	GridWidth  int    `yaml:"grid_width"`
	AllowClose bool   `yaml:"allow_close"`
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize cellbuf storage",
		Long: "Record the resolved settings in config.yaml and create the data\n" +
			"directory and database. Existing data is kept.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}

			// loadConfig wrote the commented default; replace it with the
			// resolved settings unless the user already edited it.
			configPath := filepath.Join(a.configDir, configFileExt)
			if err := writeConfig(configPath, cfg); err != nil {
				return sysError(fmt.Errorf("write config: %w", err))
			}

			if err := a.withStore(func(types.Store, types.Config) error { return nil }); err != nil {
				return fmt.Errorf("initialize storage: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "cellbuf initialized: %s (region %s, grid %dx%d)\n",
				cfg.DataDir, cfg.Region, cfg.GridWidth, cfg.GridWidth)
			return nil
		},
	}
}

// writeConfig replaces config.yaml with cfg when the file still holds the
// default content. A file the user changed is left alone.
func writeConfig(path string, cfg types.Config) error {
	existing, err := os.ReadFile(path)
	if err == nil && string(existing) != defaultConfigYAML {
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	data, err := yaml.Marshal(&configFile{
		Backend:    cfg.Backend,
		DataDir:    cfg.DataDir,
		Region:     cfg.Region,
		GridWidth:  cfg.GridWidth,
		AllowClose: cfg.AllowClose,
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
