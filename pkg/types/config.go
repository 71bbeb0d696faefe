package types

import "errors"

// Config holds medium selection and buffer geometry.
type Config struct {
	Backend    string `json:"backend" yaml:"backend"`
	DataDir    string `json:"data_dir" yaml:"data_dir"`
	Region     string `json:"region" yaml:"region"`
	GridWidth  int    `json:"grid_width" yaml:"grid_width"`
	AllowClose bool   `json:"allow_close" yaml:"allow_close"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Defaults applied by WithDefaults.
const (
	DefaultRegion    = "default"
	DefaultGridWidth = 16
	MaxGridWidth     = 1024
)

// Config validation errors.
var (
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrRegionEmpty      = errors.New("region must not be empty")
	ErrGridWidthInvalid = errors.New("grid width must be between 1 and 1024")
)

var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendMemory: true,
}

// WithDefaults returns a copy of c with the region and grid width filled in
// when unset.
func (c Config) WithDefaults() Config {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.GridWidth == 0 {
		c.GridWidth = DefaultGridWidth
	}
	return c
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Region == "" {
		return ErrRegionEmpty
	}
	if c.GridWidth < 1 || c.GridWidth > MaxGridWidth {
		return ErrGridWidthInvalid
	}
	return nil
}
