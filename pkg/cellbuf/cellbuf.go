// Package cellbuf opens the medium named by a Config and binds a Buffer to
// it.
package cellbuf

import (
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/cellbuf/internal/memory"
	"github.com/mesh-intelligence/cellbuf/pkg/buffer"
	"github.com/mesh-intelligence/cellbuf/pkg/sqlite"
	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// Version is the cellbuf release.
const Version = "0.3.0"

// OpenStore validates config and opens its backend.
func OpenStore(config types.Config, logger *slog.Logger) (types.Store, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch config.Backend {
	case types.BackendSQLite:
		return sqlite.Open(config, logger)
	case types.BackendMemory:
		return memory.New(config.Region), nil
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrBackendUnknown, config.Backend)
	}
}

// NewBuffer binds a Buffer to store using config's geometry and close mode.
// When store persists a cursor the Buffer resumes from it; a stored cursor
// outside the region is ignored.
func NewBuffer(store types.Store, config types.Config, logger *slog.Logger) (*buffer.Buffer, error) {
	config = config.WithDefaults()
	offset, err := store.LoadCursor()
	if err != nil {
		return nil, fmt.Errorf("loading cursor: %w", err)
	}
	if offset < 0 || offset > types.Capacity(config.GridWidth) {
		offset = 0
	}
	return buffer.New(store, buffer.Options{
		GridWidth:  config.GridWidth,
		AllowClose: config.AllowClose,
		Offset:     offset,
		Logger:     logger,
	})
}
