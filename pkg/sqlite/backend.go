// Package sqlite provides the public API for the SQLite cell medium.
// This package exposes the factory function for opening a durable medium
// while keeping implementation details internal.
package sqlite

import (
	"log/slog"

	"github.com/mesh-intelligence/cellbuf/internal/sqlite"
	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// Open opens the database under config.DataDir and binds it to
// config.Region. The returned store also implements types.Exporter.
//
// Example:
//
//	store, err := sqlite.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".cellbuf",
//	    Region:  "overworld",
//	}, nil)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
func Open(config types.Config, logger *slog.Logger) (types.Store, error) {
	m, err := sqlite.Open(config, sqlite.Options{Logger: logger})
	if err != nil {
		return nil, err
	}
	return m, nil
}
