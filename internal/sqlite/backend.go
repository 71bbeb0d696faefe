// Package sqlite implements a durable cell Medium on SQLite.
//
// One database file holds any number of regions. Each Medium is bound to
// one region and reads and writes only that region's rows. Empty cells have
// no row: writing the empty state deletes it.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// Options configures Open.
type Options struct {
	// Logger receives debug records for opens and snapshot operations.
	// Nil discards them.
	Logger *slog.Logger
}

// Medium implements types.Store over a SQLite database.
type Medium struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	region string
	logger *slog.Logger
}

// Open creates DataDir if needed, opens (or creates) the database inside it
// and applies the schema. Existing cells, snapshots and cursors are kept.
func Open(config types.Config, opts Options) (*Medium, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dbPath, err)
	}
	// A single connection serializes writers and keeps transactions simple.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying schema: %w", err)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Debug("sqlite medium opened", "path", dbPath, "region", config.Region)

	return &Medium{
		db:     db,
		path:   dbPath,
		region: config.Region,
		logger: logger,
	}, nil
}

// Path returns the database file path.
func (m *Medium) Path() string {
	return m.path
}

// Region returns the region the medium is bound to.
func (m *Medium) Region() string {
	return m.region
}

// Close releases the database handle. Close is idempotent.
func (m *Medium) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	return err
}

// Cell implements types.Medium.
func (m *Medium) Cell(addr types.Address) (types.CellState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.db == nil {
		return types.CellState{}, types.ErrMediumClosed
	}

	var state types.CellState
	err := m.db.QueryRow(
		`SELECT kind, magnitude FROM cells WHERE region = ? AND grid_row = ? AND grid_col = ? AND slot = ?`,
		m.region, addr.Row, addr.Col, addr.Slot,
	).Scan(&state.Kind, &state.Magnitude)
	if errors.Is(err, sql.ErrNoRows) {
		return types.CellState{}, nil
	}
	if err != nil {
		return types.CellState{}, fmt.Errorf("reading cell %s: %w", addr, err)
	}
	return state, nil
}

// SetCell implements types.Medium.
func (m *Medium) SetCell(addr types.Address, state types.CellState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return types.ErrMediumClosed
	}
	if err := setCell(m.db, m.region, addr, state); err != nil {
		return fmt.Errorf("writing cell %s: %w", addr, err)
	}
	return nil
}

// ClearRegion implements types.Medium.
func (m *Medium) ClearRegion(gridWidth int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return types.ErrMediumClosed
	}
	if _, err := m.db.Exec(`DELETE FROM cells WHERE region = ?`, m.region); err != nil {
		return fmt.Errorf("clearing region %s: %w", m.region, err)
	}
	return nil
}

// CellCount returns the number of non-empty cells in the region.
func (m *Medium) CellCount() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.db == nil {
		return 0, types.ErrMediumClosed
	}
	return countCells(m.db, m.region)
}

// LoadCursor implements types.CursorStore. A region without a stored cursor
// reports 0.
func (m *Medium) LoadCursor() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.db == nil {
		return 0, types.ErrMediumClosed
	}

	var offset int
	err := m.db.QueryRow(`SELECT cursor_offset FROM cursors WHERE region = ?`, m.region).Scan(&offset)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading cursor: %w", err)
	}
	return offset, nil
}

// SaveCursor implements types.CursorStore.
func (m *Medium) SaveCursor(offset int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return types.ErrMediumClosed
	}
	_, err := m.db.Exec(
		`INSERT INTO cursors (region, cursor_offset) VALUES (?, ?)
         ON CONFLICT(region) DO UPDATE SET cursor_offset = excluded.cursor_offset`,
		m.region, offset,
	)
	if err != nil {
		return fmt.Errorf("writing cursor: %w", err)
	}
	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func setCell(q querier, region string, addr types.Address, state types.CellState) error {
	if state.Empty() {
		_, err := q.Exec(
			`DELETE FROM cells WHERE region = ? AND grid_row = ? AND grid_col = ? AND slot = ?`,
			region, addr.Row, addr.Col, addr.Slot,
		)
		return err
	}
	_, err := q.Exec(
		`INSERT INTO cells (region, grid_row, grid_col, slot, kind, magnitude) VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(region, grid_row, grid_col, slot) DO UPDATE SET kind = excluded.kind, magnitude = excluded.magnitude`,
		region, addr.Row, addr.Col, addr.Slot, state.Kind, state.Magnitude,
	)
	return err
}

func countCells(q querier, region string) (int, error) {
	var n int
	if err := q.QueryRow(`SELECT COUNT(*) FROM cells WHERE region = ?`, region).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cells: %w", err)
	}
	return n, nil
}

// generateUUID generates a new UUID v7 for snapshot IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
