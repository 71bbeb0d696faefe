package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// SaveSnapshot implements types.Snapshotter. The region's cells are stored
// as one CBOR payload; overriding replaces the old snapshot and its ID.
func (m *Medium) SaveSnapshot(name string, gridWidth int, override bool) (types.Snapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Snapshot{}, types.ErrInvalidName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return types.Snapshot{}, types.ErrMediumClosed
	}

	tx, err := m.db.Begin()
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRow(`SELECT snapshot_id FROM snapshots WHERE region = ? AND name = ?`, m.region, name).Scan(&existing)
	switch {
	case err == nil && !override:
		return types.Snapshot{}, fmt.Errorf("%w: %q", types.ErrSnapshotExists, name)
	case err == nil:
		if _, err := tx.Exec(`DELETE FROM snapshots WHERE snapshot_id = ?`, existing); err != nil {
			return types.Snapshot{}, fmt.Errorf("replacing snapshot: %w", err)
		}
	case !errors.Is(err, sql.ErrNoRows):
		return types.Snapshot{}, fmt.Errorf("looking up snapshot: %w", err)
	}

	records, err := regionRecords(tx, m.region)
	if err != nil {
		return types.Snapshot{}, err
	}
	payload, err := encodeRecords(records)
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("encoding snapshot: %w", err)
	}

	snap := types.Snapshot{
		SnapshotID: generateUUID(),
		Name:       name,
		Region:     m.region,
		GridWidth:  gridWidth,
		CellCount:  len(records),
		CreatedAt:  time.Now().UTC(),
	}
	_, err = tx.Exec(
		`INSERT INTO snapshots (snapshot_id, name, region, grid_width, cell_count, payload, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.SnapshotID, snap.Name, snap.Region, snap.GridWidth, snap.CellCount, payload,
		snap.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("inserting snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return types.Snapshot{}, fmt.Errorf("commit: %w", err)
	}

	m.logger.Debug("snapshot saved", "name", name, "id", snap.SnapshotID, "cells", snap.CellCount)
	return snap, nil
}

// LoadSnapshot implements types.Snapshotter. Cells outside a gridWidth-wide
// grid are dropped.
func (m *Medium) LoadSnapshot(name string, gridWidth int) (types.Snapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Snapshot{}, types.ErrInvalidName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return types.Snapshot{}, types.ErrMediumClosed
	}

	tx, err := m.db.Begin()
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	snap, payload, err := m.lookupSnapshot(tx, name)
	if err != nil {
		return types.Snapshot{}, err
	}

	n, err := countCells(tx, m.region)
	if err != nil {
		return types.Snapshot{}, err
	}
	if n > 0 {
		return types.Snapshot{}, types.ErrRegionNotEmpty
	}

	records, err := decodeRecords(payload)
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("decoding snapshot %q: %w", name, err)
	}
	for _, r := range records {
		if r.Row >= gridWidth || r.Col >= gridWidth {
			continue
		}
		if err := setCell(tx, m.region, r.address(), r.state()); err != nil {
			return types.Snapshot{}, fmt.Errorf("restoring cell %s: %w", r.address(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return types.Snapshot{}, fmt.Errorf("commit: %w", err)
	}

	m.logger.Debug("snapshot loaded", "name", name, "id", snap.SnapshotID)
	return snap, nil
}

// DeleteSnapshot implements types.Snapshotter.
func (m *Medium) DeleteSnapshot(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.ErrInvalidName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return types.ErrMediumClosed
	}

	res, err := m.db.Exec(`DELETE FROM snapshots WHERE region = ? AND name = ?`, m.region, name)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", types.ErrSnapshotNotFound, name)
	}

	m.logger.Debug("snapshot deleted", "name", name)
	return nil
}

// ListSnapshots implements types.Snapshotter.
func (m *Medium) ListSnapshots() ([]types.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.db == nil {
		return nil, types.ErrMediumClosed
	}

	rows, err := m.db.Query(
		`SELECT snapshot_id, name, region, grid_width, cell_count, created_at
         FROM snapshots WHERE region = ? ORDER BY name`,
		m.region,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []types.Snapshot
	for rows.Next() {
		var snap types.Snapshot
		var createdAt string
		if err := rows.Scan(&snap.SnapshotID, &snap.Name, &snap.Region, &snap.GridWidth, &snap.CellCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return out, nil
}

func (m *Medium) lookupSnapshot(q querier, name string) (types.Snapshot, []byte, error) {
	snap := types.Snapshot{Name: name, Region: m.region}
	var createdAt string
	var payload []byte
	err := q.QueryRow(
		`SELECT snapshot_id, grid_width, cell_count, payload, created_at
         FROM snapshots WHERE region = ? AND name = ?`,
		m.region, name,
	).Scan(&snap.SnapshotID, &snap.GridWidth, &snap.CellCount, &payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Snapshot{}, nil, fmt.Errorf("%w: %q", types.ErrSnapshotNotFound, name)
	}
	if err != nil {
		return types.Snapshot{}, nil, fmt.Errorf("looking up snapshot: %w", err)
	}
	snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return snap, payload, nil
}
