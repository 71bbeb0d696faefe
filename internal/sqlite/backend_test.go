// Tests for the SQLite cell medium.
package sqlite

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// openMedium opens a medium over a fresh data dir and closes it on cleanup.
func openMedium(t *testing.T, dataDir, region string) *Medium {
	t.Helper()
	m, err := Open(types.Config{
		Backend: types.BackendSQLite,
		DataDir: dataDir,
		Region:  region,
	}, Options{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestOpen_CreatesDatabase(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "data")
	m := openMedium(t, dataDir, "")

	if _, err := os.Stat(filepath.Join(dataDir, dbFileName)); err != nil {
		t.Errorf("%s not created: %v", dbFileName, err)
	}
	if m.Region() != types.DefaultRegion {
		t.Errorf("expected region %q, got %q", types.DefaultRegion, m.Region())
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	_, err := Open(types.Config{DataDir: t.TempDir()}, Options{})
	if !errors.Is(err, types.ErrBackendEmpty) {
		t.Errorf("expected ErrBackendEmpty, got %v", err)
	}
}

func TestMedium_SetCellAndCell(t *testing.T) {
	m := openMedium(t, t.TempDir(), "r1")
	addr := types.Address{Row: 2, Col: 5, Slot: 26}

	got, err := m.Cell(addr)
	if err != nil {
		t.Fatalf("Cell failed: %v", err)
	}
	if !got.Empty() {
		t.Errorf("expected empty cell, got %v", got)
	}

	want := types.CellState{Kind: types.KindD, Magnitude: 63}
	if err := m.SetCell(addr, want); err != nil {
		t.Fatalf("SetCell failed: %v", err)
	}
	got, err = m.Cell(addr)
	if err != nil {
		t.Fatalf("Cell failed: %v", err)
	}
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}

	// Overwrite, then erase.
	if err := m.SetCell(addr, types.CellState{Kind: types.KindZero}); err != nil {
		t.Fatalf("SetCell failed: %v", err)
	}
	got, _ = m.Cell(addr)
	if got.Kind != types.KindZero || got.Magnitude != 0 {
		t.Errorf("expected zero cell, got %v", got)
	}
	if err := m.SetCell(addr, types.CellState{}); err != nil {
		t.Fatalf("SetCell failed: %v", err)
	}
	n, err := m.CellCount()
	if err != nil {
		t.Fatalf("CellCount failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 cells after erase, got %d", n)
	}
}

func TestMedium_RegionsAreIsolated(t *testing.T) {
	dataDir := t.TempDir()
	a := openMedium(t, dataDir, "overworld")
	b := openMedium(t, dataDir, "nether")
	addr := types.Address{Slot: 1}

	if err := a.SetCell(addr, types.CellState{Kind: types.KindA, Magnitude: 3}); err != nil {
		t.Fatalf("SetCell failed: %v", err)
	}
	got, err := b.Cell(addr)
	if err != nil {
		t.Fatalf("Cell failed: %v", err)
	}
	if !got.Empty() {
		t.Errorf("region nether sees overworld's cell: %v", got)
	}

	if err := b.SetCell(addr, types.CellState{Kind: types.KindB, Magnitude: 1}); err != nil {
		t.Fatalf("SetCell failed: %v", err)
	}
	if err := a.ClearRegion(16); err != nil {
		t.Fatalf("ClearRegion failed: %v", err)
	}
	got, _ = b.Cell(addr)
	if got.Kind != types.KindB {
		t.Errorf("clearing overworld erased nether: %v", got)
	}
}

func TestMedium_PersistsAcrossOpen(t *testing.T) {
	dataDir := t.TempDir()
	addr := types.Address{Row: 1, Col: 1, Slot: 1}
	want := types.CellState{Kind: types.KindC, Magnitude: 40}

	m := openMedium(t, dataDir, "r")
	if err := m.SetCell(addr, want); err != nil {
		t.Fatalf("SetCell failed: %v", err)
	}
	if err := m.SaveCursor(123); err != nil {
		t.Fatalf("SaveCursor failed: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := openMedium(t, dataDir, "r")
	got, err := reopened.Cell(addr)
	if err != nil {
		t.Fatalf("Cell failed: %v", err)
	}
	if got != want {
		t.Errorf("expected %v after reopen, got %v", want, got)
	}
	offset, err := reopened.LoadCursor()
	if err != nil {
		t.Fatalf("LoadCursor failed: %v", err)
	}
	if offset != 123 {
		t.Errorf("expected cursor 123, got %d", offset)
	}
}

func TestMedium_CursorDefaultsToZero(t *testing.T) {
	m := openMedium(t, t.TempDir(), "r")
	offset, err := m.LoadCursor()
	if err != nil {
		t.Fatalf("LoadCursor failed: %v", err)
	}
	if offset != 0 {
		t.Errorf("expected 0, got %d", offset)
	}
	if err := m.SaveCursor(5); err != nil {
		t.Fatalf("SaveCursor failed: %v", err)
	}
	if err := m.SaveCursor(9); err != nil {
		t.Fatalf("SaveCursor failed: %v", err)
	}
	offset, _ = m.LoadCursor()
	if offset != 9 {
		t.Errorf("expected 9, got %d", offset)
	}
}

func TestMedium_Close(t *testing.T) {
	m := openMedium(t, t.TempDir(), "r")
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Idempotent.
	if err := m.Close(); err != nil {
		t.Errorf("second Close should not error, got %v", err)
	}

	if _, err := m.Cell(types.Address{}); !errors.Is(err, types.ErrMediumClosed) {
		t.Errorf("Cell: expected ErrMediumClosed, got %v", err)
	}
	if err := m.SetCell(types.Address{}, types.CellState{Kind: types.KindZero}); !errors.Is(err, types.ErrMediumClosed) {
		t.Errorf("SetCell: expected ErrMediumClosed, got %v", err)
	}
	if err := m.ClearRegion(16); !errors.Is(err, types.ErrMediumClosed) {
		t.Errorf("ClearRegion: expected ErrMediumClosed, got %v", err)
	}
	if _, err := m.ListSnapshots(); !errors.Is(err, types.ErrMediumClosed) {
		t.Errorf("ListSnapshots: expected ErrMediumClosed, got %v", err)
	}
}
