// Package memory implements a process-local Medium. It backs tests and the
// "memory" backend, where a region lives only as long as the process.
package memory

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// Medium stores cells in a map keyed by Address.
type Medium struct {
	mu        sync.RWMutex
	region    string
	cells     map[types.Address]types.CellState
	snapshots map[string]snapshot
	cursor    int

	// failAfter, when non-negative, makes SetCell fail once that many
	// further writes have succeeded. Used to exercise partial writes.
	failAfter int
}

type snapshot struct {
	meta  types.Snapshot
	cells map[types.Address]types.CellState
}

// ErrInjected is returned by SetCell after FailAfter triggers.
var ErrInjected = errors.New("memory: injected write failure")

// New returns an empty in-memory medium for region.
func New(region string) *Medium {
	if region == "" {
		region = types.DefaultRegion
	}
	return &Medium{
		region:    region,
		cells:     make(map[types.Address]types.CellState),
		snapshots: make(map[string]snapshot),
		failAfter: -1,
	}
}

// Region returns the region name the medium was created for.
func (m *Medium) Region() string {
	return m.region
}

// Cell implements types.Medium.
func (m *Medium) Cell(addr types.Address) (types.CellState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cells[addr], nil
}

// SetCell implements types.Medium.
func (m *Medium) SetCell(addr types.Address, state types.CellState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAfter == 0 {
		return ErrInjected
	}
	if m.failAfter > 0 {
		m.failAfter--
	}

	if state.Empty() {
		delete(m.cells, addr)
		return nil
	}
	m.cells[addr] = state
	return nil
}

// ClearRegion implements types.Medium. Cells outside the grid are dropped
// too, since the map holds nothing but this region.
func (m *Medium) ClearRegion(gridWidth int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.cells)
	return nil
}

// Len returns the number of non-empty cells.
func (m *Medium) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cells)
}

// FailAfter arms an injected failure: the next n SetCell calls succeed and
// every later one returns ErrInjected. A negative n disarms it.
func (m *Medium) FailAfter(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
}

// LoadCursor implements types.CursorStore.
func (m *Medium) LoadCursor() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cursor, nil
}

// SaveCursor implements types.CursorStore.
func (m *Medium) SaveCursor(offset int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursor = offset
	return nil
}

// SaveSnapshot implements types.Snapshotter.
func (m *Medium) SaveSnapshot(name string, gridWidth int, override bool) (types.Snapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Snapshot{}, types.ErrInvalidName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.snapshots[name]; ok && !override {
		return types.Snapshot{}, fmt.Errorf("%w: %q", types.ErrSnapshotExists, name)
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	meta := types.Snapshot{
		SnapshotID: id.String(),
		Name:       name,
		Region:     m.region,
		GridWidth:  gridWidth,
		CellCount:  len(m.cells),
		CreatedAt:  time.Now().UTC(),
	}
	m.snapshots[name] = snapshot{meta: meta, cells: maps.Clone(m.cells)}
	return meta, nil
}

// LoadSnapshot implements types.Snapshotter.
func (m *Medium) LoadSnapshot(name string, gridWidth int) (types.Snapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Snapshot{}, types.ErrInvalidName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snap, ok := m.snapshots[name]
	if !ok {
		return types.Snapshot{}, fmt.Errorf("%w: %q", types.ErrSnapshotNotFound, name)
	}
	if len(m.cells) > 0 {
		return types.Snapshot{}, types.ErrRegionNotEmpty
	}

	// Cells beyond a narrower grid are dropped.
	for addr, state := range snap.cells {
		if addr.Row >= gridWidth || addr.Col >= gridWidth {
			continue
		}
		m.cells[addr] = state
	}
	return snap.meta, nil
}

// DeleteSnapshot implements types.Snapshotter.
func (m *Medium) DeleteSnapshot(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.ErrInvalidName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.snapshots[name]; !ok {
		return fmt.Errorf("%w: %q", types.ErrSnapshotNotFound, name)
	}
	delete(m.snapshots, name)
	return nil
}

// ListSnapshots implements types.Snapshotter.
func (m *Medium) ListSnapshots() ([]types.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := slices.Sorted(maps.Keys(m.snapshots))
	out := make([]types.Snapshot, 0, len(names))
	for _, name := range names {
		out = append(out, m.snapshots[name].meta)
	}
	return out, nil
}

// Close implements types.Store. The cells stay readable; a memory medium
// owns nothing to release.
func (m *Medium) Close() error {
	return nil
}
