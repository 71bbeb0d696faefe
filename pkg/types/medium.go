package types

import "time"

// Medium is the persistent grid a Buffer stores its bytes in. A Medium is
// bound to one region; every Address it receives lies inside that region.
//
// Implementations must be safe to call from one goroutine at a time. They
// need not coordinate multiple writers: two Buffers over the same region
// overwrite each other's cells without detection.
type Medium interface {
	// Cell returns the state stored at addr, or the zero CellState when
	// nothing has ever been written there.
	Cell(addr Address) (CellState, error)

	// SetCell stores state at addr, overwriting any prior contents.
	SetCell(addr Address, state CellState) error

	// ClearRegion resets every address of a gridWidth-wide region to empty.
	ClearRegion(gridWidth int) error
}

// Snapshot describes a named copy of a region.
type Snapshot struct {
	SnapshotID string    // UUID v7, generated on save.
	Name       string    // Unique, non-blank.
	Region     string    // Region the snapshot was taken from.
	GridWidth  int       // Grid width of the region at save time.
	CellCount  int       // Number of non-empty cells captured.
	CreatedAt  time.Time // Timestamp of the save.
}

// Snapshotter is implemented by media that can save and restore whole
// regions under a name.
type Snapshotter interface {
	// SaveSnapshot copies the region under name. Returns ErrSnapshotExists if
	// the name is taken and override is false.
	SaveSnapshot(name string, gridWidth int, override bool) (Snapshot, error)

	// LoadSnapshot writes the named snapshot back into the region. Returns
	// ErrSnapshotNotFound for an unknown name and ErrRegionNotEmpty if the
	// region currently holds data.
	LoadSnapshot(name string, gridWidth int) (Snapshot, error)

	// DeleteSnapshot removes the named snapshot.
	DeleteSnapshot(name string) error

	// ListSnapshots returns all snapshots ordered by name.
	ListSnapshots() ([]Snapshot, error)
}

// CursorStore is implemented by media that persist a Buffer cursor between
// processes.
type CursorStore interface {
	LoadCursor() (int, error)
	SaveCursor(offset int) error
}

// Store is a Medium bound to a backend that also keeps snapshots and the
// cursor. Close releases the backend; later calls return ErrMediumClosed.
type Store interface {
	Medium
	Snapshotter
	CursorStore
	Close() error
}

// Exporter is implemented by media that can dump a region to a JSONL file
// and restore it.
type Exporter interface {
	// ExportJSONL writes one record per non-empty cell and returns the count.
	ExportJSONL(path string) (int, error)

	// ImportJSONL loads records into an empty region. Returns
	// ErrRegionNotEmpty if the region holds data.
	ImportJSONL(path string, gridWidth int) (int, error)
}
