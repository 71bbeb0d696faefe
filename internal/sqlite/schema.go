package sqlite

// Schema DDL. Statements are idempotent so an existing database is opened
// in place.
const (
	createCells = `CREATE TABLE IF NOT EXISTS cells (
    region TEXT NOT NULL,
    grid_row INTEGER NOT NULL,
    grid_col INTEGER NOT NULL,
    slot INTEGER NOT NULL,
    kind INTEGER NOT NULL,
    magnitude INTEGER NOT NULL,
    PRIMARY KEY (region, grid_row, grid_col, slot)
);`

	createSnapshots = `CREATE TABLE IF NOT EXISTS snapshots (
    snapshot_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    region TEXT NOT NULL,
    grid_width INTEGER NOT NULL,
    cell_count INTEGER NOT NULL,
    payload BLOB NOT NULL,
    created_at TEXT NOT NULL,
    UNIQUE (region, name)
);`

	createCursors = `CREATE TABLE IF NOT EXISTS cursors (
    region TEXT PRIMARY KEY,
    cursor_offset INTEGER NOT NULL
);`
)

var schemaStatements = []string{
	createCells,
	createSnapshots,
	createCursors,
}

// dbFileName is the database file created inside DataDir.
const dbFileName = "cellbuf.db"
