package sqlite

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// ExportJSONL implements types.Exporter. The file is replaced atomically.
func (m *Medium) ExportJSONL(path string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.db == nil {
		return 0, types.ErrMediumClosed
	}

	records, err := regionRecords(m.db, m.region)
	if err != nil {
		return 0, err
	}
	lines := make([]json.RawMessage, 0, len(records))
	for _, r := range records {
		line, err := json.Marshal(r)
		if err != nil {
			return 0, fmt.Errorf("encoding cell %s: %w", r.address(), err)
		}
		lines = append(lines, line)
	}
	if err := writeJSONL(path, lines); err != nil {
		return 0, err
	}

	m.logger.Debug("region exported", "path", path, "cells", len(records))
	return len(records), nil
}

// ImportJSONL implements types.Exporter. Blank and unparseable lines are
// skipped; a parseable record that is not a valid cell of a gridWidth-wide
// region fails the import with ErrBadRecord and nothing is written.
func (m *Medium) ImportJSONL(path string, gridWidth int) (int, error) {
	lines, err := readJSONL(path)
	if err != nil {
		return 0, err
	}

	records := make([]cellRecord, 0, len(lines))
	for i, line := range lines {
		var r cellRecord
		if err := json.Unmarshal(line, &r); err != nil {
			return 0, fmt.Errorf("%w: record %d: %v", types.ErrBadRecord, i+1, err)
		}
		if err := r.validate(gridWidth); err != nil {
			return 0, fmt.Errorf("record %d: %w", i+1, err)
		}
		records = append(records, r)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return 0, types.ErrMediumClosed
	}

	tx, err := m.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	n, err := countCells(tx, m.region)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, types.ErrRegionNotEmpty
	}
	for _, r := range records {
		if err := setCell(tx, m.region, r.address(), r.state()); err != nil {
			return 0, fmt.Errorf("importing cell %s: %w", r.address(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	m.logger.Debug("region imported", "path", path, "cells", len(records))
	return len(records), nil
}

// readJSONL reads a JSONL file and returns each non-empty, parseable line as
// a json.RawMessage.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(format string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf(format, err)
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
