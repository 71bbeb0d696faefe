// Package buffer implements the typed cursor over a cell Medium.
//
// A Buffer turns reads and writes of booleans, integers, floats and
// length-prefixed strings into byte runs, quantizes every byte into a
// CellState, and stores each state at the cell its offset translates to.
// Every operation validates before it touches the medium: a write rejected
// for range or space leaves both the medium and the cursor as they were.
//
// Example:
//
//	buf, err := buffer.New(medium, buffer.Options{GridWidth: 16})
//	if err != nil {
//	    return err
//	}
//	_ = buf.WriteU8(20)
//	_ = buf.WriteI32(-64, buffer.At(3), buffer.LittleEndian())
//	v, err := buf.ReadI32(buffer.At(3), buffer.LittleEndian())
package buffer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/cellbuf/internal/codec"
	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// Options configures a Buffer at construction.
type Options struct {
	// GridWidth is the row and column count of the region. Zero selects
	// types.DefaultGridWidth.
	GridWidth int

	// AllowClose enables Close. Without it Close returns ErrCloseDisabled.
	AllowClose bool

	// Offset is the initial cursor, in [0, Capacity]. A Buffer resuming a
	// region that was filled to the end starts at Capacity.
	Offset int

	// Logger receives debug records for clears, closes and partial writes.
	// Nil discards them.
	Logger *slog.Logger
}

// Buffer is a cursor over one region of a Medium.
//
// A Buffer is not safe for concurrent use, and it assumes it is the only
// writer of its region. Two Buffers over the same region silently overwrite
// each other; keeping a single writer is the caller's job.
type Buffer struct {
	medium     types.Medium
	gridWidth  int
	capacity   int
	offset     int
	allowClose bool
	closed     bool
	logger     *slog.Logger
}

// New binds a Buffer to medium with the cursor at opts.Offset.
func New(medium types.Medium, opts Options) (*Buffer, error) {
	if medium == nil {
		return nil, errors.New("buffer: nil medium")
	}
	width := opts.GridWidth
	if width == 0 {
		width = types.DefaultGridWidth
	}
	if width < 1 || width > types.MaxGridWidth {
		return nil, fmt.Errorf("%w: %d", types.ErrGridWidthInvalid, width)
	}
	capacity := types.Capacity(width)
	if opts.Offset < 0 || opts.Offset > capacity {
		return nil, fmt.Errorf("%w: initial offset %d not in [0, %d]", types.ErrOutOfRange, opts.Offset, capacity)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Buffer{
		medium:     medium,
		gridWidth:  width,
		capacity:   capacity,
		offset:     opts.Offset,
		allowClose: opts.AllowClose,
		logger:     logger,
	}, nil
}

// Capacity, GridWidth, Offset and Closed are accessors of the Buffer's own
// state and keep answering after Close. Every operation that touches the
// medium or moves the cursor fails with ErrClosedBuffer instead.

// Capacity returns the number of bytes the region holds.
func (b *Buffer) Capacity() int {
	return b.capacity
}

// GridWidth returns the configured grid width.
func (b *Buffer) GridWidth() int {
	return b.gridWidth
}

// Offset returns the cursor. After a write that fills the region it equals
// Capacity; after Close it is 0.
func (b *Buffer) Offset() int {
	return b.offset
}

// Closed reports whether Close has succeeded.
func (b *Buffer) Closed() bool {
	return b.closed
}

// SetOffset moves the cursor. Returns ErrOutOfRange unless
// 0 <= offset < Capacity.
func (b *Buffer) SetOffset(offset int) error {
	if b.closed {
		return types.ErrClosedBuffer
	}
	if err := b.checkOffset(offset); err != nil {
		return err
	}
	b.offset = offset
	return nil
}

// OffsetAddress returns the cell coordinate of the cursor, or of the offset
// given with At.
func (b *Buffer) OffsetAddress(opts ...Option) (types.Address, error) {
	c, err := b.resolve(opts)
	if err != nil {
		return types.Address{}, err
	}
	if err := b.checkOffset(c.start); err != nil {
		return types.Address{}, err
	}
	return codec.ToAddress(c.start, b.gridWidth), nil
}

// Clear empties the region and resets the cursor to 0.
func (b *Buffer) Clear() error {
	if b.closed {
		return types.ErrClosedBuffer
	}
	if err := b.medium.ClearRegion(b.gridWidth); err != nil {
		return fmt.Errorf("clear region: %w", err)
	}
	b.offset = 0
	b.logger.Debug("buffer cleared", "grid_width", b.gridWidth)
	return nil
}

// UsedBytes counts cells from offset 0 up to the first empty one.
func (b *Buffer) UsedBytes() (int, error) {
	if b.closed {
		return 0, types.ErrClosedBuffer
	}
	for off := 0; off < b.capacity; off++ {
		state, err := b.cell(off)
		if err != nil {
			return off, err
		}
		if state.Empty() {
			return off, nil
		}
	}
	return b.capacity, nil
}

// Close empties the region and makes every later operation fail with
// ErrClosedBuffer. It requires Options.AllowClose and a region that holds
// data.
func (b *Buffer) Close() error {
	if !b.allowClose {
		return types.ErrCloseDisabled
	}
	if b.closed {
		return types.ErrClosedBuffer
	}

	has, err := b.hasData()
	if err != nil {
		return err
	}
	if !has {
		return types.ErrAlreadyEmpty
	}

	if err := b.medium.ClearRegion(b.gridWidth); err != nil {
		return fmt.Errorf("clear region: %w", err)
	}
	b.closed = true
	b.offset = 0
	b.logger.Debug("buffer closed")
	return nil
}

// Remove deletes count bytes starting at the cursor (or At offset) and
// shifts the stored bytes after them left. Vacated cells become empty.
// Returns ErrOutOfBounds if nothing is stored at the start offset.
//
// A cursor after the removed bytes and no further than the end of the run
// moves back with the data; a cursor inside the removed bytes moves to their
// start. A cursor beyond the run is left alone.
func (b *Buffer) Remove(count int, opts ...Option) error {
	c, err := b.resolve(opts)
	if err != nil {
		return err
	}
	if count < 1 {
		return fmt.Errorf("%w: remove count must be positive, got %d", types.ErrRange, count)
	}
	if err := b.checkOffset(c.start); err != nil {
		return err
	}

	first, err := b.cell(c.start)
	if err != nil {
		return err
	}
	if first.Empty() {
		return fmt.Errorf("%w: nothing to remove at offset %d", types.ErrOutOfBounds, c.start)
	}

	// end is one past the last stored byte of the run containing start.
	end := c.start + 1
	for end < b.capacity {
		state, err := b.cell(end)
		if err != nil {
			return err
		}
		if state.Empty() {
			break
		}
		end++
	}
	count = min(count, end-c.start)

	for dst := c.start; dst+count < end; dst++ {
		state, err := b.cell(dst + count)
		if err != nil {
			return err
		}
		if err := b.setCell(dst, state); err != nil {
			return err
		}
	}
	for off := end - count; off < end; off++ {
		if err := b.setCell(off, types.CellState{}); err != nil {
			return err
		}
	}

	switch {
	case b.offset > end:
		// Past an empty gap; nothing after the run moved.
	case b.offset >= c.start+count:
		b.offset -= count
	case b.offset > c.start:
		b.offset = c.start
	}
	b.logger.Debug("bytes removed", "offset", c.start, "count", count)
	return nil
}

// resolve applies opts over the defaults and validates an explicit offset.
func (b *Buffer) resolve(opts []Option) (call, error) {
	if b.closed {
		return call{}, types.ErrClosedBuffer
	}
	c := call{
		start:   b.offset,
		order:   defaultOrder,
		charset: types.CharsetUTF8,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.explicit {
		if err := b.checkOffset(c.start); err != nil {
			return call{}, err
		}
	}
	return c, nil
}

func (b *Buffer) checkOffset(offset int) error {
	if offset < 0 || offset >= b.capacity {
		return fmt.Errorf("%w: %d not in [0, %d)", types.ErrOutOfRange, offset, b.capacity)
	}
	return nil
}

func (b *Buffer) hasData() (bool, error) {
	for off := 0; off < b.capacity; off++ {
		state, err := b.cell(off)
		if err != nil {
			return false, err
		}
		if !state.Empty() {
			return true, nil
		}
	}
	return false, nil
}

func (b *Buffer) cell(offset int) (types.CellState, error) {
	state, err := b.medium.Cell(codec.ToAddress(offset, b.gridWidth))
	if err != nil {
		return types.CellState{}, fmt.Errorf("read cell at offset %d: %w", offset, err)
	}
	return state, nil
}

func (b *Buffer) setCell(offset int, state types.CellState) error {
	if err := b.medium.SetCell(codec.ToAddress(offset, b.gridWidth), state); err != nil {
		return fmt.Errorf("write cell at offset %d: %w", offset, err)
	}
	return nil
}

// readBytes decodes n bytes starting at start.
func (b *Buffer) readBytes(start, n int) ([]byte, error) {
	if start+n > b.capacity {
		return nil, fmt.Errorf("%w: %d bytes at offset %d exceed capacity %d", types.ErrOutOfBounds, n, start, b.capacity)
	}
	out := make([]byte, n)
	for i := range out {
		state, err := b.cell(start + i)
		if err != nil {
			return nil, err
		}
		v, err := codec.DecodeByte(state)
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", start+i, err)
		}
		out[i] = v
	}
	return out, nil
}

// writeBytes checks space, encodes every byte, then stores the states in
// order. A medium failure part way returns *types.PartialWriteError.
func (b *Buffer) writeBytes(start int, data []byte) error {
	if b.capacity-start < len(data) {
		return fmt.Errorf("%w: %d bytes at offset %d, %d remaining", types.ErrOverflow, len(data), start, max(b.capacity-start, 0))
	}

	states := make([]types.CellState, len(data))
	for i, v := range data {
		states[i] = codec.EncodeByte(v)
	}

	for i, state := range states {
		if err := b.medium.SetCell(codec.ToAddress(start+i, b.gridWidth), state); err != nil {
			b.logger.Debug("partial write", "offset", start, "written", i, "total", len(states), "error", err)
			return &types.PartialWriteError{Offset: start, Written: i, Total: len(states), Err: err}
		}
	}
	return nil
}
