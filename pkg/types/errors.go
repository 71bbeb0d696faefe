package types

import (
	"errors"
	"fmt"
)

// Buffer operation errors.
var (
	ErrClosedBuffer   = errors.New("buffer is closed")
	ErrOutOfRange     = errors.New("offset out of range")
	ErrOverflow       = errors.New("buffer overflow: not enough space")
	ErrRange          = errors.New("value out of range for type")
	ErrOutOfBounds    = errors.New("nothing written at offset")
	ErrCorruptCell    = errors.New("cell holds an unknown state")
	ErrInvalidCharset = errors.New("invalid charset")
	ErrMalformedText  = errors.New("malformed encoded text")
)

// Close mode errors.
var (
	ErrCloseDisabled = errors.New("close is not enabled for this buffer")
	ErrAlreadyEmpty  = errors.New("buffer is already clear")
)

// Snapshot errors.
var (
	ErrInvalidName      = errors.New("snapshot name must not be blank")
	ErrSnapshotExists   = errors.New("snapshot already exists")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrRegionNotEmpty   = errors.New("region already holds data")
	ErrNotSupported     = errors.New("operation not supported by medium")
)

// Medium lifecycle errors.
var (
	ErrMediumClosed = errors.New("medium is closed")
	ErrBadRecord    = errors.New("invalid cell record")
)

// PartialWriteError reports a medium failure after some bytes of a value
// were already stored. Written bytes are not rolled back.
type PartialWriteError struct {
	Offset  int   // Offset of the first byte of the value.
	Written int   // Bytes stored before the failure.
	Total   int   // Bytes the value needed.
	Err     error // Error returned by the medium.
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial write at offset %d: stored %d of %d bytes: %v", e.Offset, e.Written, e.Total, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}
