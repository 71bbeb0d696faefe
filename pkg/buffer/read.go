package buffer

import (
	"encoding/binary"
	"math"

	"github.com/mesh-intelligence/cellbuf/internal/codec"
)

var defaultOrder binary.ByteOrder = binary.BigEndian

// read resolves opts, decodes n bytes and advances the cursor past them.
func (b *Buffer) read(n int, opts []Option) ([]byte, call, error) {
	c, err := b.resolve(opts)
	if err != nil {
		return nil, call{}, err
	}
	data, err := b.readBytes(c.start, n)
	if err != nil {
		return nil, call{}, err
	}
	b.offset = c.start + n
	return data, c, nil
}

// ReadBool reads one byte; only the value 1 reads as true.
func (b *Buffer) ReadBool(opts ...Option) (bool, error) {
	data, _, err := b.read(1, opts)
	if err != nil {
		return false, err
	}
	return data[0] == 1, nil
}

// ReadU8 reads an unsigned byte.
func (b *Buffer) ReadU8(opts ...Option) (uint8, error) {
	data, _, err := b.read(1, opts)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

// ReadI8 reads a two's-complement signed byte.
func (b *Buffer) ReadI8(opts ...Option) (int8, error) {
	v, err := b.ReadU8(opts...)
	return int8(v), err
}

// ReadU16 reads an unsigned 16-bit integer.
func (b *Buffer) ReadU16(opts ...Option) (uint16, error) {
	data, c, err := b.read(2, opts)
	if err != nil {
		return 0, err
	}
	return c.order.Uint16(data), nil
}

// ReadI16 reads a signed 16-bit integer.
func (b *Buffer) ReadI16(opts ...Option) (int16, error) {
	v, err := b.ReadU16(opts...)
	return int16(v), err
}

// ReadU32 reads an unsigned 32-bit integer.
func (b *Buffer) ReadU32(opts ...Option) (uint32, error) {
	data, c, err := b.read(4, opts)
	if err != nil {
		return 0, err
	}
	return c.order.Uint32(data), nil
}

// ReadI32 reads a signed 32-bit integer.
func (b *Buffer) ReadI32(opts ...Option) (int32, error) {
	v, err := b.ReadU32(opts...)
	return int32(v), err
}

// ReadU64 reads an unsigned 64-bit integer.
func (b *Buffer) ReadU64(opts ...Option) (uint64, error) {
	data, c, err := b.read(8, opts)
	if err != nil {
		return 0, err
	}
	return c.order.Uint64(data), nil
}

// ReadI64 reads a signed 64-bit integer.
func (b *Buffer) ReadI64(opts ...Option) (int64, error) {
	v, err := b.ReadU64(opts...)
	return int64(v), err
}

// ReadF32 reads an IEEE-754 single.
func (b *Buffer) ReadF32(opts ...Option) (float32, error) {
	v, err := b.ReadU32(opts...)
	return math.Float32frombits(v), err
}

// ReadF64 reads an IEEE-754 double.
func (b *Buffer) ReadF64(opts ...Option) (float64, error) {
	v, err := b.ReadU64(opts...)
	return math.Float64frombits(v), err
}

// ReadString reads a 2-byte body length followed by the body, both in the
// selected byte order and charset. The cursor ends after the body.
func (b *Buffer) ReadString(opts ...Option) (string, error) {
	c, err := b.resolve(opts)
	if err != nil {
		return "", err
	}
	if err := c.charset.Validate(); err != nil {
		return "", err
	}
	prefix, err := b.readBytes(c.start, codec.PrefixSize)
	if err != nil {
		return "", err
	}
	length := int(c.order.Uint16(prefix))

	body, err := b.readBytes(c.start+codec.PrefixSize, length)
	if err != nil {
		return "", err
	}
	text, err := codec.DecodeString(body, c.charset, c.order)
	if err != nil {
		return "", err
	}
	b.offset = c.start + codec.PrefixSize + length
	return text, nil
}
