package buffer

import (
	"fmt"
	"math"

	"github.com/mesh-intelligence/cellbuf/internal/codec"
	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// write resolves opts, runs check, encodes the value, and stores it. Nothing
// reaches the medium unless every check passed. The cursor advances only
// when all bytes were stored.
func (b *Buffer) write(opts []Option, check error, encode func(c call) ([]byte, error)) error {
	c, err := b.resolve(opts)
	if err != nil {
		return err
	}
	if check != nil {
		return check
	}
	data, err := encode(c)
	if err != nil {
		return err
	}
	if err := b.writeBytes(c.start, data); err != nil {
		return err
	}
	b.offset = c.start + len(data)
	return nil
}

func checkInt(typeName string, v, lo, hi int64) error {
	if v < lo || v > hi {
		return fmt.Errorf("%w: %s must be between %d and %d, got %d", types.ErrRange, typeName, lo, hi, v)
	}
	return nil
}

// WriteBool writes true as 1 and false as 0.
func (b *Buffer) WriteBool(v bool, opts ...Option) error {
	return b.write(opts, nil, func(call) ([]byte, error) {
		if v {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	})
}

// WriteU8 writes v as an unsigned byte. v must be in [0, 255].
func (b *Buffer) WriteU8(v int64, opts ...Option) error {
	return b.write(opts, checkInt("u8", v, 0, math.MaxUint8), func(call) ([]byte, error) {
		return []byte{byte(v)}, nil
	})
}

// WriteI8 writes v as a signed byte. v must be in [-128, 127].
func (b *Buffer) WriteI8(v int64, opts ...Option) error {
	return b.write(opts, checkInt("i8", v, math.MinInt8, math.MaxInt8), func(call) ([]byte, error) {
		return []byte{byte(int8(v))}, nil
	})
}

// WriteU16 writes v as an unsigned 16-bit integer.
func (b *Buffer) WriteU16(v int64, opts ...Option) error {
	return b.write(opts, checkInt("u16", v, 0, math.MaxUint16), func(c call) ([]byte, error) {
		out := make([]byte, 2)
		c.order.PutUint16(out, uint16(v))
		return out, nil
	})
}

// WriteI16 writes v as a signed 16-bit integer.
func (b *Buffer) WriteI16(v int64, opts ...Option) error {
	return b.write(opts, checkInt("i16", v, math.MinInt16, math.MaxInt16), func(c call) ([]byte, error) {
		out := make([]byte, 2)
		c.order.PutUint16(out, uint16(int16(v)))
		return out, nil
	})
}

// WriteU32 writes v as an unsigned 32-bit integer.
func (b *Buffer) WriteU32(v int64, opts ...Option) error {
	return b.write(opts, checkInt("u32", v, 0, math.MaxUint32), func(c call) ([]byte, error) {
		out := make([]byte, 4)
		c.order.PutUint32(out, uint32(v))
		return out, nil
	})
}

// WriteI32 writes v as a signed 32-bit integer.
func (b *Buffer) WriteI32(v int64, opts ...Option) error {
	return b.write(opts, checkInt("i32", v, math.MinInt32, math.MaxInt32), func(c call) ([]byte, error) {
		out := make([]byte, 4)
		c.order.PutUint32(out, uint32(int32(v)))
		return out, nil
	})
}

// WriteU64 writes an unsigned 64-bit integer.
func (b *Buffer) WriteU64(v uint64, opts ...Option) error {
	return b.write(opts, nil, func(c call) ([]byte, error) {
		out := make([]byte, 8)
		c.order.PutUint64(out, v)
		return out, nil
	})
}

// WriteI64 writes a signed 64-bit integer.
func (b *Buffer) WriteI64(v int64, opts ...Option) error {
	return b.write(opts, nil, func(c call) ([]byte, error) {
		out := make([]byte, 8)
		c.order.PutUint64(out, uint64(v))
		return out, nil
	})
}

// WriteF32 writes v as an IEEE-754 single. Finite values beyond the float32
// range return ErrRange; NaN and infinities are stored as such.
func (b *Buffer) WriteF32(v float64, opts ...Option) error {
	var check error
	if !math.IsInf(v, 0) && !math.IsNaN(v) && math.Abs(v) > math.MaxFloat32 {
		check = fmt.Errorf("%w: f32 magnitude must not exceed %g, got %g", types.ErrRange, math.MaxFloat32, v)
	}
	return b.write(opts, check, func(c call) ([]byte, error) {
		out := make([]byte, 4)
		c.order.PutUint32(out, math.Float32bits(float32(v)))
		return out, nil
	})
}

// WriteF64 writes an IEEE-754 double.
func (b *Buffer) WriteF64(v float64, opts ...Option) error {
	return b.write(opts, nil, func(c call) ([]byte, error) {
		out := make([]byte, 8)
		c.order.PutUint64(out, math.Float64bits(v))
		return out, nil
	})
}

// WriteString writes the 2-byte body length and the encoded body. The space
// check covers both, so a string that does not fit writes nothing.
func (b *Buffer) WriteString(text string, opts ...Option) error {
	return b.write(opts, nil, func(c call) ([]byte, error) {
		return codec.EncodeString(text, c.charset, c.order)
	})
}
