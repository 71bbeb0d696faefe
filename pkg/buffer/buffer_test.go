package buffer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/cellbuf/internal/codec"
	"github.com/mesh-intelligence/cellbuf/internal/memory"
	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// setupBuffer returns a Buffer over a fresh in-memory region of the given
// width, plus the medium for direct inspection.
func setupBuffer(t *testing.T, width int, allowClose bool) (*Buffer, *memory.Medium) {
	t.Helper()
	m := memory.New("test")
	b, err := New(m, Options{GridWidth: width, AllowClose: allowClose})
	require.NoError(t, err)
	return b, m
}

// rawByte decodes the cell at offset straight from the medium.
func rawByte(t *testing.T, m *memory.Medium, b *Buffer, offset int) byte {
	t.Helper()
	state, err := m.Cell(codec.ToAddress(offset, b.GridWidth()))
	require.NoError(t, err)
	v, err := codec.DecodeByte(state)
	require.NoError(t, err)
	return v
}

func TestNew(t *testing.T) {
	b, err := New(memory.New(""), Options{})
	require.NoError(t, err)
	assert.Equal(t, types.DefaultGridWidth, b.GridWidth())
	assert.Equal(t, 6912, b.Capacity())
	assert.Equal(t, 0, b.Offset())

	_, err = New(nil, Options{})
	assert.Error(t, err)

	_, err = New(memory.New(""), Options{GridWidth: -1})
	assert.ErrorIs(t, err, types.ErrGridWidthInvalid)
}

func TestBuffer_CursorChaining(t *testing.T) {
	b, m := setupBuffer(t, 1, false)

	require.NoError(t, b.WriteU8(7))
	require.NoError(t, b.WriteU8(9))
	assert.Equal(t, 2, b.Offset())
	assert.Equal(t, byte(7), rawByte(t, m, b, 0))
	assert.Equal(t, byte(9), rawByte(t, m, b, 1))

	v, err := b.ReadU8(At(0))
	require.NoError(t, err)
	assert.Equal(t, uint8(7), v)

	v, err = b.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, uint8(9), v)
	assert.Equal(t, 2, b.Offset())
}

func TestBuffer_ExplicitOffsetAdvancesCursor(t *testing.T) {
	b, _ := setupBuffer(t, 1, false)

	require.NoError(t, b.WriteU32(0xDEADBEEF, At(10)))
	assert.Equal(t, 14, b.Offset())

	require.NoError(t, b.WriteU8(1))
	v, err := b.ReadU8(At(14))
	require.NoError(t, err)
	assert.Equal(t, uint8(1), v)
	assert.Equal(t, 15, b.Offset())
}

func TestBuffer_ConcreteScenario(t *testing.T) {
	b, _ := setupBuffer(t, types.DefaultGridWidth, false)

	require.NoError(t, b.WriteU8(20, At(0)))
	require.NoError(t, b.WriteU16(2, At(1)))
	require.NoError(t, b.WriteI32(5, At(3)))
	require.NoError(t, b.WriteI32(-64, At(7)))
	require.NoError(t, b.WriteI32(4, At(11)))

	header, err := b.ReadU8(At(0))
	require.NoError(t, err)
	assert.Equal(t, uint8(20), header)

	count, err := b.ReadU16(At(1))
	require.NoError(t, err)
	assert.Equal(t, uint16(2), count)

	var triple [3]int32
	for i := range triple {
		triple[i], err = b.ReadI32(At(3 + 4*i))
		require.NoError(t, err)
	}
	assert.Equal(t, [3]int32{5, -64, 4}, triple)

	used, err := b.UsedBytes()
	require.NoError(t, err)
	assert.Equal(t, 15, used)
}

func TestBuffer_ByteLayout(t *testing.T) {
	b, m := setupBuffer(t, 1, false)

	require.NoError(t, b.WriteU16(0x0102, At(0)))
	require.NoError(t, b.WriteU16(0x0102, At(2), LittleEndian()))
	require.NoError(t, b.WriteI32(-2, At(4)))

	want := []byte{0x01, 0x02, 0x02, 0x01, 0xFF, 0xFF, 0xFF, 0xFE}
	for i, w := range want {
		assert.Equal(t, w, rawByte(t, m, b, i), "byte %d", i)
	}
}

func TestBuffer_IntegerRoundTrip(t *testing.T) {
	orders := map[string][]Option{
		"big endian":    nil,
		"little endian": {LittleEndian()},
	}

	for name, orderOpts := range orders {
		t.Run(name, func(t *testing.T) {
			b, _ := setupBuffer(t, 1, false)
			at := func(off int) []Option { return append([]Option{At(off)}, orderOpts...) }

			for _, v := range []int64{0, 1, 127, 128, 255} {
				require.NoError(t, b.WriteU8(v, at(0)...))
				got, err := b.ReadU8(at(0)...)
				require.NoError(t, err)
				assert.Equal(t, uint8(v), got)
			}
			for _, v := range []int64{math.MinInt8, -1, 0, 1, math.MaxInt8} {
				require.NoError(t, b.WriteI8(v, at(0)...))
				got, err := b.ReadI8(at(0)...)
				require.NoError(t, err)
				assert.Equal(t, int8(v), got)
			}
			for _, v := range []int64{0, 1, 0x1234, 0x8000, math.MaxUint16} {
				require.NoError(t, b.WriteU16(v, at(1)...))
				got, err := b.ReadU16(at(1)...)
				require.NoError(t, err)
				assert.Equal(t, uint16(v), got)
			}
			for _, v := range []int64{math.MinInt16, -1, 0, 1, 1234, math.MaxInt16} {
				require.NoError(t, b.WriteI16(v, at(1)...))
				got, err := b.ReadI16(at(1)...)
				require.NoError(t, err)
				assert.Equal(t, int16(v), got)
			}
			for _, v := range []int64{0, 1, 0x80000000, 0x12345678, math.MaxUint32} {
				require.NoError(t, b.WriteU32(v, at(3)...))
				got, err := b.ReadU32(at(3)...)
				require.NoError(t, err)
				assert.Equal(t, uint32(v), got)
			}
			for _, v := range []int64{math.MinInt32, -64, -1, 0, 1, 5, math.MaxInt32} {
				require.NoError(t, b.WriteI32(v, at(3)...))
				got, err := b.ReadI32(at(3)...)
				require.NoError(t, err)
				assert.Equal(t, int32(v), got)
			}
			for _, v := range []uint64{0, 1, 1 << 63, 0x0123456789ABCDEF, math.MaxUint64} {
				require.NoError(t, b.WriteU64(v, at(7)...))
				got, err := b.ReadU64(at(7)...)
				require.NoError(t, err)
				assert.Equal(t, v, got)
			}
			for _, v := range []int64{math.MinInt64, -1, 0, 1, -9_000_000_000, math.MaxInt64} {
				require.NoError(t, b.WriteI64(v, at(7)...))
				got, err := b.ReadI64(at(7)...)
				require.NoError(t, err)
				assert.Equal(t, v, got)
			}
		})
	}
}

func TestBuffer_FloatRoundTrip(t *testing.T) {
	for _, opts := range [][]Option{{At(0)}, {At(0), LittleEndian()}} {
		b, _ := setupBuffer(t, 1, false)

		for _, v := range []float32{0, -0.5, 1.5, math.MaxFloat32, math.SmallestNonzeroFloat32, -3.25e10} {
			require.NoError(t, b.WriteF32(float64(v), opts...))
			got, err := b.ReadF32(opts...)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
		for _, v := range []float64{0, -1, math.Pi, math.MaxFloat64, math.SmallestNonzeroFloat64, -1e-300} {
			require.NoError(t, b.WriteF64(v, opts...))
			got, err := b.ReadF64(opts...)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}

		require.NoError(t, b.WriteF64(math.Inf(-1), opts...))
		inf, err := b.ReadF64(opts...)
		require.NoError(t, err)
		assert.True(t, math.IsInf(inf, -1))

		require.NoError(t, b.WriteF32(math.NaN(), opts...))
		nan, err := b.ReadF32(opts...)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(float64(nan)))
	}
}

func TestBuffer_BoolRoundTrip(t *testing.T) {
	b, _ := setupBuffer(t, 1, false)

	require.NoError(t, b.WriteBool(true))
	require.NoError(t, b.WriteBool(false))
	require.NoError(t, b.WriteU8(2))

	got, err := b.ReadBool(At(0))
	require.NoError(t, err)
	assert.True(t, got)

	got, err = b.ReadBool()
	require.NoError(t, err)
	assert.False(t, got)

	// Only 1 reads as true.
	got, err = b.ReadBool()
	require.NoError(t, err)
	assert.False(t, got)
}

func TestBuffer_StringRoundTrip(t *testing.T) {
	texts := []string{"", "plain ascii", "ü and €", "𝄞 and 🙂"}
	charsets := []types.Charset{types.CharsetUTF8, types.CharsetUTF16}
	orders := [][]Option{nil, {LittleEndian()}}

	for _, cs := range charsets {
		for _, orderOpts := range orders {
			b, _ := setupBuffer(t, 2, false)
			opts := append([]Option{Charset(cs)}, orderOpts...)

			for _, text := range texts {
				require.NoError(t, b.WriteString(text, opts...))
			}
			end := b.Offset()

			require.NoError(t, b.SetOffset(0))
			for _, text := range texts {
				got, err := b.ReadString(opts...)
				require.NoError(t, err)
				assert.Equal(t, text, got)
			}
			assert.Equal(t, end, b.Offset(), "reading must advance past prefix and body")
		}
	}
}

func TestBuffer_StringCursorAdvance(t *testing.T) {
	b, _ := setupBuffer(t, 1, false)

	// "€" is 3 bytes of UTF-8 but 1 character.
	require.NoError(t, b.WriteString("€", At(4)))
	assert.Equal(t, 4+2+3, b.Offset())

	_, err := b.ReadString(At(4))
	require.NoError(t, err)
	assert.Equal(t, 9, b.Offset())
}

func TestBuffer_InvalidCharset(t *testing.T) {
	b, m := setupBuffer(t, 1, false)

	err := b.WriteString("x", Charset("ebcdic"))
	assert.ErrorIs(t, err, types.ErrInvalidCharset)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 0, b.Offset())

	require.NoError(t, b.WriteString("x"))
	_, err = b.ReadString(At(0), Charset("ebcdic"))
	assert.ErrorIs(t, err, types.ErrInvalidCharset)

	// The charset is checked before any cell is read.
	_, err = b.ReadString(At(10), Charset("bogus"))
	assert.ErrorIs(t, err, types.ErrInvalidCharset)
}

func TestBuffer_RangeRejection(t *testing.T) {
	tests := []struct {
		name  string
		write func(b *Buffer) error
	}{
		{"u8 256", func(b *Buffer) error { return b.WriteU8(256) }},
		{"u8 -1", func(b *Buffer) error { return b.WriteU8(-1) }},
		{"i8 128", func(b *Buffer) error { return b.WriteI8(128) }},
		{"i8 -129", func(b *Buffer) error { return b.WriteI8(-129) }},
		{"u16 65536", func(b *Buffer) error { return b.WriteU16(65536) }},
		{"i16 -32769", func(b *Buffer) error { return b.WriteI16(-32769) }},
		{"i16 32768", func(b *Buffer) error { return b.WriteI16(32768) }},
		{"u32 -1", func(b *Buffer) error { return b.WriteU32(-1) }},
		{"u32 2^32", func(b *Buffer) error { return b.WriteU32(1 << 32) }},
		{"i32 2^31", func(b *Buffer) error { return b.WriteI32(1 << 31) }},
		{"f32 beyond max", func(b *Buffer) error { return b.WriteF32(math.MaxFloat64) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, m := setupBuffer(t, 1, false)
			err := tt.write(b)
			assert.ErrorIs(t, err, types.ErrRange)
			assert.Equal(t, 0, m.Len(), "rejected write must not touch the medium")
			assert.Equal(t, 0, b.Offset(), "rejected write must not move the cursor")
		})
	}
}

func TestBuffer_OverflowRejection(t *testing.T) {
	b, _ := setupBuffer(t, 1, false)
	capacity := b.Capacity()

	for off := 0; off < capacity-3; off++ {
		require.NoError(t, b.WriteU8(int64(off%256)))
	}
	before, err := b.UsedBytes()
	require.NoError(t, err)
	require.Equal(t, capacity-3, before)

	err = b.WriteI64(42, At(capacity-3))
	assert.ErrorIs(t, err, types.ErrOverflow)
	err = b.WriteF64(1.5, At(capacity-3))
	assert.ErrorIs(t, err, types.ErrOverflow)

	after, err := b.UsedBytes()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, capacity-3, b.Offset())

	// Exactly enough space succeeds and fills the region.
	require.NoError(t, b.WriteU16(1))
	require.NoError(t, b.WriteU8(1))
	assert.Equal(t, capacity, b.Offset())
	err = b.WriteU8(1)
	assert.ErrorIs(t, err, types.ErrOverflow)
}

func TestBuffer_StringOverflow(t *testing.T) {
	b, m := setupBuffer(t, 1, false)

	// 25 body bytes + 2 prefix bytes = 27 = capacity.
	require.NoError(t, b.WriteString("abcdefghijklmnopqrstuvwxy"))
	require.NoError(t, b.Clear())

	err := b.WriteString("abcdefghijklmnopqrstuvwxyz")
	assert.ErrorIs(t, err, types.ErrOverflow)
	assert.Equal(t, 0, m.Len())
}

func TestBuffer_SetOffset(t *testing.T) {
	b, _ := setupBuffer(t, 1, false)

	require.NoError(t, b.SetOffset(0))
	require.NoError(t, b.SetOffset(26))
	assert.Equal(t, 26, b.Offset())

	assert.ErrorIs(t, b.SetOffset(-1), types.ErrOutOfRange)
	assert.ErrorIs(t, b.SetOffset(27), types.ErrOutOfRange)
	assert.ErrorIs(t, b.SetOffset(1000), types.ErrOutOfRange)
	assert.Equal(t, 26, b.Offset())
}

func TestBuffer_ExplicitOffsetOutOfRange(t *testing.T) {
	b, m := setupBuffer(t, 1, false)

	assert.ErrorIs(t, b.WriteU8(1, At(-1)), types.ErrOutOfRange)
	assert.ErrorIs(t, b.WriteU8(1, At(27)), types.ErrOutOfRange)
	_, err := b.ReadU8(At(27))
	assert.ErrorIs(t, err, types.ErrOutOfRange)
	assert.Equal(t, 0, m.Len())
}

func TestBuffer_ReadUnwritten(t *testing.T) {
	b, _ := setupBuffer(t, 1, false)

	_, err := b.ReadU8(At(0))
	assert.ErrorIs(t, err, types.ErrOutOfBounds)

	require.NoError(t, b.WriteU16(7, At(0)))
	_, err = b.ReadU32(At(0))
	assert.ErrorIs(t, err, types.ErrOutOfBounds, "span reaching an empty cell")
	assert.Equal(t, 2, b.Offset(), "failed read must not move the cursor")

	_, err = b.ReadU64(At(24))
	assert.ErrorIs(t, err, types.ErrOutOfBounds, "span past capacity")
}

func TestBuffer_ReadCorruptCell(t *testing.T) {
	b, m := setupBuffer(t, 1, false)

	require.NoError(t, m.SetCell(types.Address{Slot: 0}, types.CellState{Kind: types.KindD, Magnitude: 64}))
	_, err := b.ReadU8(At(0))
	assert.ErrorIs(t, err, types.ErrCorruptCell)

	require.NoError(t, m.SetCell(types.Address{Slot: 1}, types.CellState{Kind: types.Kind(99), Magnitude: 1}))
	_, err = b.ReadU8(At(1))
	assert.ErrorIs(t, err, types.ErrCorruptCell)
}

func TestBuffer_PartialWrite(t *testing.T) {
	b, m := setupBuffer(t, 1, false)

	m.FailAfter(3)
	err := b.WriteU64(0x0102030405060708, At(4))

	var pw *types.PartialWriteError
	require.ErrorAs(t, err, &pw)
	assert.ErrorIs(t, err, memory.ErrInjected)
	assert.Equal(t, 4, pw.Offset)
	assert.Equal(t, 3, pw.Written)
	assert.Equal(t, 8, pw.Total)
	assert.Equal(t, 3, m.Len(), "bytes before the failure stay written")
	assert.Equal(t, 0, b.Offset())
}

func TestBuffer_UsedBytes(t *testing.T) {
	b, _ := setupBuffer(t, 1, false)

	used, err := b.UsedBytes()
	require.NoError(t, err)
	assert.Equal(t, 0, used)

	require.NoError(t, b.WriteI32(1))
	require.NoError(t, b.WriteU8(1, At(10)))
	used, err = b.UsedBytes()
	require.NoError(t, err)
	assert.Equal(t, 4, used, "count stops at the first empty cell")

	for off := 4; off < b.Capacity(); off++ {
		require.NoError(t, b.WriteU8(0, At(off)))
	}
	used, err = b.UsedBytes()
	require.NoError(t, err)
	assert.Equal(t, b.Capacity(), used)
}

func TestBuffer_OffsetAddress(t *testing.T) {
	b, _ := setupBuffer(t, 16, false)

	addr, err := b.OffsetAddress()
	require.NoError(t, err)
	assert.Equal(t, types.Address{}, addr)

	addr, err = b.OffsetAddress(At(16*27 + 28))
	require.NoError(t, err)
	assert.Equal(t, types.Address{Row: 1, Col: 1, Slot: 1}, addr)

	_, err = b.OffsetAddress(At(b.Capacity()))
	assert.ErrorIs(t, err, types.ErrOutOfRange)
}

func TestBuffer_Clear(t *testing.T) {
	b, m := setupBuffer(t, 1, false)

	require.NoError(t, b.WriteI64(-5))
	require.NoError(t, b.Clear())
	assert.Equal(t, 0, b.Offset())
	assert.Equal(t, 0, m.Len())

	_, err := b.ReadU8(At(0))
	assert.ErrorIs(t, err, types.ErrOutOfBounds)
}

func TestBuffer_Remove(t *testing.T) {
	b, m := setupBuffer(t, 1, false)

	for _, v := range []int64{10, 11, 12, 13, 14, 15} {
		require.NoError(t, b.WriteU8(v))
	}
	require.Equal(t, 6, b.Offset())

	require.NoError(t, b.Remove(2, At(1)))
	assert.Equal(t, 4, b.Offset(), "cursor moves back with the data")
	assert.Equal(t, 4, m.Len())

	want := []uint8{10, 13, 14, 15}
	for i, w := range want {
		got, err := b.ReadU8(At(i))
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}

	used, err := b.UsedBytes()
	require.NoError(t, err)
	assert.Equal(t, 4, used)

	// Removing more than is stored stops at the end of the run.
	require.NoError(t, b.Remove(10, At(2)))
	used, err = b.UsedBytes()
	require.NoError(t, err)
	assert.Equal(t, 2, used)
	assert.Equal(t, 2, b.Offset())

	assert.ErrorIs(t, b.Remove(1, At(5)), types.ErrOutOfBounds)
	assert.ErrorIs(t, b.Remove(0, At(0)), types.ErrRange)
}

func TestBuffer_RemoveCursorPastGap(t *testing.T) {
	tests := []struct {
		name   string
		cursor int
		want   int
	}{
		{"cursor past the gap stays", 12, 12},
		{"cursor inside the gap stays", 5, 5},
		{"cursor at the end of the run moves back", 3, 2},
		{"cursor after the removed byte moves back", 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, m := setupBuffer(t, 1, false)
			for _, v := range []int64{1, 2, 3} {
				require.NoError(t, b.WriteU8(v))
			}
			require.NoError(t, b.WriteU8(20, At(10)))
			require.NoError(t, b.WriteU8(21))
			require.NoError(t, b.SetOffset(tt.cursor))

			require.NoError(t, b.Remove(1, At(0)))
			assert.Equal(t, tt.want, b.Offset())
			assert.Equal(t, byte(20), rawByte(t, m, b, 10), "bytes after the gap are untouched")
			assert.Equal(t, byte(2), rawByte(t, m, b, 0))
		})
	}
}

func TestBuffer_Close(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		b, _ := setupBuffer(t, 1, false)
		require.NoError(t, b.WriteU8(1))
		assert.ErrorIs(t, b.Close(), types.ErrCloseDisabled)
		assert.False(t, b.Closed())
	})

	t.Run("empty region cannot close", func(t *testing.T) {
		b, _ := setupBuffer(t, 1, true)
		assert.ErrorIs(t, b.Close(), types.ErrAlreadyEmpty)
		assert.False(t, b.Closed())
	})

	t.Run("closed buffer rejects every operation", func(t *testing.T) {
		b, m := setupBuffer(t, 1, true)
		require.NoError(t, b.WriteU8(1, At(5)))
		require.NoError(t, b.Close())
		assert.True(t, b.Closed())
		assert.Equal(t, 0, m.Len(), "close clears the region")

		assert.ErrorIs(t, b.Close(), types.ErrClosedBuffer)
		assert.ErrorIs(t, b.WriteU8(1), types.ErrClosedBuffer)
		assert.ErrorIs(t, b.WriteString("x"), types.ErrClosedBuffer)
		assert.ErrorIs(t, b.SetOffset(0), types.ErrClosedBuffer)
		assert.ErrorIs(t, b.Clear(), types.ErrClosedBuffer)
		assert.ErrorIs(t, b.Remove(1), types.ErrClosedBuffer)
		_, err := b.ReadU8()
		assert.ErrorIs(t, err, types.ErrClosedBuffer)
		_, err = b.ReadString()
		assert.ErrorIs(t, err, types.ErrClosedBuffer)
		_, err = b.UsedBytes()
		assert.ErrorIs(t, err, types.ErrClosedBuffer)
		_, err = b.OffsetAddress()
		assert.ErrorIs(t, err, types.ErrClosedBuffer)
	})

	t.Run("accessors keep answering after close", func(t *testing.T) {
		b, _ := setupBuffer(t, 2, true)
		require.NoError(t, b.WriteU16(9, At(30)))
		require.Equal(t, 32, b.Offset())
		require.NoError(t, b.Close())

		assert.Equal(t, 0, b.Offset())
		assert.Equal(t, 2, b.GridWidth())
		assert.Equal(t, 108, b.Capacity())
		assert.True(t, b.Closed())
	})
}

func TestNew_InitialOffset(t *testing.T) {
	m := memory.New("")
	b, err := New(m, Options{GridWidth: 1, Offset: 27})
	require.NoError(t, err)
	assert.Equal(t, 27, b.Offset())
	assert.ErrorIs(t, b.WriteU8(1), types.ErrOverflow)

	_, err = New(m, Options{GridWidth: 1, Offset: 28})
	assert.ErrorIs(t, err, types.ErrOutOfRange)
	_, err = New(m, Options{GridWidth: 1, Offset: -1})
	assert.ErrorIs(t, err, types.ErrOutOfRange)
}
