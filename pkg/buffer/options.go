package buffer

import (
	"encoding/binary"

	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// Option adjusts a single read or write.
type Option func(*call)

// call is the resolved form of one operation's options.
type call struct {
	start    int
	explicit bool
	order    binary.ByteOrder
	charset  types.Charset
}

// At positions the cursor at offset before the operation runs. Without it
// the operation starts at the current cursor.
func At(offset int) Option {
	return func(c *call) {
		c.start = offset
		c.explicit = true
	}
}

// LittleEndian selects little-endian byte order for multi-byte values and
// UTF-16 text.
func LittleEndian() Option {
	return Order(binary.LittleEndian)
}

// BigEndian selects big-endian byte order. It is the default.
func BigEndian() Option {
	return Order(binary.BigEndian)
}

// Order selects an explicit byte order.
func Order(order binary.ByteOrder) Option {
	return func(c *call) {
		if order != nil {
			c.order = order
		}
	}
}

// Charset selects the string encoding. UTF-8 is the default.
func Charset(charset types.Charset) Option {
	return func(c *call) {
		c.charset = charset
	}
}
