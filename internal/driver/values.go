package driver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/cellbuf/pkg/buffer"
	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// ValueTypes lists the type names WriteValue and ReadValue accept.
var ValueTypes = []string{
	"bool", "u8", "i8", "u16", "i16", "u32", "i32", "u64", "i64", "f32", "f64", "string",
}

// WriteValue parses raw as typ and writes it to buf.
func WriteValue(buf *buffer.Buffer, typ, raw string, opts ...buffer.Option) error {
	switch typ {
	case "bool":
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return invalidValue(typ, raw)
		}
		return buf.WriteBool(v, opts...)
	case "u8", "i8", "u16", "i16", "u32", "i32", "i64":
		v, err := strconv.ParseInt(raw, 0, 64)
		if err != nil {
			return parseError(typ, raw, err)
		}
		return writeInt(buf, typ, v, opts)
	case "u64":
		if strings.HasPrefix(raw, "-") {
			if _, err := strconv.ParseInt(raw, 0, 64); err == nil || errors.Is(err, strconv.ErrRange) {
				return fmt.Errorf("%w: u64 must not be negative, got %s", types.ErrRange, raw)
			}
			return invalidValue(typ, raw)
		}
		v, err := strconv.ParseUint(raw, 0, 64)
		if err != nil {
			return parseError(typ, raw, err)
		}
		return buf.WriteU64(v, opts...)
	case "f32", "f64":
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return invalidValue(typ, raw)
		}
		if typ == "f32" {
			return buf.WriteF32(v, opts...)
		}
		return buf.WriteF64(v, opts...)
	case "string":
		return buf.WriteString(raw, opts...)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
}

func writeInt(buf *buffer.Buffer, typ string, v int64, opts []buffer.Option) error {
	switch typ {
	case "u8":
		return buf.WriteU8(v, opts...)
	case "i8":
		return buf.WriteI8(v, opts...)
	case "u16":
		return buf.WriteU16(v, opts...)
	case "i16":
		return buf.WriteI16(v, opts...)
	case "u32":
		return buf.WriteU32(v, opts...)
	case "i32":
		return buf.WriteI32(v, opts...)
	default:
		return buf.WriteI64(v, opts...)
	}
}

// ReadValue reads a typ value from buf and formats it for display. Strings
// are returned verbatim.
func ReadValue(buf *buffer.Buffer, typ string, opts ...buffer.Option) (string, error) {
	switch typ {
	case "bool":
		v, err := buf.ReadBool(opts...)
		return formatted(strconv.FormatBool(v), err)
	case "u8":
		v, err := buf.ReadU8(opts...)
		return formatted(strconv.FormatUint(uint64(v), 10), err)
	case "i8":
		v, err := buf.ReadI8(opts...)
		return formatted(strconv.FormatInt(int64(v), 10), err)
	case "u16":
		v, err := buf.ReadU16(opts...)
		return formatted(strconv.FormatUint(uint64(v), 10), err)
	case "i16":
		v, err := buf.ReadI16(opts...)
		return formatted(strconv.FormatInt(int64(v), 10), err)
	case "u32":
		v, err := buf.ReadU32(opts...)
		return formatted(strconv.FormatUint(uint64(v), 10), err)
	case "i32":
		v, err := buf.ReadI32(opts...)
		return formatted(strconv.FormatInt(int64(v), 10), err)
	case "u64":
		v, err := buf.ReadU64(opts...)
		return formatted(strconv.FormatUint(v, 10), err)
	case "i64":
		v, err := buf.ReadI64(opts...)
		return formatted(strconv.FormatInt(v, 10), err)
	case "f32":
		v, err := buf.ReadF32(opts...)
		return formatted(strconv.FormatFloat(float64(v), 'g', -1, 32), err)
	case "f64":
		v, err := buf.ReadF64(opts...)
		return formatted(strconv.FormatFloat(v, 'g', -1, 64), err)
	case "string":
		return buf.ReadString(opts...)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
}

func formatted(s string, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return s, nil
}

// parseError maps a strconv failure to ErrRange when raw is a well-formed
// number too large for 64 bits, and to ErrInvalidValue otherwise.
func parseError(typ, raw string, err error) error {
	if errors.Is(err, strconv.ErrRange) {
		return fmt.Errorf("%w: %s does not fit in 64 bits", types.ErrRange, raw)
	}
	return invalidValue(typ, raw)
}

func invalidValue(typ, raw string) error {
	return fmt.Errorf("%w: %q is not a %s", ErrInvalidValue, raw, typ)
}
