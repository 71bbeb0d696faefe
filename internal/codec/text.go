package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// PrefixSize is the width of the length field in front of every string body.
const PrefixSize = 2

// MaxStringBytes is the largest encoded body the length prefix can describe.
const MaxStringBytes = math.MaxUint16

// UTF-16 surrogate ranges.
const (
	surrogateHigh = 0xD800
	surrogateLow  = 0xDC00
	surrogateEnd  = 0xE000
	surrogateBase = 0x10000
)

// EncodeString encodes text in charset and prepends the 2-byte body length
// written in order. Bodies longer than MaxStringBytes return ErrRange.
func EncodeString(text string, charset types.Charset, order binary.ByteOrder) ([]byte, error) {
	body, err := EncodeBody(text, charset, order)
	if err != nil {
		return nil, err
	}
	if len(body) > MaxStringBytes {
		return nil, fmt.Errorf("%w: string body is %d bytes, limit %d", types.ErrRange, len(body), MaxStringBytes)
	}

	out := make([]byte, PrefixSize, PrefixSize+len(body))
	order.PutUint16(out, uint16(len(body)))
	return append(out, body...), nil
}

// EncodeBody encodes text in charset without a length prefix. order only
// affects UTF-16.
func EncodeBody(text string, charset types.Charset, order binary.ByteOrder) ([]byte, error) {
	switch charset {
	case types.CharsetUTF8:
		return encodeUTF8(text), nil
	case types.CharsetUTF16:
		return encodeUTF16(text, order), nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidCharset, charset)
	}
}

// DecodeString decodes a string body (without its prefix).
func DecodeString(body []byte, charset types.Charset, order binary.ByteOrder) (string, error) {
	switch charset {
	case types.CharsetUTF8:
		return decodeUTF8(body)
	case types.CharsetUTF16:
		return decodeUTF16(body, order)
	default:
		return "", fmt.Errorf("%w: %q", types.ErrInvalidCharset, charset)
	}
}

func encodeUTF8(text string) []byte {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		cp := uint32(r)
		switch {
		case cp <= 0x7F:
			out = append(out, byte(cp))
		case cp <= 0x7FF:
			out = append(out,
				0xC0|byte(cp>>6),
				0x80|byte(cp&0x3F))
		case cp <= 0xFFFF:
			out = append(out,
				0xE0|byte(cp>>12),
				0x80|byte((cp>>6)&0x3F),
				0x80|byte(cp&0x3F))
		default:
			out = append(out,
				0xF0|byte(cp>>18),
				0x80|byte((cp>>12)&0x3F),
				0x80|byte((cp>>6)&0x3F),
				0x80|byte(cp&0x3F))
		}
	}
	return out
}

// utf8Min is the smallest code point each sequence length may carry;
// anything lower is an overlong encoding.
var utf8Min = [5]rune{0, 0, 0x80, 0x800, 0x10000}

func decodeUTF8(body []byte) (string, error) {
	var sb strings.Builder
	sb.Grow(len(body))

	for i := 0; i < len(body); {
		lead := body[i]

		var size int
		var cp rune
		switch {
		case lead&0x80 == 0x00:
			size, cp = 1, rune(lead)
		case lead&0xE0 == 0xC0:
			size, cp = 2, rune(lead&0x1F)
		case lead&0xF0 == 0xE0:
			size, cp = 3, rune(lead&0x0F)
		case lead&0xF8 == 0xF0:
			size, cp = 4, rune(lead&0x07)
		default:
			return "", fmt.Errorf("%w: invalid utf-8 lead byte 0x%02X at %d", types.ErrMalformedText, lead, i)
		}
		if i+size > len(body) {
			return "", fmt.Errorf("%w: truncated utf-8 sequence at %d", types.ErrMalformedText, i)
		}

		for _, cont := range body[i+1 : i+size] {
			if cont&0xC0 != 0x80 {
				return "", fmt.Errorf("%w: invalid utf-8 continuation byte 0x%02X at %d", types.ErrMalformedText, cont, i)
			}
			cp = cp<<6 | rune(cont&0x3F)
		}
		if cp < utf8Min[size] || !utf8.ValidRune(cp) {
			return "", fmt.Errorf("%w: invalid code point U+%04X at %d", types.ErrMalformedText, cp, i)
		}

		sb.WriteRune(cp)
		i += size
	}
	return sb.String(), nil
}

func encodeUTF16(text string, order binary.ByteOrder) []byte {
	out := make([]byte, 0, 2*len(text))
	for _, r := range text {
		cp := uint32(r)
		if cp < surrogateBase {
			out = appendUnit(out, order, uint16(cp))
			continue
		}
		cp -= surrogateBase
		out = appendUnit(out, order, uint16(surrogateHigh|(cp>>10)))
		out = appendUnit(out, order, uint16(surrogateLow|(cp&0x3FF)))
	}
	return out
}

func appendUnit(out []byte, order binary.ByteOrder, unit uint16) []byte {
	var b [2]byte
	order.PutUint16(b[:], unit)
	return append(out, b[:]...)
}

func decodeUTF16(body []byte, order binary.ByteOrder) (string, error) {
	if len(body)%2 != 0 {
		return "", fmt.Errorf("%w: utf-16 body has odd length %d", types.ErrMalformedText, len(body))
	}

	var sb strings.Builder
	sb.Grow(len(body))

	for i := 0; i < len(body); i += 2 {
		unit := rune(order.Uint16(body[i:]))
		switch {
		case unit < surrogateHigh || unit >= surrogateEnd:
			sb.WriteRune(unit)
		case unit >= surrogateLow:
			return "", fmt.Errorf("%w: unpaired low surrogate 0x%04X at %d", types.ErrMalformedText, unit, i)
		default:
			if i+4 > len(body) {
				return "", fmt.Errorf("%w: high surrogate 0x%04X at %d has no pair", types.ErrMalformedText, unit, i)
			}
			low := rune(order.Uint16(body[i+2:]))
			if low < surrogateLow || low >= surrogateEnd {
				return "", fmt.Errorf("%w: high surrogate 0x%04X at %d followed by 0x%04X", types.ErrMalformedText, unit, i, low)
			}
			sb.WriteRune(surrogateBase + ((unit-surrogateHigh)<<10 | (low - surrogateLow)))
			i += 2
		}
	}
	return sb.String(), nil
}
