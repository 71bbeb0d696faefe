package types

import (
	"fmt"
	"strings"
)

// Charset selects the text encoding used for length-prefixed strings.
type Charset string

// Supported charsets.
const (
	CharsetUTF8  Charset = "utf8"
	CharsetUTF16 Charset = "utf16"
)

// Validate returns ErrInvalidCharset unless c is a supported charset.
func (c Charset) Validate() error {
	switch c {
	case CharsetUTF8, CharsetUTF16:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCharset, string(c))
	}
}

// ParseCharset maps a user-supplied name ("utf8", "UTF-8", "utf16", ...) to a
// Charset. Returns ErrInvalidCharset for anything else.
func ParseCharset(name string) (Charset, error) {
	switch strings.ReplaceAll(strings.ToLower(name), "-", "") {
	case "utf8":
		return CharsetUTF8, nil
	case "utf16":
		return CharsetUTF16, nil
	default:
		return "", ErrInvalidCharset
	}
}
