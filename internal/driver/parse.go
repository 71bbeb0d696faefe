package driver

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/cellbuf/pkg/buffer"
	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// Tokenize splits a command line on blanks. A double-quoted token may hold
// blanks and Go escape sequences.
func Tokenize(line string) ([]string, error) {
	var tokens []string
	for i := 0; i < len(line); {
		switch c := line[i]; {
		case c == ' ' || c == '\t':
			i++
		case c == '"':
			j := i + 1
			for j < len(line) && line[j] != '"' {
				if line[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(line) {
				return nil, fmt.Errorf("%w: unterminated quote", ErrUsage)
			}
			s, err := strconv.Unquote(line[i : j+1])
			if err != nil {
				return nil, fmt.Errorf("%w: bad quoted token %s", ErrUsage, line[i:j+1])
			}
			tokens = append(tokens, s)
			i = j + 1
		default:
			j := i
			for j < len(line) && line[j] != ' ' && line[j] != '\t' {
				j++
			}
			tokens = append(tokens, line[i:j])
			i = j
		}
	}
	return tokens, nil
}

// ioFlags are the per-call buffer options shared by read, write, address
// and remove.
type ioFlags struct {
	at      int
	le      bool
	charset string
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	return fs
}

func (f *ioFlags) register(fs *pflag.FlagSet, withEncoding bool) {
	fs.IntVar(&f.at, "at", 0, "explicit offset; the cursor moves there first")
	if withEncoding {
		fs.BoolVar(&f.le, "le", false, "little-endian byte order")
		fs.StringVar(&f.charset, "charset", string(types.CharsetUTF8), "string charset (utf8, utf16)")
	}
}

func (f *ioFlags) options(fs *pflag.FlagSet) ([]buffer.Option, error) {
	var opts []buffer.Option
	if fs.Changed("at") {
		opts = append(opts, buffer.At(f.at))
	}
	if f.le {
		opts = append(opts, buffer.LittleEndian())
	}
	if fs.Changed("charset") {
		cs, err := types.ParseCharset(f.charset)
		if err != nil {
			return nil, err
		}
		opts = append(opts, buffer.Charset(cs))
	}
	return opts, nil
}

// parseFlags parses args against fs and returns the positional arguments.
// Only long flags are recognized, so a token like -64 stays positional.
func parseFlags(fs *pflag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(reorder(fs, args)); err != nil {
		if err == pflag.ErrHelp {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return fs.Args(), nil
}

// reorder moves long flags (and their values) ahead of a "--" separator
// and every other token behind it. A bare -h asks for help only before the
// first positional argument; after it, -h is a value.
func reorder(fs *pflag.FlagSet, args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			positional = append(positional, args[i+1:]...)
			i = len(args)
		case arg == "-h" && len(positional) > 0:
			positional = append(positional, arg)
		case arg == "-h" || strings.HasPrefix(arg, "--"):
			flags = append(flags, arg)
			name := strings.TrimPrefix(arg, "--")
			if strings.Contains(name, "=") {
				continue
			}
			if f := fs.Lookup(name); f != nil && f.NoOptDefVal == "" && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		default:
			positional = append(positional, arg)
		}
	}
	return append(append(flags, "--"), positional...)
}
