package driver

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

type command struct {
	usage string
	run   func(d *Driver, args []string) (string, error)
}

var commands = map[string]command{
	"write":    {"write <type> <value> [--at N] [--le] [--charset utf8|utf16]", (*Driver).write},
	"read":     {"read <type> [--at N] [--le] [--charset utf8|utf16]", (*Driver).read},
	"clear":    {"clear", (*Driver).clear},
	"used":     {"used", (*Driver).used},
	"offset":   {"offset [N]", (*Driver).offset},
	"address":  {"address [--at N]", (*Driver).address},
	"remove":   {"remove <count> [--at N]", (*Driver).remove},
	"close":    {"close", (*Driver).close},
	"save":     {"save <name> [--force]", (*Driver).save},
	"load":     {"load <name>", (*Driver).load},
	"delete":   {"delete <name>", (*Driver).deleteSnapshot},
	"list":     {"list", (*Driver).list},
	"scenario": {"scenario write|read", (*Driver).scenario},
}

// Usage returns the usage line of the named command, or "" when no such
// command exists.
func Usage(name string) string {
	return commands[name].usage
}

// Help returns the usage line of every command, sorted by name.
func Help() string {
	var b strings.Builder
	b.WriteString("commands:\n")
	for _, name := range slices.Sorted(maps.Keys(commands)) {
		fmt.Fprintf(&b, "  %s\n", commands[name].usage)
	}
	fmt.Fprintf(&b, "types: %s", strings.Join(ValueTypes, " "))
	return b.String()
}

func (d *Driver) write(args []string) (string, error) {
	var f ioFlags
	fs := newFlagSet("write")
	f.register(fs, true)
	pos, err := parseFlags(fs, args)
	if err != nil {
		return "", err
	}
	if len(pos) != 2 {
		return "", fmt.Errorf("%w: write <type> <value>", ErrUsage)
	}
	opts, err := f.options(fs)
	if err != nil {
		return "", err
	}
	if err := WriteValue(d.buf, pos[0], pos[1], opts...); err != nil {
		return "", err
	}
	return fmt.Sprintf("offset %d", d.buf.Offset()), nil
}

func (d *Driver) read(args []string) (string, error) {
	var f ioFlags
	fs := newFlagSet("read")
	f.register(fs, true)
	pos, err := parseFlags(fs, args)
	if err != nil {
		return "", err
	}
	if len(pos) != 1 {
		return "", fmt.Errorf("%w: read <type>", ErrUsage)
	}
	opts, err := f.options(fs)
	if err != nil {
		return "", err
	}
	return ReadValue(d.buf, pos[0], opts...)
}

func (d *Driver) clear(args []string) (string, error) {
	if err := noArgs("clear", args); err != nil {
		return "", err
	}
	if err := d.buf.Clear(); err != nil {
		return "", err
	}
	return "cleared", nil
}

func (d *Driver) used(args []string) (string, error) {
	if err := noArgs("used", args); err != nil {
		return "", err
	}
	n, err := d.buf.UsedBytes()
	if err != nil {
		return "", err
	}
	return strconv.Itoa(n), nil
}

func (d *Driver) offset(args []string) (string, error) {
	fs := newFlagSet("offset")
	pos, err := parseFlags(fs, args)
	if err != nil {
		return "", err
	}
	switch len(pos) {
	case 0:
		if d.buf.Closed() {
			return "", types.ErrClosedBuffer
		}
		return strconv.Itoa(d.buf.Offset()), nil
	case 1:
		n, err := strconv.Atoi(pos[0])
		if err != nil {
			return "", invalidValue("offset", pos[0])
		}
		if err := d.buf.SetOffset(n); err != nil {
			return "", err
		}
		return strconv.Itoa(n), nil
	default:
		return "", fmt.Errorf("%w: offset [N]", ErrUsage)
	}
}

func (d *Driver) address(args []string) (string, error) {
	var f ioFlags
	fs := newFlagSet("address")
	f.register(fs, false)
	pos, err := parseFlags(fs, args)
	if err != nil {
		return "", err
	}
	if len(pos) != 0 {
		return "", fmt.Errorf("%w: address [--at N]", ErrUsage)
	}
	opts, err := f.options(fs)
	if err != nil {
		return "", err
	}
	addr, err := d.buf.OffsetAddress(opts...)
	if err != nil {
		return "", err
	}
	return addr.String(), nil
}

func (d *Driver) remove(args []string) (string, error) {
	var f ioFlags
	fs := newFlagSet("remove")
	f.register(fs, false)
	pos, err := parseFlags(fs, args)
	if err != nil {
		return "", err
	}
	if len(pos) != 1 {
		return "", fmt.Errorf("%w: remove <count>", ErrUsage)
	}
	count, err := strconv.Atoi(pos[0])
	if err != nil {
		return "", invalidValue("count", pos[0])
	}
	opts, err := f.options(fs)
	if err != nil {
		return "", err
	}
	if err := d.buf.Remove(count, opts...); err != nil {
		return "", err
	}
	return fmt.Sprintf("offset %d", d.buf.Offset()), nil
}

func (d *Driver) close(args []string) (string, error) {
	if err := noArgs("close", args); err != nil {
		return "", err
	}
	if err := d.buf.Close(); err != nil {
		return "", err
	}
	if d.store != nil {
		if err := d.store.SaveCursor(0); err != nil {
			return "", fmt.Errorf("saving cursor: %w", err)
		}
	}
	return "closed", nil
}

func (d *Driver) save(args []string) (string, error) {
	fs := newFlagSet("save")
	force := fs.Bool("force", false, "replace an existing snapshot")
	name, err := oneName(fs, "save", args)
	if err != nil {
		return "", err
	}
	s, err := d.snapshotter()
	if err != nil {
		return "", err
	}
	snap, err := s.SaveSnapshot(name, d.buf.GridWidth(), *force)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("saved %s (%d cells)", snap.Name, snap.CellCount), nil
}

func (d *Driver) load(args []string) (string, error) {
	name, err := oneName(newFlagSet("load"), "load", args)
	if err != nil {
		return "", err
	}
	s, err := d.snapshotter()
	if err != nil {
		return "", err
	}
	if d.buf.Closed() {
		return "", types.ErrClosedBuffer
	}
	snap, err := s.LoadSnapshot(name, d.buf.GridWidth())
	if err != nil {
		return "", err
	}
	if err := d.buf.SetOffset(0); err != nil {
		return "", err
	}
	return fmt.Sprintf("loaded %s (%d cells)", snap.Name, snap.CellCount), nil
}

func (d *Driver) deleteSnapshot(args []string) (string, error) {
	name, err := oneName(newFlagSet("delete"), "delete", args)
	if err != nil {
		return "", err
	}
	s, err := d.snapshotter()
	if err != nil {
		return "", err
	}
	if err := s.DeleteSnapshot(name); err != nil {
		return "", err
	}
	return "deleted " + name, nil
}

func (d *Driver) list(args []string) (string, error) {
	if err := noArgs("list", args); err != nil {
		return "", err
	}
	s, err := d.snapshotter()
	if err != nil {
		return "", err
	}
	snaps, err := s.ListSnapshots()
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(snaps))
	for _, snap := range snaps {
		lines = append(lines, fmt.Sprintf("%s\t%d cells\twidth %d\t%s",
			snap.Name, snap.CellCount, snap.GridWidth, snap.CreatedAt.Format("2006-01-02 15:04:05")))
	}
	return strings.Join(lines, "\n"), nil
}

func noArgs(name string, args []string) error {
	pos, err := parseFlags(newFlagSet(name), args)
	if err != nil {
		return err
	}
	if len(pos) != 0 {
		return fmt.Errorf("%w: %s takes no arguments", ErrUsage, name)
	}
	return nil
}

// oneName parses args against fs and returns the single snapshot name.
func oneName(fs *pflag.FlagSet, name string, args []string) (string, error) {
	pos, err := parseFlags(fs, args)
	if err != nil {
		return "", err
	}
	if len(pos) != 1 {
		return "", fmt.Errorf("%w: %s <name>", ErrUsage, name)
	}
	return pos[0], nil
}
