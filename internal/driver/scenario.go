package driver

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/cellbuf/pkg/buffer"
)

// scenarioHeader marks the start of a location list.
const scenarioHeader = 20

// Location is one entry of the demo location list.
type Location struct {
	X, Y, Z int32
}

func (l Location) String() string {
	return fmt.Sprintf("[%d,%d,%d]", l.X, l.Y, l.Z)
}

// ScenarioLocations is the list `scenario write` stores.
var ScenarioLocations = []Location{
	{X: 5, Y: -64, Z: 4},
	{X: 5, Y: -64, Z: 5},
}

// WriteLocations stores a header byte, a u16 count and one i32 triple per
// location, starting at offset 0.
func WriteLocations(buf *buffer.Buffer, locs []Location) error {
	if err := buf.WriteU8(scenarioHeader, buffer.At(0)); err != nil {
		return err
	}
	if err := buf.WriteU16(int64(len(locs))); err != nil {
		return err
	}
	for _, l := range locs {
		for _, v := range []int32{l.X, l.Y, l.Z} {
			if err := buf.WriteI32(int64(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadLocations parses what WriteLocations stored. A wrong header returns
// ErrBadHeader.
func ReadLocations(buf *buffer.Buffer) ([]Location, error) {
	header, err := buf.ReadU8(buffer.At(0))
	if err != nil {
		return nil, err
	}
	if header != scenarioHeader {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrBadHeader, scenarioHeader, header)
	}
	count, err := buf.ReadU16()
	if err != nil {
		return nil, err
	}

	locs := make([]Location, 0, count)
	for range count {
		var triple [3]int32
		for i := range triple {
			if triple[i], err = buf.ReadI32(); err != nil {
				return nil, err
			}
		}
		locs = append(locs, Location{X: triple[0], Y: triple[1], Z: triple[2]})
	}
	return locs, nil
}

func (d *Driver) scenario(args []string) (string, error) {
	pos, err := parseFlags(newFlagSet("scenario"), args)
	if err != nil {
		return "", err
	}
	if len(pos) != 1 {
		return "", fmt.Errorf("%w: scenario write|read", ErrUsage)
	}

	switch pos[0] {
	case "write":
		if err := WriteLocations(d.buf, ScenarioLocations); err != nil {
			return "", err
		}
		return fmt.Sprintf("wrote %d locations", len(ScenarioLocations)), nil
	case "read":
		locs, err := ReadLocations(d.buf)
		if err != nil {
			return "", err
		}
		lines := make([]string, len(locs))
		for i, l := range locs {
			lines[i] = l.String()
		}
		return strings.Join(lines, "\n"), nil
	default:
		return "", fmt.Errorf("%w: scenario write|read", ErrUsage)
	}
}
