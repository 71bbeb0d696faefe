package codec

import (
	"fmt"

	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// kindBase is the byte value just below the first value each kind encodes.
var kindBase = map[types.Kind]int{
	types.KindA: 0,
	types.KindB: 64,
	types.KindC: 128,
	types.KindD: 192,
}

// kindMaxMagnitude bounds the magnitude of each kind. KindD stops at 63
// because 192+63 is the last byte value.
var kindMaxMagnitude = map[types.Kind]int{
	types.KindA: types.MaxMagnitude,
	types.KindB: types.MaxMagnitude,
	types.KindC: types.MaxMagnitude,
	types.KindD: 255 - 192,
}

// EncodeByte maps a byte onto its CellState.
func EncodeByte(v byte) types.CellState {
	n := int(v)
	switch {
	case n == 0:
		return types.CellState{Kind: types.KindZero}
	case n <= 64:
		return types.CellState{Kind: types.KindA, Magnitude: n}
	case n <= 128:
		return types.CellState{Kind: types.KindB, Magnitude: n - 64}
	case n <= 192:
		return types.CellState{Kind: types.KindC, Magnitude: n - 128}
	default:
		return types.CellState{Kind: types.KindD, Magnitude: n - 192}
	}
}

// DecodeByte maps a CellState back onto its byte. An empty state returns
// ErrOutOfBounds; any state EncodeByte never produces returns ErrCorruptCell.
func DecodeByte(s types.CellState) (byte, error) {
	switch s.Kind {
	case types.KindEmpty:
		return 0, types.ErrOutOfBounds
	case types.KindZero:
		if s.Magnitude != 0 {
			return 0, fmt.Errorf("%w: %s with magnitude %d", types.ErrCorruptCell, s.Kind, s.Magnitude)
		}
		return 0, nil
	}

	base, ok := kindBase[s.Kind]
	if !ok {
		return 0, fmt.Errorf("%w: %s", types.ErrCorruptCell, s.Kind)
	}
	if s.Magnitude < 1 || s.Magnitude > kindMaxMagnitude[s.Kind] {
		return 0, fmt.Errorf("%w: %s with magnitude %d", types.ErrCorruptCell, s.Kind, s.Magnitude)
	}
	return byte(base + s.Magnitude), nil
}
