package types

import "fmt"

// SlotsPerGroup is the number of cells that share one (row, col) grid
// position.
const SlotsPerGroup = 27

// MaxMagnitude is the largest magnitude a non-zero cell kind can carry.
const MaxMagnitude = 64

// Kind identifies the family of a CellState. The zero value KindEmpty marks
// a cell that has never been written.
type Kind uint8

// Cell kinds. KindZero encodes byte 0; KindA through KindD each cover a run
// of up to 64 consecutive byte values.
const (
	KindEmpty Kind = iota
	KindZero
	KindA
	KindB
	KindC
	KindD
)

var kindNames = map[Kind]string{
	KindEmpty: "empty",
	KindZero:  "zero",
	KindA:     "a",
	KindB:     "b",
	KindC:     "c",
	KindD:     "d",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// CellState is the content of one cell. Magnitude is zero for KindZero and
// KindEmpty, and in [1, MaxMagnitude] for the other kinds.
type CellState struct {
	Kind      Kind `json:"kind" cbor:"1,keyasint"`
	Magnitude int  `json:"magnitude,omitempty" cbor:"2,keyasint,omitempty"`
}

// Empty reports whether the cell has never been written.
func (s CellState) Empty() bool {
	return s.Kind == KindEmpty
}

func (s CellState) String() string {
	switch s.Kind {
	case KindEmpty, KindZero:
		return s.Kind.String()
	default:
		return fmt.Sprintf("%s×%d", s.Kind, s.Magnitude)
	}
}

// Address is a cell coordinate inside a region.
type Address struct {
	Row  int `json:"row"`
	Col  int `json:"col"`
	Slot int `json:"slot"`
}

func (a Address) String() string {
	return fmt.Sprintf("[%d, %d, %d]", a.Row, a.Col, a.Slot)
}

// Capacity returns the number of cells, and therefore bytes, in a region of
// the given grid width.
func Capacity(gridWidth int) int {
	return gridWidth * gridWidth * SlotsPerGroup
}
