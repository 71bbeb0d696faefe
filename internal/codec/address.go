package codec

import "github.com/mesh-intelligence/cellbuf/pkg/types"

// ToAddress translates a linear offset into the cell coordinate of a
// gridWidth-wide region. Offsets are not range checked.
func ToAddress(offset, gridWidth int) types.Address {
	group := offset / types.SlotsPerGroup
	return types.Address{
		Row:  group / gridWidth,
		Col:  group % gridWidth,
		Slot: offset % types.SlotsPerGroup,
	}
}

// FromAddress is the inverse of ToAddress.
func FromAddress(addr types.Address, gridWidth int) int {
	return (addr.Row*gridWidth+addr.Col)*types.SlotsPerGroup + addr.Slot
}
