package sqlite

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/mesh-intelligence/cellbuf/internal/codec"
	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// cellRecord is one non-empty cell as carried in snapshot payloads and JSONL
// exports.
type cellRecord struct {
	Row       int        `json:"row" cbor:"1,keyasint"`
	Col       int        `json:"col" cbor:"2,keyasint"`
	Slot      int        `json:"slot" cbor:"3,keyasint"`
	Kind      types.Kind `json:"kind" cbor:"4,keyasint"`
	Magnitude int        `json:"magnitude,omitempty" cbor:"5,keyasint,omitempty"`
}

func (r cellRecord) address() types.Address {
	return types.Address{Row: r.Row, Col: r.Col, Slot: r.Slot}
}

func (r cellRecord) state() types.CellState {
	return types.CellState{Kind: r.Kind, Magnitude: r.Magnitude}
}

// validate rejects records that do not decode to a byte or that lie outside
// a gridWidth-wide region.
func (r cellRecord) validate(gridWidth int) error {
	if r.Row < 0 || r.Row >= gridWidth || r.Col < 0 || r.Col >= gridWidth ||
		r.Slot < 0 || r.Slot >= types.SlotsPerGroup {
		return fmt.Errorf("%w: address %s outside a %d-wide grid", types.ErrBadRecord, r.address(), gridWidth)
	}
	if _, err := codec.DecodeByte(r.state()); err != nil {
		return fmt.Errorf("%w: %s at %s: %v", types.ErrBadRecord, r.state(), r.address(), err)
	}
	return nil
}

// encMode encodes snapshot payloads with Core Deterministic Encoding, so the
// same region always yields the same bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("sqlite: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("sqlite: CBOR decoder initialization failed: " + err.Error())
	}
}

func encodeRecords(records []cellRecord) ([]byte, error) {
	return encMode.Marshal(records)
}

func decodeRecords(payload []byte) ([]cellRecord, error) {
	var records []cellRecord
	if err := decMode.Unmarshal(payload, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// regionRecords returns the region's cells in address order.
func regionRecords(q querier, region string) ([]cellRecord, error) {
	rows, err := q.Query(
		`SELECT grid_row, grid_col, slot, kind, magnitude FROM cells WHERE region = ?
         ORDER BY grid_row, grid_col, slot`,
		region,
	)
	if err != nil {
		return nil, fmt.Errorf("querying cells: %w", err)
	}
	defer rows.Close()

	var records []cellRecord
	for rows.Next() {
		var r cellRecord
		if err := rows.Scan(&r.Row, &r.Col, &r.Slot, &r.Kind, &r.Magnitude); err != nil {
			return nil, fmt.Errorf("scanning cell: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cells: %w", err)
	}
	return records, nil
}
