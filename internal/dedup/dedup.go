// Package dedup assigns a dense id to each unique 256-bit memory value
// (spec §4.6). It emits two tables: IDToValue (the unique multiset of
// values, in first-appearance order) and AddressToID (the inner join of the
// memory table against IDToValue, keyed by value).
package dedup

import (
	"github.com/probeum/cairo-adapter/internal/cerr"
	"github.com/probeum/cairo-adapter/internal/felt"
	"github.com/probeum/cairo-adapter/internal/memory"
)

// Tables holds the deduplicator's two outputs.
type Tables struct {
	// IDToValue[id] is the unique value assigned that id.
	IDToValue []felt.Felt256
	// AddressToID[i] is the id of memory.Table.Value[i]'s value, aligned
	// with the source table's row order.
	AddressToID []uint32
}

// Build deduplicates tbl's values. Value equality is 32-byte memcmp,
// implemented by using the canonical byte form as a native Go map key —
// the same array-keyed-map idiom the teacher's state/trie packages use for
// common.Hash lookups. id overflow (more than 2^32 distinct values, i.e. an
// id past 2^32-1) is a fatal OverflowError.
func Build(tbl *memory.Table) (*Tables, error) {
	valueToID := make(map[[32]byte]uint32, tbl.Len())
	out := &Tables{
		AddressToID: make([]uint32, tbl.Len()),
	}
	for i := 0; i < tbl.Len(); i++ {
		key := tbl.Value[i].Bytes32()
		id, ok := valueToID[key]
		if !ok {
			next := len(out.IDToValue)
			if next > 0xFFFFFFFF {
				return nil, &cerr.OverflowError{Field: "memory_value_id", Row: int64(i), Value: uint64(next)}
			}
			id = uint32(next)
			valueToID[key] = id
			out.IDToValue = append(out.IDToValue, tbl.Value[i])
		}
		out.AddressToID[i] = id
	}
	return out, nil
}
