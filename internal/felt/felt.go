// Package felt implements Felt256, the 256-bit little-endian field element
// used by memory cells and operand values. Per spec, values are kept as the
// raw four-limb representation read from disk; no modular reduction against
// the Cairo base field prime is ever performed here.
package felt

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"
)

// Felt256 is a 256-bit value stored as four little-endian 64-bit limbs,
// limb 0 being the least significant.
type Felt256 struct {
	Limb0, Limb1, Limb2, Limb3 uint64
}

// Zero is the all-zero 256-bit constant.
var Zero = Felt256{}

// IsZero reports whether f equals the all-zero constant.
func (f Felt256) IsZero() bool {
	return f.Limb0 == 0 && f.Limb1 == 0 && f.Limb2 == 0 && f.Limb3 == 0
}

// Equal reports 32-byte equality between f and g (canonical bytes, no
// reduction).
func (f Felt256) Equal(g Felt256) bool {
	return f == g
}

// FromBytes32 reads a little-endian 256-bit value out of a 32-byte slice.
func FromBytes32(b []byte) Felt256 {
	return Felt256{
		Limb0: binary.LittleEndian.Uint64(b[0:8]),
		Limb1: binary.LittleEndian.Uint64(b[8:16]),
		Limb2: binary.LittleEndian.Uint64(b[16:24]),
		Limb3: binary.LittleEndian.Uint64(b[24:32]),
	}
}

// Bytes32 renders f back to its canonical little-endian 32-byte form. Used
// by the memory deduplicator to derive a map key and by the output store to
// serialize the id->value table.
func (f Felt256) Bytes32() [32]byte {
	var b [32]byte
	binary.LittleEndian.PutUint64(b[0:8], f.Limb0)
	binary.LittleEndian.PutUint64(b[8:16], f.Limb1)
	binary.LittleEndian.PutUint64(b[16:24], f.Limb2)
	binary.LittleEndian.PutUint64(b[24:32], f.Limb3)
	return b
}

// Decimal renders f as a base-10 string for error and debug messages only.
// It goes through holiman/uint256, which expects big-endian bytes, so the
// little-endian limb order is reversed on the way in; nothing on the
// correctness-critical decode/compare path depends on this conversion.
func (f Felt256) Decimal() string {
	be := f.Bytes32()
	for i, j := 0, len(be)-1; i < j; i, j = i+1, j-1 {
		be[i], be[j] = be[j], be[i]
	}
	var u uint256.Int
	u.SetBytes(be[:])
	return u.Dec()
}

func (f Felt256) String() string {
	b := f.Bytes32()
	return fmt.Sprintf("0x%x", reverse(b[:]))
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[i] = b[len(b)-1-i]
	}
	return out
}
