// Package manifest produces an operator-facing, hashed summary of a
// completed pipeline run — the Go equivalent of original_source's main.py
// run-summary print, formalized as a logged digest (SPEC_FULL.md §5).
package manifest

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"github.com/probeum/cairo-adapter/internal/felt"
	"github.com/probeum/cairo-adapter/internal/opcode"
)

// Summary is the row-count and digest report for one run's output tables.
type Summary struct {
	StateTransitionRows int
	UniqueMemoryValues  int
	InstructionsByPC    int
	Digest              string
}

// Build computes row counts and a single Keccak256 digest over the
// serialized state_transitions opcode/address columns and the deduplicated
// value table, so two runs over identical inputs produce an identical,
// independently-verifiable digest.
func Build(opcodes []opcode.Opcode, op0Addr, op1Addr, dstAddr []uint32, values []felt.Felt256, instructionsByPC int) Summary {
	h := sha3.NewLegacyKeccak256()
	opBytes := make([]byte, len(opcodes))
	for i, o := range opcodes {
		opBytes[i] = byte(o)
	}
	h.Write(opBytes)
	writeUint32Column(h, op0Addr)
	writeUint32Column(h, op1Addr)
	writeUint32Column(h, dstAddr)
	for _, v := range values {
		b := v.Bytes32()
		h.Write(b[:])
	}
	sum := h.Sum(nil)
	return Summary{
		StateTransitionRows: len(op0Addr),
		UniqueMemoryValues:  len(values),
		InstructionsByPC:    instructionsByPC,
		Digest:              "0x" + hex.EncodeToString(sum),
	}
}

func writeUint32Column(h interface{ Write([]byte) (int, error) }, col []uint32) {
	var b [4]byte
	for _, v := range col {
		binary.LittleEndian.PutUint32(b[:], v)
		h.Write(b[:])
	}
}
