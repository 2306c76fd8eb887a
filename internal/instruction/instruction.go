// Package instruction decodes a column of 64-bit encoded Cairo instructions
// into the 19 typed fields of spec §3/§4.3. Decoding is pure bit-twiddling:
// masks, shifts, and a bias subtraction for the three offsets.
package instruction

import "github.com/probeum/cairo-adapter/internal/cerr"

// Fields holds the 19 decoded fields of one instruction, per spec §3.
type Fields struct {
	Offset0 int16
	Offset1 int16
	Offset2 int16

	DstBaseFP   bool
	Op0BaseFP   bool
	Op1Imm      bool
	Op1BaseFP   bool
	Op1BaseAP   bool
	ResAdd      bool
	ResMul      bool

	PcUpdateJump    bool
	PcUpdateJumpRel bool
	PcUpdateJnz     bool

	ApUpdateAdd   bool
	ApUpdateAdd1  bool

	OpcodeCall     bool
	OpcodeRet      bool
	OpcodeAssertEq bool

	OpcodeExtension uint8
}

const bias = 1 << 15

func biasedOffset(raw uint16) int16 {
	return int16(int32(raw) - bias)
}

// Decode decodes a single encoded instruction per the bit layout in
// spec §3. word carries the three 16-bit offsets, the 15 boolean flags, and
// the low bit of opcode_extension (bits 0-63). The three offsets and 15
// flags already fill bits 0-62, leaving only bit 63 of word for
// opcode_extension; extHi supplies that field's two remaining bits (its low
// two bits only), sourced from beyond word's 64 bits — see the
// opcode_extension entry in DESIGN.md for why a single 64-bit word cannot
// carry a field that the invariant requires to range over {0,1,2,3} on its
// own. row is the originating trace row index, used only to annotate a
// validation error.
func Decode(word uint64, extHi uint8, row int64) (Fields, error) {
	f := Fields{
		Offset0: biasedOffset(uint16(word & 0xFFFF)),
		Offset1: biasedOffset(uint16((word >> 16) & 0xFFFF)),
		Offset2: biasedOffset(uint16((word >> 32) & 0xFFFF)),

		DstBaseFP: bit(word, 48),
		Op0BaseFP: bit(word, 49),
		Op1Imm:    bit(word, 50),
		Op1BaseFP: bit(word, 51),
		Op1BaseAP: bit(word, 52),
		ResAdd:    bit(word, 53),
		ResMul:    bit(word, 54),

		PcUpdateJump:    bit(word, 55),
		PcUpdateJumpRel: bit(word, 56),
		PcUpdateJnz:     bit(word, 57),

		ApUpdateAdd:  bit(word, 58),
		ApUpdateAdd1: bit(word, 59),

		OpcodeCall:     bit(word, 60),
		OpcodeRet:      bit(word, 61),
		OpcodeAssertEq: bit(word, 62),

		OpcodeExtension: uint8(word>>63) | (extHi&0b11)<<1,
	}
	if err := validateOpcodeExtension(f.OpcodeExtension, row); err != nil {
		return Fields{}, err
	}
	return f, nil
}

// validateOpcodeExtension enforces the opcode_extension invariant
// (0 <= value <= 3, spec §3).
func validateOpcodeExtension(v uint8, row int64) error {
	if v > 3 {
		return &cerr.InvalidOpcodeExtensionError{Row: row, Value: v}
	}
	return nil
}

func bit(word uint64, n uint) bool {
	return (word>>n)&1 == 1
}

// Encode reverses Decode, reconstructing the (word, extHi) pair that
// produces f. Used by the decoder round-trip property test (spec §8.1).
func (f Fields) Encode() (word uint64, extHi uint8) {
	word |= uint64(uint16(int32(f.Offset0)+bias)) & 0xFFFF
	word |= (uint64(uint16(int32(f.Offset1)+bias)) & 0xFFFF) << 16
	word |= (uint64(uint16(int32(f.Offset2)+bias)) & 0xFFFF) << 32
	word |= setBit(f.DstBaseFP, 48)
	word |= setBit(f.Op0BaseFP, 49)
	word |= setBit(f.Op1Imm, 50)
	word |= setBit(f.Op1BaseFP, 51)
	word |= setBit(f.Op1BaseAP, 52)
	word |= setBit(f.ResAdd, 53)
	word |= setBit(f.ResMul, 54)
	word |= setBit(f.PcUpdateJump, 55)
	word |= setBit(f.PcUpdateJumpRel, 56)
	word |= setBit(f.PcUpdateJnz, 57)
	word |= setBit(f.ApUpdateAdd, 58)
	word |= setBit(f.ApUpdateAdd1, 59)
	word |= setBit(f.OpcodeCall, 60)
	word |= setBit(f.OpcodeRet, 61)
	word |= setBit(f.OpcodeAssertEq, 62)
	word |= uint64(f.OpcodeExtension&1) << 63
	extHi = (f.OpcodeExtension >> 1) & 0b11
	return word, extHi
}

func setBit(v bool, n uint) uint64 {
	if v {
		return 1 << n
	}
	return 0
}

// Table is a columnar collection of decoded instructions, one per trace
// row, parallel to trace.Table.
type Table struct {
	Rows []Fields
}

// DecodeColumn decodes a column of encoded instruction words in order,
// failing fast on the first InvalidOpcodeExtensionError. extHi supplies the
// parallel column of opcode_extension high-bit carries (see Decode); pass a
// nil or short slice to treat every row's carry as zero.
func DecodeColumn(words []uint64, extHi []uint8) (*Table, error) {
	rows := make([]Fields, len(words))
	for i, w := range words {
		var hi uint8
		if i < len(extHi) {
			hi = extHi[i]
		}
		f, err := Decode(w, hi, int64(i))
		if err != nil {
			return nil, err
		}
		rows[i] = f
	}
	return &Table{Rows: rows}, nil
}
