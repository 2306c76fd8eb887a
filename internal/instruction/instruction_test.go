package instruction

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probeum/cairo-adapter/internal/cerr"
)

func TestDecodeEncodeRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		word := r.Uint64()
		extHi := uint8(r.Intn(4)) & 0b11

		f, err := Decode(word, extHi, int64(i))
		if !wantExtensionOK(word, extHi) {
			require.Error(t, err)
			continue
		}
		require.NoError(t, err)
		require.GreaterOrEqual(t, int(f.Offset0), -32768)
		require.LessOrEqual(t, int(f.Offset0), 32767)
		require.Contains(t, []uint8{0, 1, 2, 3}, f.OpcodeExtension)

		gotWord, gotExtHi := f.Encode()
		require.Equal(t, word, gotWord, "word round-trip mismatch for word %#x", word)
		require.Equal(t, extHi, gotExtHi, "extHi round-trip mismatch for word %#x", word)
	}
}

func wantExtensionOK(word uint64, extHi uint8) bool {
	ext := uint8(word>>63) | (extHi&0b11)<<1
	return ext <= 3
}

// TestDecodeInvalidOpcodeExtension exercises the §8 "invalid extension"
// scenario literally: bits 63 and beyond of the conceptual instruction
// encode 4, which is out of the {0,1,2,3} range.
func TestDecodeInvalidOpcodeExtension(t *testing.T) {
	word := uint64(0) // bit 63 contributes 0
	extHi := uint8(2) // contributes 0b10 << 1 = 4
	_, err := Decode(word, extHi, 7)
	require.Error(t, err)
	var target *cerr.InvalidOpcodeExtensionError
	require.ErrorAs(t, err, &target)
	require.Equal(t, int64(7), target.Row)
	require.EqualValues(t, 4, target.Value)
}

func TestValidateOpcodeExtensionRejectsOutOfRange(t *testing.T) {
	err := validateOpcodeExtension(7, 3)
	require.Error(t, err)
	var target *cerr.InvalidOpcodeExtensionError
	require.ErrorAs(t, err, &target)
}

func TestDecodeRetExample(t *testing.T) {
	f, err := Decode(0x208b7fff7fff7ffe, 0, 0)
	require.NoError(t, err)
	require.EqualValues(t, -2, f.Offset0)
	require.EqualValues(t, -1, f.Offset1)
	require.EqualValues(t, -1, f.Offset2)
	require.True(t, f.OpcodeRet)
	require.True(t, f.PcUpdateJump)
}

func TestDecodeAddImmExample(t *testing.T) {
	f, err := Decode(0x480680017fff8000, 0, 0)
	require.NoError(t, err)
	require.EqualValues(t, 0, f.Offset0)
	require.EqualValues(t, -1, f.Offset1)
	require.EqualValues(t, 1, f.Offset2)
	require.True(t, f.Op1Imm)
	require.True(t, f.ResAdd)
	require.True(t, f.OpcodeAssertEq)
}
