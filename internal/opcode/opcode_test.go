package opcode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probeum/cairo-adapter/internal/instruction"
)

func TestClassifyRetExample(t *testing.T) {
	f, err := instruction.Decode(0x208b7fff7fff7ffe, 0, 0)
	require.NoError(t, err)
	require.Equal(t, Ret, Classify(f))
}

func TestClassifyAddImmExample(t *testing.T) {
	f, err := instruction.Decode(0x480680017fff8000, 0, 0)
	require.NoError(t, err)
	require.Equal(t, Add, Classify(f))
}

func TestClassifyCallRel(t *testing.T) {
	f, err := instruction.Decode(0x1104800180018000, 0, 0)
	require.NoError(t, err)
	require.Equal(t, CallRel, Classify(f))
}

func TestClassifyGenericFallback(t *testing.T) {
	// All-zero fields satisfy no predicate in the cascade (offset checks
	// alone rule every one of them out), so the default label applies.
	require.Equal(t, Generic, Classify(instruction.Fields{}))
}

func TestClassifyCascadeIsExclusive(t *testing.T) {
	// Every predicate in the cascade should be mutually exclusive on any
	// given row; run a handful of representative fields through every
	// predicate in the cascade and confirm at most one of them matches.
	samples := []instruction.Fields{
		{}, // generic
		{Offset0: -2, Offset1: -1, Offset2: -1, DstBaseFP: true, Op0BaseFP: true, Op1BaseFP: true, PcUpdateJump: true, OpcodeRet: true},
	}
	for _, f := range samples {
		matches := 0
		for _, c := range cascade {
			if c.pred(f) {
				matches++
			}
		}
		require.LessOrEqual(t, matches, 1)
	}
}

func TestOpcodeStringUnknown(t *testing.T) {
	require.Equal(t, "unknown_opcode", Opcode(255).String())
	require.Equal(t, "generic_opcode", Generic.String())
	require.Equal(t, "ret_opcode", Ret.String())
}
