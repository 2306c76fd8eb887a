package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probeum/cairo-adapter/internal/felt"
	"github.com/probeum/cairo-adapter/internal/opcode"
)

func TestBuildReportsRowCounts(t *testing.T) {
	opcodes := []opcode.Opcode{opcode.Ret, opcode.Add}
	op0 := []uint32{1, 2}
	op1 := []uint32{3, 4}
	dst := []uint32{5, 6}
	values := []felt.Felt256{{Limb0: 1}, {Limb0: 2}, {Limb0: 3}}

	s := Build(opcodes, op0, op1, dst, values, 7)
	require.Equal(t, 2, s.StateTransitionRows)
	require.Equal(t, 3, s.UniqueMemoryValues)
	require.Equal(t, 7, s.InstructionsByPC)
	require.NotEmpty(t, s.Digest)
}

func TestBuildDigestIsDeterministic(t *testing.T) {
	opcodes := []opcode.Opcode{opcode.Ret, opcode.Add}
	op0 := []uint32{1, 2}
	op1 := []uint32{3, 4}
	dst := []uint32{5, 6}
	values := []felt.Felt256{{Limb0: 1}, {Limb0: 2}}

	a := Build(opcodes, op0, op1, dst, values, 0)
	b := Build(opcodes, op0, op1, dst, values, 0)
	require.Equal(t, a.Digest, b.Digest)
}

func TestBuildDigestChangesWithInput(t *testing.T) {
	op0 := []uint32{1, 2}
	op1 := []uint32{3, 4}
	dst := []uint32{5, 6}
	values := []felt.Felt256{{Limb0: 1}, {Limb0: 2}}

	a := Build([]opcode.Opcode{opcode.Ret, opcode.Add}, op0, op1, dst, values, 0)
	b := Build([]opcode.Opcode{opcode.Add, opcode.Ret}, op0, op1, dst, values, 0)
	require.NotEqual(t, a.Digest, b.Digest)
}

func TestBuildEmptyInputsProduceDigest(t *testing.T) {
	s := Build(nil, nil, nil, nil, nil, 0)
	require.Equal(t, 0, s.StateTransitionRows)
	require.Equal(t, 0, s.UniqueMemoryValues)
	require.NotEmpty(t, s.Digest)
}
