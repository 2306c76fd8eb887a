package witness

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probeum/cairo-adapter/internal/opcode"
)

type fakeRows struct {
	opcodes []opcode.Opcode
}

func (f *fakeRows) Len() int                       { return len(f.opcodes) }
func (f *fakeRows) OpcodeAt(i int) opcode.Opcode    { return f.opcodes[i] }
func (f *fakeRows) Column(name string) (interface{}, bool) { return nil, false }

func TestSelectFiltersByOpcode(t *testing.T) {
	src := &fakeRows{opcodes: []opcode.Opcode{opcode.Ret, opcode.Add, opcode.Ret, opcode.Mul, opcode.Add}}

	require.Equal(t, []int{1, 4}, Select(src, AddOpcodeSmall))
	require.Equal(t, []int{0, 2}, Select(src, RetOpcode))
	require.Equal(t, []int{3}, Select(src, MulOpcode))
}

func TestSelectNoMatches(t *testing.T) {
	src := &fakeRows{opcodes: []opcode.Opcode{opcode.Ret, opcode.Ret}}
	require.Empty(t, Select(src, AddOpcodeSmall))
}

func TestAllProjectionsHaveColumns(t *testing.T) {
	for _, p := range All {
		require.NotEmpty(t, p.Name)
		require.NotEmpty(t, p.Columns)
	}
}
