package felt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZeroIsZero(t *testing.T) {
	require.True(t, Zero.IsZero())
	require.True(t, Felt256{}.IsZero())
	require.False(t, Felt256{Limb0: 1}.IsZero())
	require.False(t, Felt256{Limb3: 1}.IsZero())
}

func TestEqual(t *testing.T) {
	a := Felt256{Limb0: 1, Limb1: 2, Limb2: 3, Limb3: 4}
	b := Felt256{Limb0: 1, Limb1: 2, Limb2: 3, Limb3: 4}
	c := Felt256{Limb0: 1, Limb1: 2, Limb2: 3, Limb3: 5}
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestBytes32RoundTrip(t *testing.T) {
	f := Felt256{Limb0: 0x0102030405060708, Limb1: 0xAABBCCDDEEFF0011, Limb2: 1, Limb3: 0xFFFFFFFFFFFFFFFF}
	b := f.Bytes32()
	got := FromBytes32(b[:])
	require.Equal(t, f, got)
}

func TestBytes32LittleEndianLayout(t *testing.T) {
	f := Felt256{Limb0: 1}
	b := f.Bytes32()
	require.Equal(t, byte(1), b[0])
	for _, v := range b[1:] {
		require.Equal(t, byte(0), v)
	}
}

func TestDecimalZero(t *testing.T) {
	require.Equal(t, "0", Zero.Decimal())
}

func TestDecimalSmallValue(t *testing.T) {
	f := Felt256{Limb0: 42}
	require.Equal(t, "42", f.Decimal())
}

func TestStringIsHex(t *testing.T) {
	f := Felt256{Limb0: 0xFF}
	require.Equal(t, "0x00000000000000000000000000000000000000000000000000000000000000ff", f.String())
}
