package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probeum/cairo-adapter/internal/felt"
)

func TestPutGetUint32ColumnRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	col := []uint32{1, 2, 3, 4, 5}
	require.NoError(t, s.PutUint32Column("pc", col))

	got, err := s.GetUint32Column("pc", 0)
	require.NoError(t, err)
	require.Equal(t, col, got)
}

func TestPutUint32ColumnMultipleChunks(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	col := make([]uint32, ChunkRows+10)
	for i := range col {
		col[i] = uint32(i)
	}
	require.NoError(t, s.PutUint32Column("pc", col))

	chunk0, err := s.GetUint32Column("pc", 0)
	require.NoError(t, err)
	require.Equal(t, col[:ChunkRows], chunk0)

	chunk1, err := s.GetUint32Column("pc", 1)
	require.NoError(t, err)
	require.Equal(t, col[ChunkRows:], chunk1)
}

func TestPutFeltColumn(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	col := []felt.Felt256{{Limb0: 1}, {Limb0: 2, Limb3: 9}}
	require.NoError(t, s.PutFeltColumn("memory_id_to_value", col))
}

func TestGetUnknownTableErrors(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.GetUint32Column("missing", 0)
	require.Error(t, err)
}
