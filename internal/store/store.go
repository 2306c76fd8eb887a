// Package store persists the pipeline's output tables as snappy-compressed
// columnar chunks in a leveldb instance (SPEC_FULL.md §4 domain stack),
// mirroring the teacher's core/rawdb accessor-over-KV-store idiom. Keys are
// namespaced by table name and row-chunk index so a table can be read back
// chunk-by-chunk without materializing the whole thing.
package store

import (
	"encoding/binary"

	"github.com/golang/snappy"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/probeum/cairo-adapter/internal/cerr"
	"github.com/probeum/cairo-adapter/internal/felt"
)

// ChunkRows bounds how many rows are grouped into one stored chunk.
const ChunkRows = 1 << 16

// Store wraps a leveldb database holding the adapter's output tables.
type Store struct {
	db *leveldb.DB
}

// Open creates or opens a leveldb database at dir.
func Open(dir string) (*Store, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, &cerr.IOError{Path: dir, Cause: err}
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func chunkKey(table string, chunk int) []byte {
	key := make([]byte, 0, len(table)+1+4)
	key = append(key, table...)
	key = append(key, ':')
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(chunk))
	return append(key, b[:]...)
}

// PutUint32Column writes col, split into ChunkRows-sized, snappy-compressed
// chunks, under the given table name.
func (s *Store) PutUint32Column(table string, col []uint32) error {
	for base, chunk := 0, 0; base < len(col); base, chunk = base+ChunkRows, chunk+1 {
		end := base + ChunkRows
		if end > len(col) {
			end = len(col)
		}
		raw := make([]byte, (end-base)*4)
		for i, v := range col[base:end] {
			binary.LittleEndian.PutUint32(raw[i*4:], v)
		}
		if err := s.db.Put(chunkKey(table, chunk), snappy.Encode(nil, raw), nil); err != nil {
			return &cerr.IOError{Path: table, Cause: err}
		}
	}
	return nil
}

// PutFeltColumn writes col, split into ChunkRows-sized, snappy-compressed
// chunks of 32-byte little-endian values, under the given table name.
func (s *Store) PutFeltColumn(table string, col []felt.Felt256) error {
	for base, chunk := 0, 0; base < len(col); base, chunk = base+ChunkRows, chunk+1 {
		end := base + ChunkRows
		if end > len(col) {
			end = len(col)
		}
		raw := make([]byte, 0, (end-base)*32)
		for _, v := range col[base:end] {
			b := v.Bytes32()
			raw = append(raw, b[:]...)
		}
		if err := s.db.Put(chunkKey(table, chunk), snappy.Encode(nil, raw), nil); err != nil {
			return &cerr.IOError{Path: table, Cause: err}
		}
	}
	return nil
}

// GetUint32Column reads back a column previously written with
// PutUint32Column, for the chunk index given.
func (s *Store) GetUint32Column(table string, chunk int) ([]uint32, error) {
	raw, err := s.db.Get(chunkKey(table, chunk), nil)
	if err != nil {
		return nil, &cerr.IOError{Path: table, Cause: err}
	}
	dec, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, &cerr.IOError{Path: table, Cause: err}
	}
	out := make([]uint32, len(dec)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(dec[i*4:])
	}
	return out, nil
}
