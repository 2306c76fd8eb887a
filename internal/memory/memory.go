// Package memory streams the Cairo VM's memory.bin file — a flat sequence
// of fixed 40-byte (address, value limb0..3) records — into a columnar
// Table (spec §3, §4.2). Duplicate addresses are tolerated here; policy for
// resolving them is applied downstream by internal/operand's BuildIndex
// (first-wins, see DESIGN.md Open Question 1).
package memory

import (
	"context"
	"encoding/binary"
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/probeum/cairo-adapter/internal/cerr"
	"github.com/probeum/cairo-adapter/internal/felt"
	"github.com/probeum/cairo-adapter/internal/log"
)

// RecordSize is the on-disk width of one memory record: address plus four
// value limbs, all little-endian u64s.
const RecordSize = 40

// DefaultChunkRecords processes roughly 1 MiB of records per logged chunk.
const DefaultChunkRecords = (1 << 20) / RecordSize

// Table is the columnar memory table: parallel Address/Value slices, in
// file order.
type Table struct {
	Address []uint32
	Value   []felt.Felt256
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Address) }

// Options configures the reader's chunking discipline.
type Options struct {
	ChunkRecords int
	// OnChunk, if set, is invoked after each chunk is processed — see
	// trace.Options.OnChunk for the rationale.
	OnChunk func(chunkIdx, rows int)
}

// Read streams path into a Table. File length must be a multiple of
// RecordSize; a partial trailing record is a TruncatedRecordError. An
// address that does not fit into u32 is a fatal OverflowError. Value limbs
// are stored raw, never reduced modulo the field prime.
func Read(ctx context.Context, path string, opts Options) (*Table, error) {
	chunk := opts.ChunkRecords
	if chunk <= 0 {
		chunk = DefaultChunkRecords
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &cerr.IOError{Path: path, Cause: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &cerr.IOError{Path: path, Cause: err}
	}
	size := info.Size()
	if size%RecordSize != 0 {
		return nil, &cerr.TruncatedRecordError{Path: path, Offset: (size / RecordSize) * RecordSize}
	}

	data, closeData, err := mapOrRead(f, size)
	if err != nil {
		return nil, &cerr.IOError{Path: path, Cause: err}
	}
	defer closeData()

	n := int(size / RecordSize)
	tbl := &Table{
		Address: make([]uint32, n),
		Value:   make([]felt.Felt256, n),
	}

	chunkIdx := 0
	for base := 0; base < n; base += chunk {
		if err := ctx.Err(); err != nil {
			return nil, &cerr.CancelledError{}
		}
		end := base + chunk
		if end > n {
			end = n
		}
		for i := base; i < end; i++ {
			off := i * RecordSize
			addr := binary.LittleEndian.Uint64(data[off : off+8])
			if addr > 0xFFFFFFFF {
				return nil, &cerr.OverflowError{Field: "address", Row: int64(i), Value: addr}
			}
			tbl.Address[i] = uint32(addr)
			tbl.Value[i] = felt.FromBytes32(data[off+8 : off+40])
		}
		log.Info("memory chunk processed", "reader", "MemoryReader", "chunk", chunkIdx, "rows", end-base)
		if opts.OnChunk != nil {
			opts.OnChunk(chunkIdx, end-base)
		}
		chunkIdx++
	}
	return tbl, nil
}

// mapOrRead mirrors trace.Read's mapping discipline; duplicated rather than
// shared because the two readers must not depend on each other's package
// for an orthogonal streaming concern.
func mapOrRead(f *os.File, size int64) ([]byte, func(), error) {
	if size == 0 {
		return nil, func() {}, nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		buf := make([]byte, size)
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, nil, err
		}
		return buf, func() {}, nil
	}
	return []byte(m), func() { m.Unmap() }, nil
}
