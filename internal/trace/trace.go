// Package trace streams the Cairo VM's trace.bin file — a flat sequence of
// fixed 24-byte (ap, fp, pc) records — into a columnar Table. Record order
// in the file is preserved as row order (spec §3, §4.1).
package trace

import (
	"context"
	"encoding/binary"
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/probeum/cairo-adapter/internal/cerr"
	"github.com/probeum/cairo-adapter/internal/log"
)

// RecordSize is the on-disk width of one trace record: three little-endian
// u64s (ap, fp, pc).
const RecordSize = 24

// DefaultChunkRecords processes roughly 1 MiB of records per logged chunk.
const DefaultChunkRecords = (1 << 20) / RecordSize

// Table is the columnar trace table: parallel AP/FP/PC slices, one entry
// per executed step, in file order.
type Table struct {
	AP []uint32
	FP []uint32
	PC []uint32
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.PC) }

// Options configures the reader's chunking discipline.
type Options struct {
	// ChunkRecords is the number of records processed (and logged) per
	// chunk. Zero selects DefaultChunkRecords.
	ChunkRecords int
	// OnChunk, if set, is invoked after each chunk is processed and before
	// the next chunk's cancellation check — it lets callers (tests, the
	// pipeline's cancel-after-N-chunks knob) observe or request
	// cancellation at a true chunk boundary.
	OnChunk func(chunkIdx, rows int)
}

// Read streams path into a Table. File length must be a multiple of
// RecordSize; a dangling partial record is a TruncatedRecordError. Any u64
// field that does not fit into u32 is a fatal OverflowError.
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
		AP: make([]uint32, n),
		FP: make([]uint32, n),
		PC: make([]uint32, n),
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
			ap := binary.LittleEndian.Uint64(data[off : off+8])
			fp := binary.LittleEndian.Uint64(data[off+8 : off+16])
			pc := binary.LittleEndian.Uint64(data[off+16 : off+24])
			if ap > 0xFFFFFFFF {
				return nil, &cerr.OverflowError{Field: "ap", Row: int64(i), Value: ap}
			}
			if fp > 0xFFFFFFFF {
				return nil, &cerr.OverflowError{Field: "fp", Row: int64(i), Value: fp}
			}
			if pc > 0xFFFFFFFF {
				return nil, &cerr.OverflowError{Field: "pc", Row: int64(i), Value: pc}
			}
			tbl.AP[i] = uint32(ap)
			tbl.FP[i] = uint32(fp)
			tbl.PC[i] = uint32(pc)
		}
		log.Info("trace chunk processed", "reader", "TraceReader", "chunk", chunkIdx, "rows", end-base)
		if opts.OnChunk != nil {
			opts.OnChunk(chunkIdx, end-base)
		}
		chunkIdx++
	}
	return tbl, nil
}

// mapOrRead returns a zero-copy view of the file via mmap when possible,
// falling back to a plain read for filesystems or sizes where mapping an
// empty or unusual file would fail.
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
