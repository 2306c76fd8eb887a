// Package operand computes the effective addresses of the three operand
// slots (op0, op1, dst) from decoded instruction fields plus the trace's
// ap/fp/pc registers, and joins each address against the memory table to
// produce operand values (spec §4.5).
package operand

import (
	"github.com/VictoriaMetrics/fastcache"

	"github.com/probeum/cairo-adapter/internal/felt"
	"github.com/probeum/cairo-adapter/internal/instruction"
	"github.com/probeum/cairo-adapter/internal/memory"
)

// Resolved holds the three operand addresses and their (possibly missing)
// memory values for one row.
type Resolved struct {
	Op0Addr uint32
	Op0     felt.Felt256
	Op0OK   bool

	Op1Addr uint32
	Op1     felt.Felt256
	Op1OK   bool

	DstAddr uint32
	Dst     felt.Felt256
	DstOK   bool
}

// Index is an address->value lookup built once from a memory.Table and
// reused for all three operand joins of every row. It is backed by
// VictoriaMetrics/fastcache so that memory tables far larger than
// comfortable Go-map overhead (multi-GB dumps per spec §1) can still be
// queried without holding two copies of the data in a native map plus the
// original columns.
type Index struct {
	cache *fastcache.Cache
}

// BuildIndex constructs an Index from tbl. First-wins policy: spec §9 Open
// Question 1 is resolved by keeping only the first value observed for a
// given address and ignoring later duplicates.
//
// fastcache is a fixed-capacity ring buffer: once the working set it holds
// exceeds the size passed to fastcache.New, it evicts the least-recently-
// touched entries to make room for new ones, and an evicted entry reads
// back as absent rather than as its (still correct) value. Unlike the
// instruction decode cache, a miss here is not self-correcting — it turns
// a present address into a silently missing operand join. cacheSizeFor
// sizes the cache for every row's 4-byte key plus 32-byte value up front
// (with headroom for fastcache's own bucket overhead), so this only bites
// if that sizing assumption is wrong; it is not re-validated at runtime.
func BuildIndex(tbl *memory.Table) *Index {
	c := fastcache.New(cacheSizeFor(tbl.Len()))
	var key [4]byte
	for i := 0; i < tbl.Len(); i++ {
		putAddr(&key, tbl.Address[i])
		if c.Has(key[:]) {
			continue
		}
		v := tbl.Value[i].Bytes32()
		c.Set(key[:], v[:])
	}
	return &Index{cache: c}
}

func cacheSizeFor(rows int) int {
	// fastcache requires a minimum working set; size generously for the
	// number of 32-byte values plus 4-byte keys we expect to hold.
	size := rows * 48
	if size < 32*1024*1024 {
		size = 32 * 1024 * 1024
	}
	return size
}

func putAddr(key *[4]byte, addr uint32) {
	key[0] = byte(addr)
	key[1] = byte(addr >> 8)
	key[2] = byte(addr >> 16)
	key[3] = byte(addr >> 24)
}

// Lookup returns the value stored at addr and whether it was present.
func (ix *Index) Lookup(addr uint32) (felt.Felt256, bool) {
	var key [4]byte
	putAddr(&key, addr)
	buf, ok := ix.cache.HasGet(nil, key[:])
	if !ok || len(buf) != 32 {
		return felt.Felt256{}, false
	}
	var b [32]byte
	copy(b[:], buf)
	return felt.FromBytes32(b[:]), true
}

// Resolve computes and joins the three operand addresses for one row. ap,
// fp, pc are that row's trace registers; op0Addr is passed in separately
// because op1's "double-deref" base needs the already-resolved op0 value.
func Resolve(f instruction.Fields, ap, fp, pc uint32, ix *Index) Resolved {
	var r Resolved

	op0Base := fp
	if !f.Op0BaseFP {
		op0Base = ap
	}
	r.Op0Addr = op0Base + uint32(int32(f.Offset1))
	r.Op0, r.Op0OK = ix.Lookup(r.Op0Addr)

	var op1Base uint32
	op1BaseOK := true
	switch {
	case f.Op1BaseFP:
		op1Base = fp
	case f.Op1BaseAP:
		op1Base = ap
	case f.Op1Imm:
		op1Base = pc + 1
	default:
		// Double-deref: op1's base is the op0 value itself. If op0's own
		// join missed, there is no real base to deref — propagate the miss
		// instead of deref'ing the zero-value Felt256 sentinel as if it
		// were a genuine address.
		op1Base = op0ValueAsAddress(r.Op0)
		op1BaseOK = r.Op0OK
	}
	if op1BaseOK {
		r.Op1Addr = op1Base + uint32(int32(f.Offset2))
		r.Op1, r.Op1OK = ix.Lookup(r.Op1Addr)
	}

	dstBase := fp
	if !f.DstBaseFP {
		dstBase = ap
	}
	r.DstAddr = dstBase + uint32(int32(f.Offset0))
	r.Dst, r.DstOK = ix.Lookup(r.DstAddr)

	return r
}

// op0ValueAsAddress reinterprets a looked-up op0 Felt256 as a u32 address
// for the double-deref operand form: only the low 32 bits are meaningful,
// matching the domain's u32 address space.
func op0ValueAsAddress(v felt.Felt256) uint32 {
	return uint32(v.Limb0)
}

// ResolveColumn resolves every row given its decoded fields and matching
// trace registers.
func ResolveColumn(fields []instruction.Fields, ap, fp, pc []uint32, ix *Index) []Resolved {
	out := make([]Resolved, len(fields))
	for i := range fields {
		out[i] = Resolve(fields[i], ap[i], fp[i], pc[i], ix)
	}
	return out
}
