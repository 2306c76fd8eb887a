package instruction

import (
	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize bounds how many distinct pc values are memoized. Real
// Cairo traces revisit the same handful of pc values across millions of
// steps (loops), so a modest bound captures almost all repeats while
// keeping the cache's own footprint small.
const DefaultCacheSize = 1 << 16

// Cache memoizes decoded instructions by pc to avoid redecoding the same
// word on every loop iteration. A miss is always safe: Decode is a pure
// function of its input word, so the LRU's eviction never produces stale
// results, only a recomputation.
//
// The instructions_by_pc output table (spec §6 Outputs) is the original's
// state_transitions.unique("pc") — every distinct pc, not just the ones
// still resident in the LRU. byPC is sized for typical loop locality and
// will evict well before that on a program with more than DefaultCacheSize
// distinct pcs, so the output table is accumulated separately in byPCAll,
// an unbounded map that every decoded pc is recorded into regardless of
// whether it hit or missed the LRU.
type Cache struct {
	byPC    *lru.Cache
	byPCAll map[uint32]Fields
}

// NewCache creates a pc-keyed decode cache with capacity entries.
func NewCache(capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	c, err := lru.New(capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{byPC: c, byPCAll: make(map[uint32]Fields)}, nil
}

// DecodeAtPC decodes word/extHi (the instruction encoded at pc, see Decode)
// through the cache, returning the decoded fields and whether they were
// served from the LRU. A pc visited before but evicted since reports false.
func (c *Cache) DecodeAtPC(pc uint32, word uint64, extHi uint8, row int64) (Fields, bool, error) {
	if v, ok := c.byPC.Get(pc); ok {
		return v.(Fields), true, nil
	}
	f, err := Decode(word, extHi, row)
	if err != nil {
		return Fields{}, false, err
	}
	c.byPC.Add(pc, f)
	c.byPCAll[pc] = f
	return f, false, nil
}

// InstructionsByPC returns every distinct pc decoded so far, keyed by pc,
// for serialization as the instructions_by_pc output. Unlike the LRU
// backing DecodeAtPC, this table never drops an entry to eviction.
func (c *Cache) InstructionsByPC() map[uint32]Fields {
	out := make(map[uint32]Fields, len(c.byPCAll))
	for pc, f := range c.byPCAll {
		out[pc] = f
	}
	return out
}
