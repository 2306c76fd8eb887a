// Package pipeline composes TraceReader, MemoryReader, InstructionDecoder,
// OpcodeClassifier, OperandResolver and MemoryDeduplicator into the
// end-to-end trace+memory -> state_transitions dataset (spec §4.7). It
// reasserts trace row order before jnz refinement, runs the two readers
// concurrently, and honors chunk-boundary cancellation.
package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/probeum/cairo-adapter/internal/cerr"
	"github.com/probeum/cairo-adapter/internal/dedup"
	"github.com/probeum/cairo-adapter/internal/felt"
	"github.com/probeum/cairo-adapter/internal/instruction"
	"github.com/probeum/cairo-adapter/internal/log"
	"github.com/probeum/cairo-adapter/internal/memory"
	"github.com/probeum/cairo-adapter/internal/opcode"
	"github.com/probeum/cairo-adapter/internal/operand"
	"github.com/probeum/cairo-adapter/internal/trace"
)

// Options configures a single pipeline run.
type Options struct {
	TracePath    string
	MemoryPath   string
	ChunkRecords int
	// CancelAfterChunks, if non-zero, requests cancellation once either
	// reader (trace or memory) has finished this many chunks — a testing
	// knob for the Cancelled error path.
	CancelAfterChunks int
}

// StateTransitions is the pipeline's primary output table: one row per
// trace step, per spec §3's StateTransition row.
type StateTransitions struct {
	AP, FP, PC []uint32
	Fields     []instruction.Fields
	Opcode     []opcode.Opcode
	EncodedInstruction []uint64

	Op0Addr, Op1Addr, DstAddr []uint32
	Op0, Op1, Dst             []felt.Felt256
}

// Len implements witness.RowSource.
func (s *StateTransitions) Len() int { return len(s.PC) }

// OpcodeAt implements witness.RowSource.
func (s *StateTransitions) OpcodeAt(i int) opcode.Opcode { return s.Opcode[i] }

// Column implements witness.RowSource for the fixed set of named columns
// the witness projections reference.
func (s *StateTransitions) Column(name string) (interface{}, bool) {
	switch name {
	case "pc":
		return s.PC, true
	case "ap":
		return s.AP, true
	case "fp":
		return s.FP, true
	case "op0_addr":
		return s.Op0Addr, true
	case "op0":
		return s.Op0, true
	case "op1_addr":
		return s.Op1Addr, true
	case "op1":
		return s.Op1, true
	case "dst_addr":
		return s.DstAddr, true
	case "dst":
		return s.Dst, true
	default:
		return nil, false
	}
}

// Result bundles every table the pipeline produces.
type Result struct {
	StateTransitions *StateTransitions
	MemoryIDToValue  []felt.Felt256
	MemoryAddrToID   []uint32
	InstructionsByPC map[uint32]instruction.Fields
}

// Run executes the full pipeline.
func Run(ctx context.Context, opts Options) (*Result, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var traceTbl *trace.Table
	var memTbl *memory.Table

	// onChunk implements the CancelAfterChunks testing knob: cancelling
	// runCtx here aborts both readers (and the rest of the pipeline) at the
	// next chunk boundary, per spec §5's cooperative cancellation contract.
	onChunk := func(chunkIdx, rows int) {
		if opts.CancelAfterChunks > 0 && chunkIdx+1 >= opts.CancelAfterChunks {
			cancel()
		}
	}

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		t, err := trace.Read(gctx, opts.TracePath, trace.Options{ChunkRecords: opts.ChunkRecords, OnChunk: onChunk})
		if err != nil {
			return err
		}
		traceTbl = t
		return nil
	})
	g.Go(func() error {
		m, err := memory.Read(gctx, opts.MemoryPath, memory.Options{ChunkRecords: opts.ChunkRecords, OnChunk: onChunk})
		if err != nil {
			return err
		}
		memTbl = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dedupTables, err := dedup.Build(memTbl)
	if err != nil {
		return nil, err
	}

	memIndex := operand.BuildIndex(memTbl)
	pcToAddr := indexMemoryByAddress(memTbl)

	decodeCache, err := instruction.NewCache(instruction.DefaultCacheSize)
	if err != nil {
		return nil, err
	}

	n := traceTbl.Len()
	st := &StateTransitions{
		AP: traceTbl.AP, FP: traceTbl.FP, PC: traceTbl.PC,
		Fields:             make([]instruction.Fields, n),
		Opcode:             make([]opcode.Opcode, n),
		EncodedInstruction: make([]uint64, n),
		Op0Addr:            make([]uint32, n),
		Op1Addr:            make([]uint32, n),
		DstAddr:            make([]uint32, n),
		Op0:                make([]felt.Felt256, n),
		Op1:                make([]felt.Felt256, n),
		Dst:                make([]felt.Felt256, n),
	}

	for i := 0; i < n; i++ {
		pc := traceTbl.PC[i]
		word, extHi, ok := lookupEncodedWord(memTbl, pcToAddr, pc)
		if !ok {
			// No instruction at pc: nothing to decode for this row beyond
			// register columns; classify as Generic with zero fields.
			st.Opcode[i] = opcode.Generic
			continue
		}
		st.EncodedInstruction[i] = word
		fields, _, err := decodeCache.DecodeAtPC(pc, word, extHi, int64(i))
		if err != nil {
			return nil, err
		}
		st.Fields[i] = fields
		st.Opcode[i] = opcode.Classify(fields)

		r := operand.Resolve(fields, traceTbl.AP[i], traceTbl.FP[i], traceTbl.PC[i], memIndex)
		st.Op0Addr[i], st.Op0[i] = r.Op0Addr, r.Op0
		st.Op1Addr[i], st.Op1[i] = r.Op1Addr, r.Op1
		st.DstAddr[i], st.Dst[i] = r.DstAddr, r.Dst

		if st.Opcode[i] == opcode.Jnz && r.DstOK && r.Dst.IsZero() {
			st.Opcode[i] = opcode.JnzTaken
		}
	}

	log.Info("pipeline complete", "rows", n, "unique_values", len(dedupTables.IDToValue))

	return &Result{
		StateTransitions: st,
		MemoryIDToValue:  dedupTables.IDToValue,
		MemoryAddrToID:   dedupTables.AddressToID,
		InstructionsByPC: decodeCache.InstructionsByPC(),
	}, nil
}

// indexMemoryByAddress builds a plain address->row-index map used only to
// fetch the limb_0 word at pc (the encoded instruction). The three operand
// joins go through operand.Index instead; this one serves a single,
// narrower lookup.
func indexMemoryByAddress(tbl *memory.Table) map[uint32]int {
	idx := make(map[uint32]int, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		if _, ok := idx[tbl.Address[i]]; !ok {
			idx[tbl.Address[i]] = i
		}
	}
	return idx
}

// lookupEncodedWord returns the 64-bit encoded_instruction word (the memory
// cell's limb_0) at pc, plus the low two bits of limb_1 as the
// opcode_extension high-bit carry (see instruction.Decode).
func lookupEncodedWord(tbl *memory.Table, idx map[uint32]int, pc uint32) (word uint64, extHi uint8, ok bool) {
	i, found := idx[pc]
	if !found {
		return 0, 0, false
	}
	v := tbl.Value[i]
	return v.Limb0, uint8(v.Limb1 & 0b11), true
}
