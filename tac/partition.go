package tac

import (
	"github.com/vandalgo/vandal/evmtypes"
	"github.com/vandalgo/vandal/trace"
)

// rawBlock is a contiguous run of RawOps sharing one basic block, prior to
// destackification.
type rawBlock struct {
	ops []trace.RawOp
}

// partition splits a decoded trace into basic blocks per spec §4.2: a new
// block starts at any JUMPDEST, and a block ends immediately after any
// JUMP/JUMPI/STOP/RETURN/REVERT/INVALID/SELFDESTRUCT. A block boundary is
// also forced whenever call_index changes between consecutive ops: entering
// or returning from a call frame always starts a fresh block, even though
// neither op individually is a JUMPDEST or terminator, so that the
// destackifier's per-block stack-frame threading (§4.3: Lift starts a block
// with an empty stack when its first op has PC 0, and otherwise with the
// stack last saved for that op's depth) sees the frame boundary as the first
// op of its block. The partition is a total, non-overlapping cover of
// ops; every block is non-empty.
func partition(ops []trace.RawOp) []rawBlock {
	var blocks []rawBlock
	var current []trace.RawOp

	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, rawBlock{ops: current})
			current = nil
		}
	}

	for i, op := range ops {
		newCallFrame := i > 0 && op.CallIndex != ops[i-1].CallIndex
		if (op.Opcode == evmtypes.JUMPDEST || newCallFrame) && len(current) > 0 {
			flush()
		}
		current = append(current, op)
		if op.Opcode.EndsBlock() {
			flush()
		}
	}
	flush()

	return blocks
}
