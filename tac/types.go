// Package tac converts a decoded trace (package trace) into three-address
// code: basic blocks of TACOp instructions operating on symbolic Variables,
// plus the per-opcode MetaOp projection heuristics query against.
package tac

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/vandalgo/vandal/evmtypes"
)

// VarID identifies a Variable within a Program's arena.
type VarID uint32

// Variable is a symbolic value produced by exactly one TACOp. Variables are
// immutable once created; Value is filled in either directly from the trace
// (kind-one/two/four/five ops, SLOAD/MLOAD) or by constant folding (§9:
// "Arena-owned variable graph"). Parents/Children are VarIDs, not pointers,
// so the arena stays a flat, GC-trivial slice.
type Variable struct {
	ID       VarID
	Name     string // "V0", "V1", ...
	Value    *uint256.Int
	Extra    *uint256.Int
	Parents  []VarID
	Children []VarID
	DefPC    uint64
}

// HasValue reports whether this variable carries a concrete value (either
// traced or folded).
func (v *Variable) HasValue() bool { return v.Value != nil }

// TACOp is a single three-address instruction: an opcode, its ordered
// argument list (stack order, top-of-stack first), and optionally the
// variable it defines.
type TACOp struct {
	Opcode    evmtypes.OpCode
	PC        uint64
	Depth     uint16
	CallIndex uint32
	OpIndex   uint32
	Args      []VarID
	Lhs       *VarID
	Value     *uint256.Int // present for kind-three-store-two ops; other ops carry their traced value on the Lhs variable
	Extra     *uint256.Int // present for kind-four (CALL family)
}

// HasLhs reports whether this op defines a variable.
func (op *TACOp) HasLhs() bool { return op.Lhs != nil }

// String is a debug rendering used by tests and logs.
func (op *TACOp) String() string {
	if op.Lhs != nil {
		return fmt.Sprintf("V%d = %s%v", *op.Lhs, op.Opcode, op.Args)
	}
	return fmt.Sprintf("%s%v", op.Opcode, op.Args)
}

// Block is a basic block: a maximal straight-line run of ops bounded by
// JUMPDESTs and jump/halt terminators (spec §4.2).
type Block struct {
	EntryPC uint64
	ExitPC  uint64
	Ops     []*TACOp
}

// Program is the fully lifted result of destackifying a decoded trace: its
// basic blocks, the backing variable arena, and the depth→address map built
// incrementally as CALL-family ops are encountered during lifting.
type Program struct {
	Blocks      []*Block
	Vars        []*Variable
	AddressMap  map[uint16]string // depth -> executing address (hex string)
	RootAddress string            // top-level "to" address, seeded at depth 1
}

// Var returns the variable with the given id.
func (p *Program) Var(id VarID) *Variable { return p.Vars[id] }

// Ops yields all TAC ops across all blocks in lift (op_index) order.
func (p *Program) Ops() []*TACOp {
	var all []*TACOp
	for _, b := range p.Blocks {
		all = append(all, b.Ops...)
	}
	return all
}
