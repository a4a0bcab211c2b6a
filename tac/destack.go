package tac

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/vandalgo/vandal/evmtypes"
	"github.com/vandalgo/vandal/trace"
)

// StackUnderflowError is raised when an op needs more stack items than are
// available in the current symbolic stack.
type StackUnderflowError struct {
	PC      uint64
	OpIndex uint32
	Opcode  evmtypes.OpCode
	Need    int
	Have    int
}

func (e *StackUnderflowError) Error() string {
	return fmt.Sprintf("tac: stack underflow at pc=%d op_index=%d %s: need %d, have %d",
		e.PC, e.OpIndex, e.Opcode, e.Need, e.Have)
}

// lifter holds the mutable state threaded across the whole trace while
// destackifying block by block: the variable arena, one symbolic stack per
// call depth, and the executing-address map (§3 "Call-depth → address map").
//
// Call frames interleave in trace order (a CALL's callee ops appear between
// the caller's pre-call and post-call ops), so a single stack-of-stacks
// threaded linearly across blocks can't tell a caller's resume point apart
// from a callee's leftover stack once more than one frame is in flight.
// Keying the saved stack by depth instead sidesteps that: each depth's
// blocks only ever read and write their own entry, so a callee's frame can
// never bleed into the caller's once control returns.
type lifter struct {
	vars         []*Variable
	stackByDepth map[uint16][]VarID
	addressMap   map[uint16]string
	rootAddr     string
}

// Lift destackifies a decoded trace into a Program: basic blocks of TAC ops
// over a symbolic variable arena, threading one stack per call depth across
// blocks and folding constant arithmetic inline (§4.3).
func Lift(ops []trace.RawOp, rootAddress string) (*Program, error) {
	blocks := partition(ops)

	l := &lifter{
		stackByDepth: make(map[uint16][]VarID),
		addressMap:   map[uint16]string{1: rootAddress},
		rootAddr:     rootAddress,
	}

	var tacBlocks []*Block
	for _, rb := range blocks {
		if len(rb.ops) == 0 {
			continue
		}
		first := rb.ops[0]

		var entry []VarID
		if first.PC != 0 {
			entry = l.stackByDepth[first.Depth]
		}

		tb, exit, err := l.convertBlock(rb, entry)
		if err != nil {
			return nil, err
		}
		tacBlocks = append(tacBlocks, tb)

		last := rb.ops[len(rb.ops)-1]
		if last.Opcode.PossiblyHalts() {
			delete(l.stackByDepth, first.Depth)
		} else {
			l.stackByDepth[first.Depth] = exit
		}
	}

	return &Program{
		Blocks:      tacBlocks,
		Vars:        l.vars,
		AddressMap:  l.addressMap,
		RootAddress: rootAddress,
	}, nil
}

func (l *lifter) newVar(pc uint64) *Variable {
	v := &Variable{
		ID:    VarID(len(l.vars)),
		Name:  fmt.Sprintf("V%d", len(l.vars)),
		DefPC: pc,
	}
	l.vars = append(l.vars, v)
	return v
}

func (l *lifter) addEdge(parent, child VarID) {
	p := l.vars[parent]
	c := l.vars[child]
	p.Children = append(p.Children, child)
	c.Parents = append(c.Parents, parent)
}

// convertBlock lifts one raw basic block to TAC, given its symbolic entry
// stack, returning the new block and its exit stack.
func (l *lifter) convertBlock(rb rawBlock, entry []VarID) (*Block, []VarID, error) {
	stack := append([]VarID(nil), entry...)
	var ops []*TACOp

	pop := func(op trace.RawOp, n int) ([]VarID, error) {
		if len(stack) < n {
			return nil, &StackUnderflowError{PC: op.PC, OpIndex: op.OpIndex, Opcode: op.Opcode, Need: n, Have: len(stack)}
		}
		popped := make([]VarID, n)
		for i := 0; i < n; i++ {
			popped[i] = stack[len(stack)-1-i]
		}
		stack = stack[:len(stack)-n]
		return popped, nil
	}

	for _, op := range rb.ops {
		switch {
		case op.Opcode.IsSwap():
			n := op.Opcode.SwapDepth()
			if len(stack) < n+1 {
				return nil, nil, &StackUnderflowError{PC: op.PC, OpIndex: op.OpIndex, Opcode: op.Opcode, Need: n + 1, Have: len(stack)}
			}
			top := len(stack) - 1
			stack[top], stack[top-n] = stack[top-n], stack[top]

		case op.Opcode.IsDup():
			n := op.Opcode.DupDepth()
			if len(stack) < n {
				return nil, nil, &StackUnderflowError{PC: op.PC, OpIndex: op.OpIndex, Opcode: op.Opcode, Need: n, Have: len(stack)}
			}
			stack = append(stack, stack[len(stack)-n])

		case op.Opcode == evmtypes.POP:
			if _, err := pop(op, 1); err != nil {
				return nil, nil, err
			}

		case op.Opcode == evmtypes.JUMPDEST:
			ops = append(ops, &TACOp{Opcode: op.Opcode, PC: op.PC, Depth: op.Depth, CallIndex: op.CallIndex, OpIndex: op.OpIndex})

		default:
			tacOp, err := l.genInstruction(op, &stack, pop)
			if err != nil {
				return nil, nil, err
			}
			ops = append(ops, tacOp)
		}
	}

	if len(ops) == 0 {
		first := rb.ops[0]
		ops = append(ops, &TACOp{Opcode: first.Opcode, PC: first.PC})
	}

	return &Block{EntryPC: rb.ops[0].PC, ExitPC: rb.ops[len(rb.ops)-1].PC, Ops: ops}, stack, nil
}

type popFunc func(op trace.RawOp, n int) ([]VarID, error)

// genInstruction lifts every op not already special-cased in convertBlock
// (everything except SWAP/DUP/POP/JUMPDEST): PUSH, LOG, MSTORE(8)/SSTORE,
// SLOAD/MLOAD, the five opcode kinds, and the generic fallback for
// arithmetic and every other op, per the translation table in §4.3.
func (l *lifter) genInstruction(op trace.RawOp, stack *[]VarID, pop popFunc) (*TACOp, error) {
	var newVar *Variable
	if op.Opcode.Push() == 1 {
		newVar = l.newVar(op.PC)
	}

	tacOp := &TACOp{Opcode: op.Opcode, PC: op.PC, Depth: op.Depth, CallIndex: op.CallIndex, OpIndex: op.OpIndex}

	switch {
	case op.Opcode.IsPush():
		newVar.Value = op.Value

	case op.Opcode.IsLog():
		args, err := pop(op, 2+op.Opcode.LogTopics())
		if err != nil {
			return nil, err
		}
		tacOp.Args = args

	case op.Opcode == evmtypes.MSTORE, op.Opcode == evmtypes.MSTORE8, op.Opcode == evmtypes.SSTORE:
		args, err := pop(op, op.Opcode.Pop())
		if err != nil {
			return nil, err
		}
		tacOp.Args = args

	case op.Opcode == evmtypes.SLOAD, op.Opcode == evmtypes.MLOAD:
		args, err := pop(op, 1)
		if err != nil {
			return nil, err
		}
		tacOp.Args = args
		newVar.Value = op.Value

	case evmtypes.KindOf(op.Opcode) == evmtypes.KindOne:
		newVar.Value = op.Value

	case evmtypes.KindOf(op.Opcode) == evmtypes.KindTwo:
		args, err := pop(op, op.Opcode.Pop())
		if err != nil {
			return nil, err
		}
		tacOp.Args = args
		newVar.Value = op.Value

	case evmtypes.KindOf(op.Opcode) == evmtypes.KindThreeStoreTwo:
		args, err := pop(op, op.Opcode.Pop())
		if err != nil {
			return nil, err
		}
		tacOp.Args = args
		tacOp.Value = op.Value

	case evmtypes.KindOf(op.Opcode) == evmtypes.KindFour:
		args, err := pop(op, op.Opcode.Pop())
		if err != nil {
			return nil, err
		}
		tacOp.Args = args
		newVar.Value = op.Value
		newVar.Extra = op.Extra
		tacOp.Extra = op.Extra
		l.recordCallAddress(op, args)

	case evmtypes.KindOf(op.Opcode) == evmtypes.KindFive:
		args, err := pop(op, op.Opcode.Pop())
		if err != nil {
			return nil, err
		}
		tacOp.Args = args
		newVar.Value = op.Value

	case newVar != nil:
		args, err := pop(op, op.Opcode.Pop())
		if err != nil {
			return nil, err
		}
		tacOp.Args = args
		if op.Opcode.IsArithmetic() && allConst(l, args) {
			newVar.Value = foldArithmetic(op.Opcode, valuesOf(l, args))
		}

	default:
		args, err := pop(op, op.Opcode.Pop())
		if err != nil {
			return nil, err
		}
		tacOp.Args = args
	}

	if newVar != nil {
		seen := make(map[VarID]bool, len(tacOp.Args))
		for _, a := range tacOp.Args {
			if seen[a] {
				continue
			}
			seen[a] = true
			l.addEdge(a, newVar.ID)
		}
	}

	if newVar != nil {
		tacOp.Lhs = &newVar.ID
		*stack = append(*stack, newVar.ID)
	}

	return tacOp, nil
}

func allConst(l *lifter, args []VarID) bool {
	for _, a := range args {
		if !l.vars[a].HasValue() {
			return false
		}
	}
	return true
}

func valuesOf(l *lifter, args []VarID) []*uint256.Int {
	vals := make([]*uint256.Int, len(args))
	for i, a := range args {
		vals[i] = l.vars[a].Value
	}
	return vals
}

// recordCallAddress populates the depth→address map for the call frame a
// CALL-family op is about to enter: the executing address at depth+1 is the
// first stack argument's concrete value, except for CALL/CALLCODE where the
// first argument is gas and the address is the second (spec §3).
func (l *lifter) recordCallAddress(op trace.RawOp, args []VarID) {
	idx := 0
	if op.Opcode == evmtypes.CALL || op.Opcode == evmtypes.CALLCODE {
		idx = 1
	}
	if idx >= len(args) {
		return
	}
	addrVar := l.vars[args[idx]]
	if addrVar.HasValue() {
		l.addressMap[op.Depth+1] = addrVar.Value.Hex()
	}
}
