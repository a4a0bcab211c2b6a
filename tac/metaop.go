package tac

import "github.com/vandalgo/vandal/evmtypes"

// MetaOp is a typed, named-slot view of one TACOp (spec §4.5): instead of
// reasoning about a positional Args slice, heuristics and the query engine
// name operand/result slots directly (CALL.value, SLOAD.key, JUMPI.condition,
// ...). Every MetaOp also carries the executing address, resolved from the
// depth→address map at load time (§4.6).
type MetaOp struct {
	Op      *TACOp
	Address string
}

func (m *MetaOp) Opcode() evmtypes.OpCode { return m.Op.Opcode }
func (m *MetaOp) PC() uint64              { return m.Op.PC }
func (m *MetaOp) Depth() uint16           { return m.Op.Depth }
func (m *MetaOp) CallIndex() uint32       { return m.Op.CallIndex }
func (m *MetaOp) OpIndex() uint32         { return m.Op.OpIndex }

// arg returns the ith positional arg, or nil if out of range. Slot accessors
// below are thin, named wrappers over this.
func (m *MetaOp) arg(i int) *VarID {
	if i < 0 || i >= len(m.Op.Args) {
		return nil
	}
	return &m.Op.Args[i]
}

// Result returns the variable this op defines, or nil for ops with no lhs.
func (m *MetaOp) Result() *VarID { return m.Op.Lhs }

// --- CALL / CALLCODE: gas, address, value, in_offset, in_size, out_offset,
// out_size -> success (§4.5).

func (m *MetaOp) Gas() *VarID       { return m.arg(0) }
func (m *MetaOp) CallAddress() *VarID { return m.arg(1) }
func (m *MetaOp) Value() *VarID     { return m.arg(2) }
func (m *MetaOp) InOffset() *VarID  { return m.arg(3) }
func (m *MetaOp) InSize() *VarID    { return m.arg(4) }
func (m *MetaOp) OutOffset() *VarID { return m.arg(5) }
func (m *MetaOp) OutSize() *VarID   { return m.arg(6) }
func (m *MetaOp) Success() *VarID   { return m.Op.Lhs }

// --- DELEGATECALL / STATICCALL: gas, address, in_offset, in_size,
// out_offset, out_size -> success (SPEC_FULL.md §C.2: no value slot).

func (m *MetaOp) DelegateAddress() *VarID   { return m.arg(1) }
func (m *MetaOp) DelegateInOffset() *VarID  { return m.arg(2) }
func (m *MetaOp) DelegateInSize() *VarID    { return m.arg(3) }
func (m *MetaOp) DelegateOutOffset() *VarID { return m.arg(4) }
func (m *MetaOp) DelegateOutSize() *VarID   { return m.arg(5) }

// --- CREATE / CREATE2 -> address.

func (m *MetaOp) CreateValue() *VarID  { return m.arg(0) }
func (m *MetaOp) CreateOffset() *VarID { return m.arg(1) }
func (m *MetaOp) CreateSize() *VarID   { return m.arg(2) }
func (m *MetaOp) CreatedAddress() *VarID { return m.Op.Lhs }

// --- SELFDESTRUCT.beneficiary (SPEC_FULL.md §C.2).

func (m *MetaOp) Beneficiary() *VarID { return m.arg(0) }

// --- SLOAD.key, SLOAD.value / MLOAD.key, MLOAD.value.

func (m *MetaOp) Key() *VarID      { return m.arg(0) }
func (m *MetaOp) LoadValue() *VarID { return m.Op.Lhs }

// --- SSTORE.key, SSTORE.value / MSTORE(8).offset, MSTORE(8).value.

func (m *MetaOp) StoreKey() *VarID   { return m.arg(0) }
func (m *MetaOp) StoreValue() *VarID { return m.arg(1) }

// --- JUMP.destination / JUMPI.condition, JUMPI.destination.

func (m *MetaOp) Destination() *VarID { return m.arg(0) }
func (m *MetaOp) JumpiCondition() *VarID {
	if m.Opcode() != evmtypes.JUMPI {
		return nil
	}
	return m.arg(0)
}
func (m *MetaOp) JumpiDestination() *VarID {
	if m.Opcode() != evmtypes.JUMPI {
		return nil
	}
	return m.arg(1)
}

// --- LOG.offset, LOG.size, LOG.topic(i).

func (m *MetaOp) LogOffset() *VarID { return m.arg(0) }
func (m *MetaOp) LogSize() *VarID   { return m.arg(1) }
func (m *MetaOp) LogTopic(i int) *VarID {
	if i < 0 || i >= m.Opcode().LogTopics() {
		return nil
	}
	return m.arg(2 + i)
}
