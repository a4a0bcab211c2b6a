package heuristics

import (
	"github.com/holiman/uint256"

	"github.com/vandalgo/vandal/evmtypes"
	"github.com/vandalgo/vandal/query"
	"github.com/vandalgo/vandal/tac"
)

// FailedSend flags a top-level JUMPI whose condition traces back to the
// success flag of a value-carrying CALL that returned failure, where the
// trace also contains a REVERT later than the JUMPI — an Ether transfer
// whose failure is checked and reverted on, but silently (spec §8
// scenario 6).
//
// Grounded on analyzer/pyanalyze/heuristics/failed_send.py.
type FailedSend struct{}

func (FailedSend) Name() string { return "failed_send" }

func (FailedSend) RequiredOps() []evmtypes.OpCode {
	return []evmtypes.OpCode{evmtypes.REVERT, evmtypes.CALL, evmtypes.JUMPI}
}

func (FailedSend) Analyze(views query.Views) (*query.Results, error) {
	revert, ok := views["REVERT"]
	if !ok {
		return &query.Results{}, nil
	}
	call, ok := views["CALL"]
	if !ok {
		return &query.Results{}, nil
	}
	jumpi, ok := views["JUMPI"]
	if !ok {
		return &query.Results{}, nil
	}

	revert.Filter(query.Filter{Attr: query.AttrDepth, Cmp: query.Eq, Value: 1})
	call.Filter(query.Filter{Attr: query.AttrDepth, Cmp: query.Eq, Value: 1})
	jumpi.Filter(query.Filter{Attr: query.AttrDepth, Cmp: query.Eq, Value: 1})

	zero := uint256.NewInt(0)
	call.IsValueInt(func(m *tac.MetaOp) *tac.VarID { return m.Value() }, zero, query.Ne)
	call.IsValueInt(func(m *tac.MetaOp) *tac.VarID { return m.Success() }, zero, query.Eq)

	// jumpi.link(revert, ...) establishes the REVERT-reachability precondition;
	// the immediately following jumpi.link(call, ...) overwrites the current
	// link, so the relation check below runs against call, not revert — this
	// mirrors the original verbatim rather than reordering it.
	jumpi.Link(revert, query.CrossFilter{Attr: query.AttrOpIndex, Cmp: query.Lt})
	jumpi.Link(call, query.CrossFilter{Attr: query.AttrOpIndex, Cmp: query.Gt})

	jumpi, err := jumpi.IsAncestor(
		func(m *tac.MetaOp) *tac.VarID { return m.JumpiCondition() },
		func(m *tac.MetaOp) *tac.VarID { return m.Success() },
		false,
	)
	if err != nil {
		return nil, err
	}

	return jumpi.GetResults("JUMPI.op_index", "CALL.op_index", "REVERT.op_index"), nil
}
