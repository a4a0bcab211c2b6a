package heuristics

import (
	"github.com/vandalgo/vandal/evmtypes"
	"github.com/vandalgo/vandal/query"
	"github.com/vandalgo/vandal/tac"
)

// UncheckedCall flags a top-level CALL paired with a JUMPI in the same
// call/depth context whose destination is not derived from the CALL's
// success flag; a CALL is kept when at least one such JUMPI exists, and each
// such pair is reported — the call's outcome is not what that branch
// depends on, so a failed external call can go unnoticed (spec §8
// scenario 4).
//
// Grounded on analyzer/pyanalyze/heuristics/unchecked_call.py.
type UncheckedCall struct{}

func (UncheckedCall) Name() string { return "unchecked_call" }

func (UncheckedCall) RequiredOps() []evmtypes.OpCode {
	return []evmtypes.OpCode{evmtypes.CALL, evmtypes.JUMPI}
}

func (UncheckedCall) Analyze(views query.Views) (*query.Results, error) {
	call, ok := views["CALL"]
	if !ok {
		return &query.Results{}, nil
	}
	jumpi, ok := views["JUMPI"]
	if !ok {
		return &query.Results{}, nil
	}

	call.Filter(query.Filter{Attr: query.AttrDepth, Cmp: query.Eq, Value: 1})
	jumpi.Filter(query.Filter{Attr: query.AttrDepth, Cmp: query.Eq, Value: 1})

	call.Link(jumpi,
		query.CrossFilter{Attr: query.AttrDepth, Cmp: query.Eq},
		query.CrossFilter{Attr: query.AttrCallIndex, Cmp: query.Eq},
	)
	call, err := call.IsDescendant(
		func(m *tac.MetaOp) *tac.VarID { return m.Success() },
		func(m *tac.MetaOp) *tac.VarID { return m.JumpiDestination() },
		true,
	)
	if err != nil {
		return nil, err
	}

	return call.GetResults("CALL.op_index", "JUMPI.op_index"), nil
}
