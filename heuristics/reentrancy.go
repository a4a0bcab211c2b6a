package heuristics

import (
	"github.com/vandalgo/vandal/evmtypes"
	"github.com/vandalgo/vandal/query"
	"github.com/vandalgo/vandal/tac"
)

// Reentrancy flags a SLOAD at call depth greater than 2 whose value
// reaches a JUMPI's destination (the loaded value gates a branch) and whose
// key is later written by an SSTORE at least two frames shallower, from the
// same executing address, after the SLOAD in trace order — the classic
// check-then-act-then-reenter-before-write shape (spec §8 scenario 2).
//
// Grounded on analyzer/pyanalyze/heuristics/reentrancy.py.
type Reentrancy struct{}

func (Reentrancy) Name() string { return "reentrancy" }

func (Reentrancy) RequiredOps() []evmtypes.OpCode {
	return []evmtypes.OpCode{evmtypes.SLOAD, evmtypes.JUMPI, evmtypes.SSTORE}
}

func (Reentrancy) Analyze(views query.Views) (*query.Results, error) {
	sload, ok := views["SLOAD"]
	if !ok {
		return &query.Results{}, nil
	}
	jumpi, ok := views["JUMPI"]
	if !ok {
		return &query.Results{}, nil
	}
	sstore, ok := views["SSTORE"]
	if !ok {
		return &query.Results{}, nil
	}

	sload.Filter(query.Filter{Attr: query.AttrDepth, Cmp: query.Gt, Value: 2})

	sload.Link(jumpi,
		query.CrossFilter{Attr: query.AttrCallIndex, Cmp: query.Eq},
		query.CrossFilter{Attr: query.AttrDepth, Cmp: query.Eq},
	)
	sload, err := sload.IsDescendant(
		func(m *tac.MetaOp) *tac.VarID { return m.Result() },
		func(m *tac.MetaOp) *tac.VarID { return m.JumpiDestination() },
		false,
	)
	if err != nil {
		return nil, err
	}

	sload.Link(sstore,
		query.CrossFilter{Attr: query.AttrDepth, Cmp: query.Ge, Offset: 2},
		query.CrossFilter{Attr: query.AttrOpIndex, Cmp: query.Lt},
	)
	sload, err = sload.IsValue(
		func(m *tac.MetaOp) *tac.VarID { return m.Key() },
		func(m *tac.MetaOp) *tac.VarID { return m.StoreKey() },
		query.Eq,
	)
	if err != nil {
		return nil, err
	}
	sload, err = sload.SourceAddressLinkEq(false)
	if err != nil {
		return nil, err
	}

	return sload.GetResults(
		"SLOAD.op_index", "JUMPI.op_index", "SLOAD.depth", "SLOAD.call_index",
		"SSTORE.op_index", "SSTORE.call_index", "SSTORE.address", "SLOAD.address",
	), nil
}
