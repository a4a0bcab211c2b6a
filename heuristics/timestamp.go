package heuristics

import (
	"github.com/vandalgo/vandal/evmtypes"
	"github.com/vandalgo/vandal/query"
	"github.com/vandalgo/vandal/tac"
)

// TimestampDependency flags a top-level TIMESTAMP whose value reaches a
// later JUMPI's destination, i.e. block.timestamp gates a branch directly
// or through intervening arithmetic (spec §8 scenario 5).
//
// Grounded on analyzer/pyanalyze/heuristics/timestamp.py.
type TimestampDependency struct{}

func (TimestampDependency) Name() string { return "timestamp" }

func (TimestampDependency) RequiredOps() []evmtypes.OpCode {
	return []evmtypes.OpCode{evmtypes.TIMESTAMP, evmtypes.JUMPI}
}

func (TimestampDependency) Analyze(views query.Views) (*query.Results, error) {
	timestamp, ok := views["TIMESTAMP"]
	if !ok {
		return &query.Results{}, nil
	}
	jumpi, ok := views["JUMPI"]
	if !ok {
		return &query.Results{}, nil
	}

	timestamp.Filter(query.Filter{Attr: query.AttrDepth, Cmp: query.Eq, Value: 1})
	jumpi.Filter(query.Filter{Attr: query.AttrDepth, Cmp: query.Eq, Value: 1})

	timestamp.Link(jumpi, query.CrossFilter{Attr: query.AttrOpIndex, Cmp: query.Lt})
	timestamp, err := timestamp.IsDescendant(
		func(m *tac.MetaOp) *tac.VarID { return m.Result() },
		func(m *tac.MetaOp) *tac.VarID { return m.JumpiDestination() },
		false,
	)
	if err != nil {
		return nil, err
	}

	return timestamp.GetResults("TIMESTAMP.op_index", "JUMPI.op_index"), nil
}
