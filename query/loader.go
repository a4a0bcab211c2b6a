package query

import (
	"github.com/deckarep/golang-set/v2"
	"golang.org/x/exp/slices"

	"github.com/vandalgo/vandal/evmtypes"
	"github.com/vandalgo/vandal/tac"
	"github.com/vandalgo/vandal/vardag"
)

// Views is the result of LoadViews: one View per requested opcode name.
type Views map[string]*View

// RequiredOps returns the union of every opcode mnemonic the registered
// heuristics require, for use as LoadViews's requested set (spec §4.6
// "the union of REQUIRED_OPS across registered heuristics"). The result is
// sorted: mapset.ToSlice's order isn't specified, and a stable op list
// keeps driver logging and the op-loader's own tests reproducible across
// runs.
func RequiredOps(required ...[]evmtypes.OpCode) []evmtypes.OpCode {
	set := mapset.NewThreadUnsafeSet[evmtypes.OpCode]()
	for _, ops := range required {
		for _, op := range ops {
			set.Add(op)
		}
	}
	ops := set.ToSlice()
	slices.Sort(ops)
	return ops
}

// LoadViews walks prog's ops once, building the variable DAG and, for every
// op whose opcode is in requested, a MetaOp appended to its opcode's View
// (spec §4.6). Ops outside requested still contribute to the DAG so
// dataflow queries remain sound.
func LoadViews(prog *tac.Program, requested []evmtypes.OpCode) (Views, *vardag.Graph, error) {
	graph, err := vardag.Build(prog)
	if err != nil {
		return nil, nil, err
	}
	return ViewsForOps(prog, graph, requested), graph, nil
}

// ViewsForOps builds a fresh Views map over requested against an
// already-built graph. Every View's working set starts all-true, so a
// driver running several heuristics against one trace calls this once per
// heuristic rather than sharing Views between them: Filter/Link mutate a
// View's working set in place, and two heuristics that both require, say,
// JUMPI would otherwise corrupt each other's results by pruning the same
// View object.
func ViewsForOps(prog *tac.Program, graph *vardag.Graph, requested []evmtypes.OpCode) Views {
	want := make(map[evmtypes.OpCode]bool, len(requested))
	for _, op := range requested {
		want[op] = true
	}

	byOpcode := make(map[string][]*tac.MetaOp)
	for _, op := range prog.Ops() {
		if !want[op.Opcode] {
			continue
		}
		name := op.Opcode.String()
		byOpcode[name] = append(byOpcode[name], &tac.MetaOp{
			Op:      op,
			Address: prog.AddressMap[op.Depth],
		})
	}

	views := make(Views, len(byOpcode))
	for name, ops := range byOpcode {
		views[name] = NewView(name, ops, prog, graph, prog.AddressMap)
	}
	return views
}
