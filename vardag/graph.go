// Package vardag implements the symbolic variable dependency graph (spec
// §4.4): a DAG over tac.Variable, with transitive ancestor/descendant
// queries and value comparison predicates. Built on github.com/heimdalr/dag
// for the underlying graph-shaped data.
package vardag

import (
	"fmt"

	"github.com/deckarep/golang-set/v2"
	"github.com/heimdalr/dag"

	"github.com/vandalgo/vandal/tac"
)

// vertex adapts a VarID to heimdalr/dag's IDInterface, which identifies
// vertices by a string key.
type vertex tac.VarID

func (v vertex) ID() string { return fmt.Sprintf("V%d", uint32(v)) }

// Graph is the variable DAG for one lifted Program. Edges run parent→child
// in definition order, so op_index always increases along an edge (§3's
// "Invariants": "every edge (p→c) satisfies p.defining_op.op_index <
// c.defining_op.op_index").
type Graph struct {
	d   *dag.DAG
	prog *tac.Program
}

// Build constructs the variable DAG for prog: one vertex per variable, one
// edge per parent→child relationship recorded during destackification.
func Build(prog *tac.Program) (*Graph, error) {
	d := dag.NewDAG()
	for _, v := range prog.Vars {
		if err := d.AddVertex(vertex(v.ID)); err != nil {
			return nil, fmt.Errorf("vardag: adding vertex %s: %w", vertex(v.ID).ID(), err)
		}
	}
	for _, v := range prog.Vars {
		for _, child := range v.Children {
			if err := d.AddEdge(vertex(v.ID).ID(), vertex(child).ID()); err != nil {
				return nil, fmt.Errorf("vardag: adding edge %s->%s: %w", vertex(v.ID).ID(), vertex(child).ID(), err)
			}
		}
	}
	return &Graph{d: d, prog: prog}, nil
}

func idSetToVarSet(ids map[string]interface{}) mapset.Set[tac.VarID] {
	out := mapset.NewThreadUnsafeSet[tac.VarID]()
	for id := range ids {
		var n uint32
		fmt.Sscanf(id, "V%d", &n)
		out.Add(tac.VarID(n))
	}
	return out
}

// Ancestors returns the transitive closure of v's parents.
func (g *Graph) Ancestors(v tac.VarID) (mapset.Set[tac.VarID], error) {
	ids, err := g.d.GetAncestors(vertex(v).ID())
	if err != nil {
		return nil, fmt.Errorf("vardag: ancestors of %s: %w", vertex(v).ID(), err)
	}
	return idSetToVarSet(ids), nil
}

// Descendants returns the transitive closure of v's children.
func (g *Graph) Descendants(v tac.VarID) (mapset.Set[tac.VarID], error) {
	ids, err := g.d.GetDescendants(vertex(v).ID())
	if err != nil {
		return nil, fmt.Errorf("vardag: descendants of %s: %w", vertex(v).ID(), err)
	}
	return idSetToVarSet(ids), nil
}

// Parents returns v's direct parents.
func (g *Graph) Parents(v tac.VarID) (mapset.Set[tac.VarID], error) {
	ids, err := g.d.GetParents(vertex(v).ID())
	if err != nil {
		return nil, fmt.Errorf("vardag: parents of %s: %w", vertex(v).ID(), err)
	}
	return idSetToVarSet(ids), nil
}

// Children returns v's direct children.
func (g *Graph) Children(v tac.VarID) (mapset.Set[tac.VarID], error) {
	ids, err := g.d.GetChildren(vertex(v).ID())
	if err != nil {
		return nil, fmt.Errorf("vardag: children of %s: %w", vertex(v).ID(), err)
	}
	return idSetToVarSet(ids), nil
}

// IsDescendant reports whether y is in the transitive closure of x's
// children.
func (g *Graph) IsDescendant(x, y tac.VarID) (bool, error) {
	descendants, err := g.Descendants(x)
	if err != nil {
		return false, err
	}
	return descendants.Contains(y), nil
}

// IsAncestor reports whether y is in the transitive closure of x's parents.
// Transpose of IsDescendant: x IsAncestor of y iff y IsDescendant of x.
func (g *Graph) IsAncestor(x, y tac.VarID) (bool, error) {
	return g.IsDescendant(y, x)
}
