// Package query implements the op loader and the View query-engine algebra
// (spec §4.6, §4.7): filter, link, filter_link, relational (ancestor/
// descendant) predicates, value predicates, and result materialization.
package query

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/vandalgo/vandal/tac"
)

// Attr names a plain scalar attribute of a MetaOp that Filter and the
// cross-view link filters compare (spec §4.7: "{op_index, call_index, pc,
// depth, address}").
type Attr int

const (
	AttrOpIndex Attr = iota
	AttrCallIndex
	AttrPC
	AttrDepth
	AttrAddress
)

func (a Attr) String() string {
	switch a {
	case AttrOpIndex:
		return "op_index"
	case AttrCallIndex:
		return "call_index"
	case AttrPC:
		return "pc"
	case AttrDepth:
		return "depth"
	case AttrAddress:
		return "address"
	default:
		return fmt.Sprintf("attr(%d)", int(a))
	}
}

// ParseAttr resolves the lowercase attribute name used in an OUTPUT_KEYS
// projection (e.g. "op_index") back to its Attr. Used by result sinks that
// render a Row against a "OpClass.attribute" key list (spec §4.7
// "get_results(keys)").
func ParseAttr(name string) (Attr, bool) {
	switch name {
	case "op_index":
		return AttrOpIndex, true
	case "call_index":
		return AttrCallIndex, true
	case "pc":
		return AttrPC, true
	case "depth":
		return AttrDepth, true
	case "address":
		return AttrAddress, true
	default:
		return 0, false
	}
}

// AttrValue exposes attrValue to callers outside the package (result sinks
// projecting "OpClass.attribute" keys against a materialized Row).
func AttrValue(m *tac.MetaOp, a Attr) any { return attrValue(m, a) }

func attrValue(m *tac.MetaOp, a Attr) any {
	switch a {
	case AttrOpIndex:
		return uint64(m.OpIndex())
	case AttrCallIndex:
		return uint64(m.CallIndex())
	case AttrPC:
		return m.PC()
	case AttrDepth:
		return uint64(m.Depth())
	case AttrAddress:
		return m.Address
	default:
		return nil
	}
}

// Comparator is one of the six comparison operators a Filter or cross-view
// link filter may apply.
type Comparator int

const (
	Eq Comparator = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

func compare(cmp Comparator, a, b any) bool {
	if as, ok := a.(string); ok {
		bs, _ := b.(string)
		switch cmp {
		case Eq:
			return as == bs
		case Ne:
			return as != bs
		default:
			return false // ordering comparators don't apply to addresses
		}
	}
	au, _ := a.(uint64)
	bu, _ := b.(uint64)
	switch cmp {
	case Eq:
		return au == bu
	case Ne:
		return au != bu
	case Lt:
		return au < bu
	case Le:
		return au <= bu
	case Gt:
		return au > bu
	case Ge:
		return au >= bu
	default:
		return false
	}
}

// Filter compares a single op's Attr against a literal value (spec §4.7
// "filter(filters)"): every filter in a Filter() call must pass (conjunction
// semantics).
type Filter struct {
	Attr  Attr
	Cmp   Comparator
	Value uint64
}

// CrossFilter compares the same Attr on two ops participating in a Link
// (spec §4.7 "link(other_view, filters)" and "filter_link(filters)"): the
// attribute is evaluated on both the surviving op and its candidate link
// partner. Offset shifts the partner's value before comparing (e.g.
// depth >= other.depth+2 in the reentrancy heuristic's SSTORE link); it only
// applies to numeric attrs and is ignored for AttrAddress.
type CrossFilter struct {
	Attr   Attr
	Cmp    Comparator
	Offset int64
}

func matchCross(a, b *tac.MetaOp, filters []CrossFilter) bool {
	for _, f := range filters {
		av := attrValue(a, f.Attr)
		bv := attrValue(b, f.Attr)
		if f.Offset != 0 {
			if bu, ok := bv.(uint64); ok {
				bv = uint64(int64(bu) + f.Offset)
			}
		}
		if !compare(f.Cmp, av, bv) {
			return false
		}
	}
	return true
}

// Relation is one of the four variable-DAG traversals IsRelation can run.
type Relation int

const (
	RelAncestors Relation = iota
	RelDescendants
	RelParents
	RelChildren
)

// VarSlot extracts a named operand/result slot (a *tac.VarID, or nil if the
// op has no such slot) from a MetaOp — e.g. (*tac.MetaOp).Success,
// (*tac.MetaOp).Destination. Heuristics pass these as the self_attr/
// other_attr parameters of IsRelation/IsValue (spec §4.7, §4.5).
type VarSlot func(*tac.MetaOp) *tac.VarID

// resolveValue returns the *uint256.Int that a VarSlot resolves to on a program, or
// nil if the slot or its value is absent.
func resolveValue(prog *tac.Program, slot VarSlot, op *tac.MetaOp) *uint256.Int {
	id := slot(op)
	if id == nil {
		return nil
	}
	v := prog.Var(*id)
	return v.Value
}

func compareUint256(cmp Comparator, a, b *uint256.Int) bool {
	switch cmp {
	case Eq:
		return a.Eq(b)
	case Ne:
		return !a.Eq(b)
	case Lt:
		return a.Lt(b)
	case Le:
		return !a.Gt(b)
	case Gt:
		return a.Gt(b)
	case Ge:
		return !a.Lt(b)
	default:
		return false
	}
}
