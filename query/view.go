package query

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/deckarep/golang-set/v2"
	"github.com/holiman/uint256"

	"github.com/vandalgo/vandal/tac"
	"github.com/vandalgo/vandal/vardag"
)

// ErrNoCurrentLink is returned by FilterLink, IsRelation, IsValue (link
// form), and SourceAddressLinkEq when called before Link has
// established a current link (spec §4.7 "Failure semantics").
var ErrNoCurrentLink = errors.New("query: no current link; call Link first")

// ErrViewShapeMismatch is returned by Merge when the two views don't share a
// working-set length (spec §4.7: "Merging views of different opcodes
// requires equal working_set lengths").
var ErrViewShapeMismatch = errors.New("query: views have different working_set shapes")

// View is the per-opcode container the query engine operates on (spec §3's
// "View (per-opcode)" data model, §4.7's algebra). Every method except
// GetResults/GetWorkingSet mutates in place and returns the receiver so
// heuristics can chain calls fluently, mirroring the original's Python
// builder.
type View struct {
	OpcodeName string
	Ops        []*tac.MetaOp
	prog       *tac.Program
	graph      *vardag.Graph
	addresses  map[uint16]string

	working     *bitset.BitSet
	links       map[int]map[*View][]int // Ops index -> linked View -> surviving indices into that View's Ops
	currentLink *View
	linkOrder   []*View
}

// NewView constructs a View with every op initially alive (working_set all
// true), per the Op Loader's contract (spec §4.6 step 4).
func NewView(name string, ops []*tac.MetaOp, prog *tac.Program, graph *vardag.Graph, addresses map[uint16]string) *View {
	ws := bitset.New(uint(len(ops)))
	for i := range ops {
		ws.Set(uint(i))
	}
	return &View{
		OpcodeName: name,
		Ops:        ops,
		prog:       prog,
		graph:      graph,
		addresses:  addresses,
		working:    ws,
		links:      make(map[int]map[*View][]int),
	}
}

// Merge combines v's working set with other's: AND by default, OR when
// inclusive is true (spec §4.7 "merge(other, inclusive)").
func (v *View) Merge(other *View, inclusive bool) (*View, error) {
	if v.working.Len() != other.working.Len() {
		return nil, ErrViewShapeMismatch
	}
	if inclusive {
		v.working.InPlaceUnion(other.working)
	} else {
		v.working.InPlaceIntersection(other.working)
	}
	return v, nil
}

// Filter keeps only ops satisfying every filter (conjunction); spec §4.7
// "filter(filters)".
func (v *View) Filter(filters ...Filter) *View {
	for i, op := range v.Ops {
		if !v.working.Test(uint(i)) {
			continue
		}
		for _, f := range filters {
			if !compare(f.Cmp, attrValue(op, f.Attr), f.Value) {
				v.working.Clear(uint(i))
				break
			}
		}
	}
	return v
}

// Link builds the cross product of v's surviving ops against other.Ops,
// keeping only pairs (a, b) where every cross-filter passes; any a with no
// surviving partner is deactivated (spec §4.7 "link(other_view, filters)").
func (v *View) Link(other *View, filters ...CrossFilter) *View {
	if v.links == nil {
		v.links = make(map[int]map[*View][]int)
	}
	for i, a := range v.Ops {
		if !v.working.Test(uint(i)) {
			continue
		}
		var surviving []int
		for j, b := range other.Ops {
			if matchCross(a, b, filters) {
				surviving = append(surviving, j)
			}
		}
		if len(surviving) == 0 {
			v.working.Clear(uint(i))
			continue
		}
		if v.links[i] == nil {
			v.links[i] = make(map[*View][]int)
		}
		v.links[i][other] = surviving
	}
	v.currentLink = other
	v.linkOrder = append(v.linkOrder, other)
	return v
}

// FilterLink prunes the current link's surviving partners using cross
// filters evaluated on (a, b); deactivates a if its link set empties.
// Requires a prior Link call (spec §4.7 "filter_link(filters)").
func (v *View) FilterLink(filters ...CrossFilter) (*View, error) {
	if v.currentLink == nil {
		return nil, ErrNoCurrentLink
	}
	other := v.currentLink
	for i, a := range v.Ops {
		if !v.working.Test(uint(i)) {
			continue
		}
		indices := v.links[i][other]
		var kept []int
		for _, j := range indices {
			if matchCross(a, other.Ops[j], filters) {
				kept = append(kept, j)
			}
		}
		v.links[i][other] = kept
		if len(kept) == 0 {
			v.working.Clear(uint(i))
		}
	}
	return v, nil
}

// IsRelation computes nodes = relation(self_attr(a)) for each surviving a
// and prunes the current link's partners to those whose other_attr is (or,
// if invert, is not) a member of nodes (spec §4.7 "is_relation").
func (v *View) IsRelation(selfSlot, otherSlot VarSlot, rel Relation, invert bool) (*View, error) {
	if v.currentLink == nil {
		return nil, ErrNoCurrentLink
	}
	other := v.currentLink
	for i, a := range v.Ops {
		if !v.working.Test(uint(i)) {
			continue
		}
		selfID := selfSlot(a)
		if selfID == nil {
			v.working.Clear(uint(i))
			continue
		}
		nodes, err := relationSet(v.graph, *selfID, rel)
		if err != nil {
			return nil, err
		}

		indices := v.links[i][other]
		var kept []int
		for _, j := range indices {
			b := other.Ops[j]
			otherID := otherSlot(b)
			if otherID == nil {
				continue
			}
			in := nodes.Contains(*otherID)
			if in != invert {
				kept = append(kept, j)
			}
		}
		v.links[i][other] = kept
		if len(kept) == 0 {
			v.working.Clear(uint(i))
		}
	}
	return v, nil
}

func relationSet(g *vardag.Graph, id tac.VarID, rel Relation) (mapset.Set[tac.VarID], error) {
	switch rel {
	case RelAncestors:
		return g.Ancestors(id)
	case RelDescendants:
		return g.Descendants(id)
	case RelParents:
		return g.Parents(id)
	case RelChildren:
		return g.Children(id)
	default:
		return nil, fmt.Errorf("query: unknown relation %d", rel)
	}
}

// IsDescendant keeps links where otherSlot(b) is a descendant of selfSlot(a).
func (v *View) IsDescendant(selfSlot, otherSlot VarSlot, invert bool) (*View, error) {
	return v.IsRelation(selfSlot, otherSlot, RelDescendants, invert)
}

// IsAncestor keeps links where otherSlot(b) is an ancestor of selfSlot(a).
func (v *View) IsAncestor(selfSlot, otherSlot VarSlot, invert bool) (*View, error) {
	return v.IsRelation(selfSlot, otherSlot, RelAncestors, invert)
}

// IsParent keeps links where otherSlot(b) is a direct parent of selfSlot(a).
func (v *View) IsParent(selfSlot, otherSlot VarSlot, invert bool) (*View, error) {
	return v.IsRelation(selfSlot, otherSlot, RelParents, invert)
}

// IsChild keeps links where otherSlot(b) is a direct child of selfSlot(a).
func (v *View) IsChild(selfSlot, otherSlot VarSlot, invert bool) (*View, error) {
	return v.IsRelation(selfSlot, otherSlot, RelChildren, invert)
}

// IsValueInt keeps only ops whose selfSlot resolves to a concrete value
// equal (per cmp) to the literal value (spec §4.7 "is_value", literal form).
func (v *View) IsValueInt(selfSlot VarSlot, value *uint256.Int, cmp Comparator) *View {
	for i, a := range v.Ops {
		if !v.working.Test(uint(i)) {
			continue
		}
		val := resolveValue(v.prog, selfSlot, a)
		if val == nil || !compareUint256(cmp, val, value) {
			v.working.Clear(uint(i))
		}
	}
	return v
}

// IsValue keeps links where selfSlot(a)'s value compares true (per cmp)
// against otherSlot(b)'s value (spec §4.7 "is_value", cross-link form).
// Requires a prior Link call.
func (v *View) IsValue(selfSlot, otherSlot VarSlot, cmp Comparator) (*View, error) {
	if v.currentLink == nil {
		return nil, ErrNoCurrentLink
	}
	other := v.currentLink
	for i, a := range v.Ops {
		if !v.working.Test(uint(i)) {
			continue
		}
		selfVal := resolveValue(v.prog, selfSlot, a)
		indices := v.links[i][other]
		var kept []int
		for _, j := range indices {
			b := other.Ops[j]
			otherVal := resolveValue(v.prog, otherSlot, b)
			if selfVal != nil && otherVal != nil && compareUint256(cmp, selfVal, otherVal) {
				kept = append(kept, j)
			}
		}
		v.links[i][other] = kept
		if len(kept) == 0 {
			v.working.Clear(uint(i))
		}
	}
	return v, nil
}

// SourceAddressEq keeps only ops whose executing address (via the
// depth→address map) equals address (spec §4.7 "source_address(literal)").
func (v *View) SourceAddressEq(address string) *View {
	for i, a := range v.Ops {
		if !v.working.Test(uint(i)) {
			continue
		}
		if v.addresses[a.Depth()] != address {
			v.working.Clear(uint(i))
		}
	}
	return v
}

// SourceAddressLinkEq prunes the current link's partners to those whose
// executing address is the same as a's, or with invert set, isn't (spec
// §4.7 "source_address(IS_ADDRESS_EQ|NE)"). Requires a prior Link call.
func (v *View) SourceAddressLinkEq(invert bool) (*View, error) {
	if v.currentLink == nil {
		return nil, ErrNoCurrentLink
	}
	other := v.currentLink
	for i, a := range v.Ops {
		if !v.working.Test(uint(i)) {
			continue
		}
		indices := v.links[i][other]
		var kept []int
		for _, j := range indices {
			b := other.Ops[j]
			eq := a.Address == b.Address
			if eq != invert {
				kept = append(kept, j)
			}
		}
		v.links[i][other] = kept
		if len(kept) == 0 {
			v.working.Clear(uint(i))
		}
	}
	return v, nil
}

// GetWorkingSet returns the surviving ops in trace order.
func (v *View) GetWorkingSet() []*tac.MetaOp {
	var out []*tac.MetaOp
	for i, op := range v.Ops {
		if v.working.Test(uint(i)) {
			out = append(out, op)
		}
	}
	return out
}
