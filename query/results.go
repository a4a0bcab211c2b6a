package query

import "github.com/vandalgo/vandal/tac"

// Row is one materialized result: the anchor op (from v) followed by one
// partner op per linked view, in link-insertion order (spec §4.7
// "get_results").
type Row []*tac.MetaOp

// Results is the materialized output of GetResults: each surviving anchor op
// contributes the Cartesian product of its link sets across every view it
// was linked to.
type Results struct {
	Keys []string
	Rows []Row
}

func (r *Results) Len() int { return len(r.Rows) }

// GetResults materializes the current working set: for each surviving op,
// the Cartesian product of its link sets across all views participated in
// via Link, in view-insertion order then link-insertion order (spec §4.7
// "Ordering and determinism").
func (v *View) GetResults(keys ...string) *Results {
	results := &Results{Keys: keys}

	for i, a := range v.Ops {
		if !v.working.Test(uint(i)) {
			continue
		}
		linkSets := v.links[i]
		if len(linkSets) == 0 {
			results.Rows = append(results.Rows, Row{a})
			continue
		}

		product := []Row{{a}}
		for _, view := range v.linkOrder {
			indices, ok := linkSets[view]
			if !ok || len(indices) == 0 {
				product = nil
				break
			}
			var next []Row
			for _, row := range product {
				for _, j := range indices {
					extended := append(append(Row(nil), row...), view.Ops[j])
					next = append(next, extended)
				}
			}
			product = next
		}
		results.Rows = append(results.Rows, product...)
	}

	return results
}
