// Package output renders heuristic findings to their destination sinks: a
// per-heuristic JSON file, or a pretty-printed stdout table when no output
// directory is configured (spec §6 "Persisted state").
package output

import (
	"fmt"
	"strings"

	"github.com/vandalgo/vandal/query"
)

// Finding is one heuristic's materialized results for a single transaction,
// the unit both sinks consume.
type Finding struct {
	Heuristic string
	TxHash    string
	Results   *query.Results
}

// Sink persists or displays a Finding. The driver writes one Finding per
// vulnerable heuristic per analyzed transaction.
type Sink interface {
	Write(Finding) error
}

// projectRows resolves every "OpClass.attribute" key in results.Keys against
// each surviving Row, in column order.
func projectRows(results *query.Results) [][]any {
	rows := make([][]any, 0, results.Len())
	for _, row := range results.Rows {
		rows = append(rows, projectRow(row, results.Keys))
	}
	return rows
}

func projectRow(row query.Row, keys []string) []any {
	values := make([]any, len(keys))
	for i, key := range keys {
		opClass, attrName, ok := strings.Cut(key, ".")
		if !ok {
			continue
		}
		attr, ok := query.ParseAttr(attrName)
		if !ok {
			continue
		}
		for _, m := range row {
			if m.Opcode().String() == opClass {
				values[i] = query.AttrValue(m, attr)
				break
			}
		}
	}
	return values
}

func formatCell(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
