package output

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
)

// TableSink pretty-prints results to Writer (stdout by default), used when
// --output is omitted in file mode (spec §6). Mirrors the original's
// `print(f'Found vulnerable: {tx_hash} from {name} heuristic')` banner
// followed by the result set.
type TableSink struct {
	Writer io.Writer
}

// Write prints f's banner line, then a table of its rows when non-empty.
func (s TableSink) Write(f Finding) error {
	w := s.Writer
	if w == nil {
		w = os.Stdout
	}

	fmt.Fprintf(w, "Found vulnerable: %s from %s heuristic\n", f.TxHash, f.Heuristic)
	if f.Results == nil || f.Results.Len() == 0 {
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(f.Results.Keys)
	for _, row := range projectRows(f.Results) {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		table.Append(cells)
	}
	table.Render()
	return nil
}
