package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JSONSink writes one file per heuristic per transaction, named
// "<heuristic>-<tx_hash>.json" (spec §6), under Dir.
//
// The original BaseHeuristic.export hardcodes "reentrancy-" as the filename
// prefix regardless of which heuristic is exporting — a bug, documented in
// DESIGN.md. This sink uses the heuristic's own name, as spec.md §6
// specifies.
type JSONSink struct {
	Dir string
}

type jsonDocument struct {
	Heuristic string   `json:"heuristic"`
	TxHash    string   `json:"tx_hash"`
	Keys      []string `json:"keys"`
	Rows      [][]any  `json:"rows"`
}

// Write marshals f's rows, projected against its Keys, to Dir.
func (s JSONSink) Write(f Finding) error {
	doc := jsonDocument{
		Heuristic: f.Heuristic,
		TxHash:    f.TxHash,
		Keys:      f.Results.Keys,
		Rows:      projectRows(f.Results),
	}

	path := filepath.Join(s.Dir, fmt.Sprintf("%s-%s.json", f.Heuristic, f.TxHash))
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("output: encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("output: writing %s: %w", path, err)
	}
	return nil
}
