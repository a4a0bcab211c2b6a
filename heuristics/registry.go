package heuristics

import (
	"fmt"
	"strings"
)

// Registry is the static name -> Heuristic table (spec §4.8, "REDESIGN
// FLAGS": a fixed registry rather than a directory-scanned plugin loader).
// Grounded on load_heuristics.py's INCLUDE_HEURISTICS dict; the dynamic
// heuristic_dir fallback that dict also supported is intentionally not
// ported (see DESIGN.md).
var Registry = map[string]Heuristic{
	"reentrancy":     &Reentrancy{},
	"timestamp":      &TimestampDependency{},
	"unchecked_call": &UncheckedCall{},
	"failed_send":    &FailedSend{},
}

// Get resolves a comma-separated list of heuristic names to their
// Heuristic implementations, or every registered heuristic when names is
// empty. An unknown name returns an error naming it.
func Get(names string) ([]Heuristic, error) {
	if strings.TrimSpace(names) == "" {
		all := make([]Heuristic, 0, len(Registry))
		for _, h := range Registry {
			all = append(all, h)
		}
		return all, nil
	}

	var out []Heuristic
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		h, ok := Registry[name]
		if !ok {
			return nil, fmt.Errorf("heuristics: unknown heuristic %q", name)
		}
		out = append(out, h)
	}
	return out, nil
}
