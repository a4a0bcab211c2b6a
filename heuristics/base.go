// Package heuristics implements the vulnerability rules that run against a
// lifted trace's query.Views (spec §4.8): Reentrancy, TimestampDependency,
// UncheckedCall, FailedSend. Each heuristic declares the opcodes it needs
// (so the op loader can compute the union once per trace) and an Analyze
// method returning the query engine's materialized Results.
package heuristics

import (
	"github.com/vandalgo/vandal/evmtypes"
	"github.com/vandalgo/vandal/query"
)

// Heuristic is one vulnerability rule: a name, the opcodes its Analyze needs
// loaded, and the analysis itself.
type Heuristic interface {
	Name() string
	RequiredOps() []evmtypes.OpCode
	Analyze(views query.Views) (*query.Results, error)
}

// IsVulnerable reports whether results is non-empty, per the original's
// `len(results) > 0` check (ported literally rather than reinterpreted,
// since a nil Results and an empty one carry the same verdict here).
func IsVulnerable(results *query.Results) bool {
	return results != nil && results.Len() > 0
}
