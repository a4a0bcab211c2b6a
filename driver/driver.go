// Package driver wires the trace decoder, TAC lifter, query engine, and
// heuristics into the two entrypoints spec.md §5 describes: a one-shot
// analysis of a single already-fetched transaction ("file" mode) and a
// continuous poll-and-analyze loop against a live node ("cli" mode).
// Grounded on VandalManager (pyanalyze/manager.py): register_heuristic's
// REQUIRED_OPS union, analyze_tx's per-heuristic loop, and export_stdout/
// export_file's is_vulnerable() gate before emitting.
package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/vandalgo/vandal/evmtypes"
	"github.com/vandalgo/vandal/heuristics"
	vlog "github.com/vandalgo/vandal/log"
	"github.com/vandalgo/vandal/output"
	"github.com/vandalgo/vandal/query"
	"github.com/vandalgo/vandal/tac"
	"github.com/vandalgo/vandal/trace"
	"github.com/vandalgo/vandal/vardag"
)

// DefaultMaxOps bounds how many ops a single trace may contain before a
// Driver refuses to analyze it. The original manager.py catches a CPython
// OverflowError the destackifier raises against pathologically large
// traces; nothing in this lift path can overflow the same way (VarID and
// uint256 are fixed-width regardless of trace length), but an unbounded
// trace still means an unbounded DAG and an unbounded Filter/Link cost per
// heuristic, so the same "skip, don't crash the pipeline" behavior is kept
// under a size guard instead.
const DefaultMaxOps = 2_000_000

// ErrTraceTooLarge is returned by AnalyzeTrace when a trace exceeds MaxOps;
// callers should log and move on to the next transaction rather than treat
// it as fatal, matching analyze_tx's OverflowError catch.
var ErrTraceTooLarge = errors.New("driver: trace exceeds the configured op limit")

// Driver runs the decode -> lift -> query -> heuristics -> sink pipeline
// for one or many transactions.
type Driver struct {
	Heuristics  []heuristics.Heuristic
	RequiredOps []evmtypes.OpCode
	Sinks       []output.Sink
	Log         vlog.Logger
	MaxOps      int
}

// New builds a Driver over hs, computing the union of their required
// opcodes once up front (spec §4.6 "the union of REQUIRED_OPS across
// registered heuristics"), mirroring register_heuristic's loader_ops.extend.
func New(hs []heuristics.Heuristic, sinks []output.Sink, log vlog.Logger) *Driver {
	if log == nil {
		log = vlog.Root()
	}
	required := make([][]evmtypes.OpCode, len(hs))
	for i, h := range hs {
		required[i] = h.RequiredOps()
	}
	return &Driver{
		Heuristics:  hs,
		RequiredOps: query.RequiredOps(required...),
		Sinks:       sinks,
		Log:         log,
		MaxOps:      DefaultMaxOps,
	}
}

func (d *Driver) maxOps() int {
	if d.MaxOps <= 0 {
		return DefaultMaxOps
	}
	return d.MaxOps
}

// AnalyzeTrace decodes optrace, lifts it against rootAddress, and runs
// every registered heuristic, writing a Finding to every Sink for each
// heuristic that reports a vulnerability (analyze_tx + export_*'s
// is_vulnerable() gate). Each heuristic gets its own fresh query.Views built
// from the shared variable DAG: Views mutate their working set in place, so
// two heuristics sharing an opcode (JUMPI, say) would otherwise corrupt one
// another's results if they shared a View.
func (d *Driver) AnalyzeTrace(ctx context.Context, txHash, rootAddress, optrace string) error {
	ops, err := trace.Decode(optrace)
	if err != nil {
		return fmt.Errorf("driver: decoding trace for %s: %w", txHash, err)
	}
	if len(ops) > d.maxOps() {
		d.Log.Error("skipping oversized transaction", "tx_hash", txHash, "ops", len(ops), "max_ops", d.maxOps())
		return ErrTraceTooLarge
	}

	prog, err := tac.Lift(ops, rootAddress)
	if err != nil {
		return fmt.Errorf("driver: lifting trace for %s: %w", txHash, err)
	}

	graph, err := vardag.Build(prog)
	if err != nil {
		return fmt.Errorf("driver: building variable dag for %s: %w", txHash, err)
	}

	for _, h := range d.Heuristics {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		views := query.ViewsForOps(prog, graph, h.RequiredOps())
		results, err := h.Analyze(views)
		if err != nil {
			d.Log.Error("heuristic failed", "heuristic", h.Name(), "tx_hash", txHash, "err", err)
			continue
		}
		if !heuristics.IsVulnerable(results) {
			continue
		}

		finding := output.Finding{Heuristic: h.Name(), TxHash: txHash, Results: results}
		for _, sink := range d.Sinks {
			if err := sink.Write(finding); err != nil {
				d.Log.Error("writing finding failed", "heuristic", h.Name(), "tx_hash", txHash, "err", err)
			}
		}
	}
	return nil
}
