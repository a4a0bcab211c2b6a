package driver

import (
	"context"
	"fmt"

	"github.com/vandalgo/vandal/rpcclient"
)

// RunFile fetches txHash's Vandal trace once and runs AnalyzeTrace against
// it, mirroring run_file's single-transaction path. It returns nil (after
// logging) when the node produced no ops for the transaction, matching
// GetVandalTrace's "skip if Ops is nil" contract.
func (d *Driver) RunFile(ctx context.Context, fetcher *rpcclient.TraceFetcher, txHash string) error {
	trc, err := fetcher.GetVandalTrace(ctx, txHash)
	if err != nil {
		return fmt.Errorf("driver: fetching trace for %s: %w", txHash, err)
	}
	if trc == nil {
		d.Log.Warn("transaction produced no trace ops, skipping", "tx_hash", txHash)
		return nil
	}
	return d.AnalyzeTrace(ctx, txHash, trc.To, trc.OpTrace)
}
