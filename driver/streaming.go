package driver

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vandalgo/vandal/rpcclient"
)

// DefaultQueueDepth bounds how many pending transaction hashes the poller
// goroutine may buffer ahead of the analyzer goroutines (spec §5 "streaming
// mode"), the channel equivalent of GethIPCManager's tx_queue.
const DefaultQueueDepth = 256

// DefaultWorkers is how many analyzer goroutines RunStreaming starts when
// workers <= 0. The original ran a single analyzer thread (run()); pipeline
// stages here are naturally parallelizable across transactions since each
// gets its own TAC program and Views, so a small worker pool is used
// instead of porting the single-thread limitation literally.
const DefaultWorkers = 4

// RunStreaming polls blocks starting at startBlock and analyzes every
// transaction as its trace becomes available, until the context is
// canceled or the poller exhausts its block-not-found retries. It mirrors
// run_cli's split between GethIPCManager's poll_for_txs/run threads and
// VandalManager's work_queue, translated into an errgroup-supervised
// producer/consumer pipeline over a bounded channel.
func (d *Driver) RunStreaming(ctx context.Context, poller *rpcclient.Poller, fetcher *rpcclient.TraceFetcher, startBlock string, workers int) error {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	txHashes := make(chan string, DefaultQueueDepth)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(txHashes)
		return d.pollBlocks(ctx, poller, startBlock, txHashes)
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			return d.analyzeQueue(ctx, fetcher, txHashes)
		})
	}

	return g.Wait()
}

// pollBlocks resolves startBlock, then walks forward one block at a time,
// pushing each block's transaction hashes onto out. A block-not-found
// condition that exhausts its retry budget ends the poll loop cleanly
// (poll_for_txs breaking out of its while loop and calling manager.stop()),
// rather than failing the whole pipeline.
func (d *Driver) pollBlocks(ctx context.Context, poller *rpcclient.Poller, startBlock string, out chan<- string) error {
	n, hashes, err := poller.Start(ctx, startBlock)
	if err != nil {
		return fmt.Errorf("driver: resolving start block %q: %w", startBlock, err)
	}

	for {
		for _, h := range hashes {
			select {
			case out <- h:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		n++
		hashes, err = poller.PollBlock(ctx, n)
		if err != nil {
			if errors.Is(err, rpcclient.ErrBackoffExhausted) {
				d.Log.Error("block not found after exhausting retries, stopping poller", "block", n)
				return nil
			}
			return fmt.Errorf("driver: polling block %d: %w", n, err)
		}
	}
}

// analyzeQueue drains txHashes, fetching and analyzing each one, until the
// channel closes or ctx is canceled. A single transaction's fetch or
// analysis error is logged and skipped rather than aborting the worker, so
// one bad trace doesn't stop the rest of the block range from being
// analyzed.
func (d *Driver) analyzeQueue(ctx context.Context, fetcher *rpcclient.TraceFetcher, txHashes <-chan string) error {
	for {
		select {
		case txHash, ok := <-txHashes:
			if !ok {
				return nil
			}
			if err := d.RunFile(ctx, fetcher, txHash); err != nil {
				d.Log.Error("analyzing transaction failed", "tx_hash", txHash, "err", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
