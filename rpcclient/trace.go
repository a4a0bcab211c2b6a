package rpcclient

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru"

	"github.com/google/uuid"
)

// VandalTrace is the JSON payload debug_traceVandalTransaction returns: the
// top-level callee address and the line-oriented optrace body (spec §6
// "RPC"). Ops is carried through verbatim only to mirror the original's
// "skip if Ops is nil" check; the optrace body is what actually feeds
// trace.Decode.
type VandalTrace struct {
	To      string `json:"to"`
	OpTrace string `json:"optrace"`
	Ops     []any  `json:"Ops"`
}

// DefaultTraceCacheSize bounds how many decoded traces TraceFetcher retains.
const DefaultTraceCacheSize = 256

// TraceFetcher retrieves Vandal traces by transaction hash, caching results
// so a retried or re-enqueued hash doesn't cost a second round trip.
type TraceFetcher struct {
	client *Client
	cache  *lru.Cache
	log    *slog.Logger
}

// NewTraceFetcher builds a fetcher over client. cacheSize <= 0 selects
// DefaultTraceCacheSize. A nil log falls back to slog.Default().
func NewTraceFetcher(client *Client, cacheSize int, log *slog.Logger) (*TraceFetcher, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultTraceCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("rpcclient: building trace cache: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &TraceFetcher{client: client, cache: cache, log: log}, nil
}

// GetVandalTrace returns the Vandal trace for txHash, or nil if the node ran
// the transaction but emitted no ops (the original's "Ops is None" skip).
func (f *TraceFetcher) GetVandalTrace(ctx context.Context, txHash string) (*VandalTrace, error) {
	if v, ok := f.cache.Get(txHash); ok {
		return v.(*VandalTrace), nil
	}

	correlationID := uuid.New().String()
	f.log.Debug("fetching vandal trace", "tx_hash", txHash, "correlation_id", correlationID)

	var trc VandalTrace
	if err := f.client.call(ctx, "debug_traceVandalTransaction", []interface{}{txHash}, &trc); err != nil {
		f.log.Error("vandal trace fetch failed", "tx_hash", txHash, "correlation_id", correlationID, "err", err)
		return nil, err
	}
	if trc.Ops == nil {
		return nil, nil
	}

	f.cache.Add(txHash, &trc)
	return &trc, nil
}
