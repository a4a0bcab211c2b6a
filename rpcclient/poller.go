package rpcclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxBackoffExponent bounds block-not-found retries (spec §5 "Retries"):
// sleeps double from 2s up through 2^10s (~17 minutes), then give up.
const maxBackoffExponent = 10

// ErrBlockNotFound is returned when the node has no block at the requested
// height yet.
var ErrBlockNotFound = errors.New("rpcclient: block not found")

// ErrBackoffExhausted is returned once retries exceed maxBackoffExponent;
// the driver treats this as a fatal, non-retryable condition and stops the
// poller (spec §5).
var ErrBackoffExhausted = errors.New("rpcclient: block retries exhausted")

type rawBlock struct {
	Number       string   `json:"number"`
	Transactions []string `json:"transactions"`
}

// Poller enumerates blocks starting at a height (or "latest") and reports
// each block's transaction hashes, retrying block-not-found and unreachable
// endpoint errors with exponential backoff (spec §5, §9 "poll_for_txs").
type Poller struct {
	client *Client
	log    *slog.Logger
}

// NewPoller builds a poller over client. A nil log falls back to
// slog.Default().
func NewPoller(client *Client, log *slog.Logger) *Poller {
	if log == nil {
		log = slog.Default()
	}
	return &Poller{client: client, log: log}
}

// Start resolves block ("latest" or a decimal height) to the first concrete
// block number the poller should process next, per the original's
// __init_tx_queue: it fetches that block's transactions once, then resumes
// polling at number+1.
func (p *Poller) Start(ctx context.Context, block string) (uint64, []string, error) {
	tag := block
	if h, perr := strconv.ParseUint(block, 10, 64); perr == nil {
		tag = fmt.Sprintf("0x%x", h)
	}
	n, txs, err := p.fetchBlock(ctx, tag)
	if err != nil {
		return 0, nil, err
	}
	return n, txs, nil
}

// PollBlock fetches block number n's transactions, retrying with
// exponential backoff if the node hasn't produced it yet or the endpoint is
// unreachable. ctx cancellation
// aborts the retry loop.
func (p *Poller) PollBlock(ctx context.Context, n uint64) ([]string, error) {
	backoff := 1
	for {
		_, txs, err := p.fetchBlock(ctx, fmt.Sprintf("0x%x", n))
		if err == nil {
			return txs, nil
		}
		if !errors.Is(err, ErrBlockNotFound) && !errors.Is(err, ErrUnreachable) {
			return nil, err
		}
		if backoff > maxBackoffExponent {
			return nil, ErrBackoffExhausted
		}

		wait := time.Duration(1<<uint(backoff)) * time.Second
		correlationID := uuid.New().String()
		p.log.Warn("block not available, retrying",
			"block", n, "wait", wait, "err", err, "correlation_id", correlationID)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		backoff++
	}
}

func (p *Poller) fetchBlock(ctx context.Context, block string) (uint64, []string, error) {
	var raw rawBlock
	if err := p.client.call(ctx, "eth_getBlockByNumber", []interface{}{block, false}, &raw); err != nil {
		return 0, nil, err
	}
	if raw.Number == "" {
		return 0, nil, ErrBlockNotFound
	}
	n, err := parseHexUint(raw.Number)
	if err != nil {
		return 0, nil, fmt.Errorf("rpcclient: parsing block number %q: %w", raw.Number, err)
	}
	return n, raw.Transactions, nil
}

func parseHexUint(s string) (uint64, error) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 16, 64)
}
