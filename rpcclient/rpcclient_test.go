package rpcclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGeth is a minimal JSON-RPC 2.0 server over a Unix socket, standing in
// for geth's --ipcpath endpoint so the client can be exercised without a
// live node.
type fakeGeth struct {
	ln net.Listener
}

func startFakeGeth(t *testing.T, handle func(method string, params []json.RawMessage) (interface{}, *rpcError)) *fakeGeth {
	t.Helper()
	sockPath := filepath.Join(t.TempDir(), "geth.ipc")
	ln, err := net.Listen("unix", sockPath)
	require.NoError(t, err)

	g := &fakeGeth{ln: ln}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go g.serve(conn, handle)
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return g
}

func (g *fakeGeth) serve(conn net.Conn, handle func(string, []json.RawMessage) (interface{}, *rpcError)) {
	defer conn.Close()
	dec := json.NewDecoder(bufio.NewReader(conn))
	enc := json.NewEncoder(conn)
	for {
		var req struct {
			ID     uint64            `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := dec.Decode(&req); err != nil {
			return
		}
		result, rpcErr := handle(req.Method, req.Params)
		resp := response{ID: req.ID, Error: rpcErr}
		if rpcErr == nil {
			raw, _ := json.Marshal(result)
			resp.Result = raw
		}
		if err := enc.Encode(resp); err != nil {
			return
		}
	}
}

func (g *fakeGeth) path() string { return g.ln.Addr().String() }

func TestClientCallRoundTrip(t *testing.T) {
	g := startFakeGeth(t, func(method string, params []json.RawMessage) (interface{}, *rpcError) {
		assert.Equal(t, "debug_traceVandalTransaction", method)
		return map[string]interface{}{
			"to":      "0xdead",
			"optrace": "0,0,1,STOP,_,_,0x",
			"Ops":     []int{1},
		}, nil
	})

	client, err := Dial(g.path())
	require.NoError(t, err)
	defer client.Close()

	var out VandalTrace
	err = client.call(context.Background(), "debug_traceVandalTransaction", []interface{}{"0xabc"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "0xdead", out.To)
}

func TestClientCallPropagatesRPCError(t *testing.T) {
	g := startFakeGeth(t, func(method string, params []json.RawMessage) (interface{}, *rpcError) {
		return nil, &rpcError{Code: -32000, Message: "transaction not found"}
	})

	client, err := Dial(g.path())
	require.NoError(t, err)
	defer client.Close()

	err = client.call(context.Background(), "debug_traceVandalTransaction", []interface{}{"0xabc"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction not found")
}

func TestTraceFetcherCachesByTxHash(t *testing.T) {
	calls := 0
	g := startFakeGeth(t, func(method string, params []json.RawMessage) (interface{}, *rpcError) {
		calls++
		return map[string]interface{}{
			"to":      "0xdead",
			"optrace": "0,0,1,STOP,_,_,0x",
			"Ops":     []int{1},
		}, nil
	})

	client, err := Dial(g.path())
	require.NoError(t, err)
	defer client.Close()

	fetcher, err := NewTraceFetcher(client, 0, nil)
	require.NoError(t, err)

	trc1, err := fetcher.GetVandalTrace(context.Background(), "0xabc")
	require.NoError(t, err)
	trc2, err := fetcher.GetVandalTrace(context.Background(), "0xabc")
	require.NoError(t, err)

	assert.Same(t, trc1, trc2)
	assert.Equal(t, 1, calls)
}

func TestTraceFetcherSkipsNilOps(t *testing.T) {
	g := startFakeGeth(t, func(method string, params []json.RawMessage) (interface{}, *rpcError) {
		return map[string]interface{}{"to": "0xdead", "optrace": ""}, nil
	})

	client, err := Dial(g.path())
	require.NoError(t, err)
	defer client.Close()

	fetcher, err := NewTraceFetcher(client, 0, nil)
	require.NoError(t, err)

	trc, err := fetcher.GetVandalTrace(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Nil(t, trc)
}

func TestPollerPollBlockRetriesThenSucceeds(t *testing.T) {
	attempts := 0
	g := startFakeGeth(t, func(method string, params []json.RawMessage) (interface{}, *rpcError) {
		attempts++
		if attempts < 2 {
			return map[string]interface{}{"number": "", "transactions": []string{}}, nil
		}
		return map[string]interface{}{
			"number":       fmt.Sprintf("0x%x", 42),
			"transactions": []string{"0x1", "0x2"},
		}, nil
	})

	client, err := Dial(g.path())
	require.NoError(t, err)
	defer client.Close()

	p := NewPoller(client, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	txs, err := p.PollBlock(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"0x1", "0x2"}, txs)
	assert.GreaterOrEqual(t, attempts, 2)
}

func TestPollerStartResolvesLatest(t *testing.T) {
	g := startFakeGeth(t, func(method string, params []json.RawMessage) (interface{}, *rpcError) {
		return map[string]interface{}{
			"number":       fmt.Sprintf("0x%x", 100),
			"transactions": []string{"0xaa"},
		}, nil
	})

	client, err := Dial(g.path())
	require.NoError(t, err)
	defer client.Close()

	p := NewPoller(client, nil)
	n, txs, err := p.Start(context.Background(), "latest")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), n)
	assert.Equal(t, []string{"0xaa"}, txs)
}
