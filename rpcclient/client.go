// Package rpcclient is the IPC JSON-RPC client used to fetch Vandal
// execution traces and poll for new blocks (spec §6 "RPC", §9 driver).
//
// Grounded on analyzer/pyanalyze/geth.py's GethIPCManager, which drives a
// web3.py IPCProvider; here that becomes a minimal JSON-RPC 2.0 codec over a
// Unix domain socket, the same transport geth exposes at --ipcpath and that
// go-ethereum's own rpc.DialIPC speaks.
package rpcclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// ErrUnreachable wraps any failure to dial, write, or read the IPC socket
// (spec §7 "RPCError"): fatal in file mode, retried with backoff by the
// poller in streaming mode.
var ErrUnreachable = errors.New("rpcclient: endpoint unreachable")

type request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type response struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpcclient: rpc error %d: %s", e.Code, e.Message)
}

// Client is a single-connection JSON-RPC 2.0 client dialed over a Unix
// domain socket. Requests are serialized behind mu: the IPC stream carries
// one request/response pair at a time, so it's the sole suspension point
// shared by the poller and fetcher.
type Client struct {
	path string

	mu     sync.Mutex
	conn   net.Conn
	dec    *json.Decoder
	nextID uint64
}

// Dial opens the IPC socket at path.
func Dial(path string) (*Client, error) {
	c := &Client{path: path}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect() error {
	conn, err := net.DialTimeout("unix", c.path, 5*time.Second)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreachable, c.path, err)
	}
	c.conn = conn
	c.dec = json.NewDecoder(conn)
	return nil
}

// Close releases the underlying socket.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// call issues one JSON-RPC request and decodes its result into out.
// Reconnects lazily on the next call after a read/write failure.
func (c *Client) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.connect(); err != nil {
			return err
		}
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
	} else {
		c.conn.SetDeadline(time.Time{})
	}

	id := atomic.AddUint64(&c.nextID, 1)
	req := request{JSONRPC: "2.0", ID: id, Method: method, Params: params}

	if err := json.NewEncoder(c.conn).Encode(req); err != nil {
		c.conn.Close()
		c.conn = nil
		return fmt.Errorf("%w: write %s: %v", ErrUnreachable, method, err)
	}

	var resp response
	if err := c.dec.Decode(&resp); err != nil {
		c.conn.Close()
		c.conn = nil
		return fmt.Errorf("%w: read %s: %v", ErrUnreachable, method, err)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if out == nil || resp.Result == nil {
		return nil
	}
	return json.Unmarshal(resp.Result, out)
}
