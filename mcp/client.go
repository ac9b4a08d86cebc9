package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

// Per-method deadlines for remote calls.
const (
	ListToolsTimeout = 30 * time.Second
	CallToolTimeout  = 10 * time.Second
)

var (
	// ErrRemoteTimeout is returned when a remote server does not answer
	// within the method deadline.
	ErrRemoteTimeout = errors.New("remote server timed out")
	// ErrClientClosed is returned for calls on a closed client.
	ErrClientClosed = errors.New("client is closed")
)

// Client speaks newline-delimited JSON-RPC to one MCP server over a
// reader/writer pair, typically the stdio pipes of a server process.
// It is safe for concurrent use; responses are correlated by request ID.
type Client struct {
	mu      sync.Mutex
	w       io.Writer
	nextID  int64
	pending map[int64]chan *Response
	closed  bool

	done chan struct{}

	// ServerInfo is populated by Initialize.
	ServerInfo PeerInfo
}

// NewClient returns a client over the given pipes and starts its read
// loop. The caller owns the pipes; Close only stops the loop.
func NewClient(r io.Reader, w io.Writer) *Client {
	c := &Client{
		w:       w,
		pending: make(map[int64]chan *Response),
		done:    make(chan struct{}),
	}
	go c.readLoop(r)
	return c
}

func (c *Client) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var resp Response
		if err := json.Unmarshal(line, &resp); err != nil {
			logger.KV(xlog.WARNING, "reason", "unparsable_response", "err", err.Error())
			continue
		}
		if resp.ID == nil {
			// server-initiated notification, nothing registered to
			// consume it
			continue
		}
		c.mu.Lock()
		ch := c.pending[*resp.ID]
		delete(c.pending, *resp.ID)
		c.mu.Unlock()
		if ch != nil {
			ch <- &resp
		}
	}
	c.shutdownPending()
}

func (c *Client) shutdownPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	for id, ch := range c.pending {
		delete(c.pending, id)
		close(ch)
	}
}

// Close stops the client. In-flight calls fail with ErrClientClosed.
func (c *Client) Close() {
	c.shutdownPending()
}

func (c *Client) call(ctx context.Context, method string, params any, timeout time.Duration) (*Response, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errors.WithStack(ErrClientClosed)
	}
	c.nextID++
	id := c.nextID
	ch := make(chan *Response, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	req, err := NewRequest(id, method, params)
	if err != nil {
		return nil, err
	}
	if err := c.write(req); err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, errors.WithStack(ErrClientClosed)
		}
		if resp.Error != nil {
			return nil, errors.WithMessagef(resp.Error, "%s failed with code %d", method, resp.Error.Code)
		}
		return resp, nil
	case <-timer.C:
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, errors.WithMessagef(ErrRemoteTimeout, "%s after %s", method, timeout)
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, errors.WithStack(ctx.Err())
	case <-c.done:
		return nil, errors.WithStack(ErrClientClosed)
	}
}

func (c *Client) write(req *Request) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "failed to marshal request")
	}
	raw = append(raw, '\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.w.Write(raw); err != nil {
		return errors.Wrap(err, "failed to write request")
	}
	return nil
}

// Notify sends a notification without waiting for a response.
func (c *Client) Notify(method string, params any) error {
	req, err := NewNotification(method, params)
	if err != nil {
		return err
	}
	return c.write(req)
}

// Initialize performs the MCP handshake and sends the initialized
// notification.
func (c *Client) Initialize(ctx context.Context, clientName, clientVersion string) (*InitializeResult, error) {
	resp, err := c.call(ctx, "initialize", &InitializeParams{
		ProtocolVersion: ProtocolVersion,
		ClientInfo: &PeerInfo{
			Name:    clientName,
			Version: clientVersion,
		},
	}, ListToolsTimeout)
	if err != nil {
		return nil, err
	}
	var res InitializeResult
	if err := json.Unmarshal(resp.Result, &res); err != nil {
		return nil, errors.Wrap(err, "invalid initialize result")
	}
	c.ServerInfo = res.ServerInfo

	if err := c.Notify("notifications/initialized", nil); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListTools fetches the remote tool definitions.
func (c *Client) ListTools(ctx context.Context) ([]ToolDefinition, error) {
	resp, err := c.call(ctx, "tools/list", nil, ListToolsTimeout)
	if err != nil {
		return nil, err
	}
	var res ListToolsResult
	if err := json.Unmarshal(resp.Result, &res); err != nil {
		return nil, errors.Wrap(err, "invalid tools/list result")
	}
	return res.Tools, nil
}

// CallTool invokes a remote tool and returns its result.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*CallToolResult, error) {
	resp, err := c.call(ctx, "tools/call", &CallToolParams{
		Name:      name,
		Arguments: args,
	}, CallToolTimeout)
	if err != nil {
		return nil, err
	}
	var res CallToolResult
	if err := json.Unmarshal(resp.Result, &res); err != nil {
		return nil, errors.Wrap(err, "invalid tools/call result")
	}
	return &res, nil
}

// Ping checks server liveness.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.call(ctx, "ping", nil, CallToolTimeout)
	return err
}

// Shutdown asks the server to stop and sends the exit notification.
func (c *Client) Shutdown(ctx context.Context) error {
	if _, err := c.call(ctx, "shutdown", nil, CallToolTimeout); err != nil {
		return err
	}
	return c.Notify("exit", nil)
}
