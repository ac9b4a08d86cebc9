package mcp

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dropFirstWriter swallows the first frame so the first request never
// reaches the server.
type dropFirstWriter struct {
	w       io.Writer
	dropped bool
}

func (d *dropFirstWriter) Write(p []byte) (int, error) {
	if !d.dropped {
		d.dropped = true
		return len(p), nil
	}
	return d.w.Write(p)
}

// TestClient_TimeoutAbortsOnlyThatCall checks that a timed-out call
// does not poison the connection: a later call on the same client
// still succeeds.
func TestClient_TimeoutAbortsOnlyThatCall(t *testing.T) {
	srv, err := NewServer()
	require.NoError(t, err)

	clientReader, serverWriter := io.Pipe()
	serverReader, clientWriter := io.Pipe()
	t.Cleanup(func() {
		_ = clientWriter.Close()
		_ = serverWriter.Close()
	})
	go func() {
		_ = srv.Serve(context.Background(), serverReader, serverWriter)
	}()

	client := NewClient(clientReader, &dropFirstWriter{w: clientWriter})
	t.Cleanup(client.Close)

	_, err = client.call(context.Background(), "ping", nil, 50*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRemoteTimeout))

	_, err = client.call(context.Background(), "ping", nil, CallToolTimeout)
	require.NoError(t, err)

	client.mu.Lock()
	pending := len(client.pending)
	client.mu.Unlock()
	assert.Zero(t, pending)
}

// TestClient_TransportCloseFailsPending checks that a pending call on
// a closed transport fails distinctly from a well-formed error
// response.
func TestClient_TransportCloseFailsPending(t *testing.T) {
	clientReader, feed := io.Pipe()
	client := NewClient(clientReader, io.Discard)

	done := make(chan error, 1)
	go func() {
		_, err := client.call(context.Background(), "tools/list", nil, ListToolsTimeout)
		done <- err
	}()

	// give the call time to register, then drop the transport
	time.Sleep(20 * time.Millisecond)
	_ = feed.Close()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrClientClosed))
	case <-time.After(5 * time.Second):
		t.Fatal("pending call did not fail after transport close")
	}

	_, err := client.call(context.Background(), "ping", nil, CallToolTimeout)
	assert.True(t, errors.Is(err, ErrClientClosed))
}
