package apns

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkedTransport replays a fixed sequence of Recv chunks, then reports
// EOF. It is only used to drive FeedbackClient.Run, which never calls
// Send or RecvExact.
type chunkedTransport struct {
	chunks [][]byte
	i      int
	closed bool
}

func (c *chunkedTransport) Send(b []byte) error { return nil }

func (c *chunkedTransport) Recv(max int) ([]byte, error) {
	if c.i >= len(c.chunks) {
		return nil, io.EOF
	}
	chunk := c.chunks[c.i]
	c.i++
	return chunk, nil
}

func (c *chunkedTransport) RecvExact(n int) ([]byte, error) { return nil, io.EOF }
func (c *chunkedTransport) Close() error                    { c.closed = true; return nil }
func (c *chunkedTransport) IsClosed() bool                   { return c.closed }
func (c *chunkedTransport) Reconnect() Transport             { return c }

func TestFeedbackClientRun(t *testing.T) {
	when := time.Date(2015, 10, 21, 10, 32, 31, 0, time.UTC)
	rec1 := encodeFeedbackRecord(t, when, token1)
	rec2 := encodeFeedbackRecord(t, when, token2)

	transport := &chunkedTransport{
		chunks: [][]byte{
			rec1[:3],              // split mid-header
			rec1[3:],              // completes record 1
			append(rec2, rec2...), // record2 twice back to back, split across chunks oddly
		},
	}

	client := &FeedbackClient{transport: transport}

	var got []FeedbackRecord
	err := client.Run(context.Background(), func(r FeedbackRecord) { got = append(got, r) })

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, token1, got[0].Token)
	assert.Equal(t, token2, got[1].Token)
	assert.Equal(t, token2, got[2].Token)
	assert.True(t, transport.closed)
}

// blockingTransport's Recv blocks until Close is called, then reports the
// connection as gone. It exists only to exercise Run's ctx-cancellation
// path, which relies on Close unblocking a pending Recv.
type blockingTransport struct {
	closed chan struct{}
	once   sync.Once
}

func newBlockingTransport() *blockingTransport {
	return &blockingTransport{closed: make(chan struct{})}
}

func (b *blockingTransport) Send(p []byte) error { return nil }

func (b *blockingTransport) Recv(max int) ([]byte, error) {
	<-b.closed
	return nil, io.ErrClosedPipe
}

func (b *blockingTransport) RecvExact(n int) ([]byte, error) { return nil, io.ErrClosedPipe }

func (b *blockingTransport) Close() error {
	b.once.Do(func() { close(b.closed) })
	return nil
}

func (b *blockingTransport) IsClosed() bool         { return false }
func (b *blockingTransport) Reconnect() Transport { return b }

func TestFeedbackClientRunCancelableViaContext(t *testing.T) {
	transport := newBlockingTransport()
	client := &FeedbackClient{transport: transport}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- client.Run(ctx, func(FeedbackRecord) {})
	}()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestNewFeedbackClientUsesTLSTransport(t *testing.T) {
	client := NewFeedbackClient(TransportConfig{Host: "feedback.sandbox.push.apple.com", Port: FeedbackGatewayPort})
	_, ok := client.transport.(*tlsTransport)
	assert.True(t, ok)
}
