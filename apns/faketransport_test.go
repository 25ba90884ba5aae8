package apns

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"sync"
)

// fakeRecorder is shared across every fakeConn produced by a single
// Manager under test (including ones created by Reconnect), so a test can
// observe the full sequence of frames written across reconnects and push
// a canned error response onto whichever connection is currently live.
type fakeRecorder struct {
	mu        sync.Mutex
	sent      []string
	current   *fakeConn
	connOpens int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{}
}

func (r *fakeRecorder) factory() TransportFactory {
	return func(TransportConfig) Transport {
		return newFakeConn(r)
	}
}

func (r *fakeRecorder) recordSend(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, token)
}

func (r *fakeRecorder) sentTokens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

// feedResponse delivers buf to whichever connection is currently live, as
// if the server had written it.
func (r *fakeRecorder) feedResponse(buf []byte) {
	r.mu.Lock()
	c := r.current
	r.mu.Unlock()
	c.respCh <- buf
}

func (r *fakeRecorder) openCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connOpens
}

// fakeConn is an in-memory Transport double standing in for one TLS
// connection's lifetime. Send records the device token of each frame
// written to it; RecvExact delivers whatever feedResponse pushes, or
// returns io.EOF once closed.
type fakeConn struct {
	rec     *fakeRecorder
	respCh  chan []byte
	closeCh chan struct{}
	once    sync.Once
}

func newFakeConn(rec *fakeRecorder) *fakeConn {
	c := &fakeConn{
		rec:     rec,
		respCh:  make(chan []byte, 8),
		closeCh: make(chan struct{}),
	}

	rec.mu.Lock()
	rec.current = c
	rec.connOpens++
	rec.mu.Unlock()

	return c
}

func (c *fakeConn) Send(b []byte) error {
	if tok, ok := frameToken(b); ok {
		c.rec.recordSend(tok)
	}
	return nil
}

func (c *fakeConn) Recv(max int) ([]byte, error) {
	return nil, io.EOF
}

func (c *fakeConn) RecvExact(n int) ([]byte, error) {
	select {
	case buf := <-c.respCh:
		return buf, nil
	case <-c.closeCh:
		return nil, io.EOF
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closeCh) })
	return nil
}

func (c *fakeConn) IsClosed() bool {
	select {
	case <-c.closeCh:
		return true
	default:
		return false
	}
}

func (c *fakeConn) Reconnect() Transport {
	return newFakeConn(c.rec)
}

// frameToken extracts the hex-encoded device token from an encoded
// notification frame, as written by Notification.frame.
func frameToken(frame []byte) (string, bool) {
	if len(frame) < 5 {
		return "", false
	}

	content := frame[5:]
	for len(content) >= 3 {
		id := content[0]
		length := int(binary.BigEndian.Uint16(content[1:3]))
		if len(content) < 3+length {
			return "", false
		}
		payload := content[3 : 3+length]

		if id == itemDeviceToken {
			return hex.EncodeToString(payload), true
		}

		content = content[3+length:]
	}

	return "", false
}
