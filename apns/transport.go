package apns

import (
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"
)

// Transport is a single TLS byte stream to a named host:port, either the
// APNs gateway or the feedback service. Implementations must be safe for
// one concurrent reader and one concurrent writer.
type Transport interface {
	// Send writes all of b or returns an error. It connects lazily on
	// first use.
	Send(b []byte) error

	// Recv reads up to max bytes. It returns an empty slice to signal EOF
	// or a closed transport.
	Recv(max int) ([]byte, error)

	// RecvExact reads until n bytes have been obtained or the stream
	// closes, returning whatever was read.
	RecvExact(n int) ([]byte, error)

	// Close is idempotent. After Close, further Send/Recv calls return
	// empty results; a closed transport is terminal.
	Close() error

	// IsClosed reports whether Close has been called.
	IsClosed() bool

	// Reconnect returns a fresh, unconnected peer with the same
	// configuration. The receiver is left untouched.
	Reconnect() Transport
}

// TransportConfig describes how to reach one TLS endpoint. It is the
// "shallow clone" the reference implementation reconnects by re-invoking:
// rather than cloning a live connection, the engine holds a TransportConfig
// and asks its factory for a brand new Transport each time it needs one.
type TransportConfig struct {
	Host        string
	Port        uint16
	Certificate tls.Certificate

	// DialTimeout bounds the initial TCP connect. Zero means no timeout.
	DialTimeout time.Duration

	// KeepAlive is the TCP keepalive interval used on the underlying
	// connection.
	KeepAlive time.Duration
}

func (c TransportConfig) address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TransportFactory builds a Transport from a TransportConfig. The default
// is NewTLSTransport; tests typically substitute one that returns an
// in-memory fake.
type TransportFactory func(TransportConfig) Transport

// tlsTransport is the production Transport: a lazily-dialed TLS connection
// with a dedicated keepalive dialer, mirroring the teacher's worker-level
// dial settings.
type tlsTransport struct {
	config TransportConfig

	mu     sync.Mutex
	conn   *tls.Conn
	closed bool
}

// NewTLSTransport returns a Transport backed by a real TLS socket. It does
// not connect until the first Send or Recv call.
func NewTLSTransport(config TransportConfig) Transport {
	return &tlsTransport{config: config}
}

func (t *tlsTransport) connect() (*tls.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, nil
	}
	if t.conn != nil {
		return t.conn, nil
	}

	dialer := &net.Dialer{
		Timeout:   t.config.DialTimeout,
		KeepAlive: t.config.KeepAlive,
	}

	rawConn, err := dialer.Dial("tcp", t.config.address())
	if err != nil {
		return nil, err
	}

	tlsConfig := &tls.Config{
		ServerName:   t.config.Host,
		Certificates: []tls.Certificate{t.config.Certificate},
	}

	conn := tls.Client(rawConn, tlsConfig)
	if err := conn.Handshake(); err != nil {
		rawConn.Close()
		return nil, err
	}

	t.conn = conn
	return conn, nil
}

func (t *tlsTransport) Send(b []byte) error {
	conn, err := t.connect()
	if err != nil {
		return err
	}
	if conn == nil {
		return nil
	}

	_, err = conn.Write(b)
	return err
}

func (t *tlsTransport) Recv(max int) ([]byte, error) {
	conn, err := t.connect()
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, nil
	}

	buf := make([]byte, max)
	n, err := conn.Read(buf)
	if n == 0 {
		return nil, err
	}
	return buf[:n], nil
}

func (t *tlsTransport) RecvExact(n int) ([]byte, error) {
	conn, err := t.connect()
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, nil
	}

	buf := make([]byte, n)
	read := 0
	for read < n {
		k, err := conn.Read(buf[read:])
		read += k
		if err != nil {
			return buf[:read], err
		}
		if k == 0 {
			break
		}
	}
	return buf[:read], nil
}

func (t *tlsTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	if t.conn == nil {
		return nil
	}

	err := t.conn.Close()
	t.conn = nil
	return err
}

func (t *tlsTransport) IsClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *tlsTransport) Reconnect() Transport {
	return NewTLSTransport(t.config)
}
