package apns

import (
	"context"
	"crypto/tls"
	"sync"
	"time"
)

// Manager is the top-level object for sending APNs push notifications. One
// Manager owns a single connection to one APNs environment and a single
// NotificationQueue. For most purposes a single global instance is
// sufficient; for very high volume, create multiple Managers and
// distribute messages among them.
type Manager struct {
	queue *NotificationQueue

	transportConfig  TransportConfig
	transportFactory TransportFactory

	feedbackConfig TransportConfig

	errorHandler func(Error)

	mu        sync.Mutex
	transport Transport
	done      chan struct{}
	writerWG  sync.WaitGroup
	readerWG  sync.WaitGroup
	started   bool
}

// ManagerOption configures optional Manager behavior. It may fail, e.g. a
// credential-loading option that can't read its source file.
type ManagerOption func(*Manager) error

// WithErrorHandler sets the callback invoked for unrecoverable
// per-notification delivery errors (APNs status 1-8, 255). If unset,
// errors are only logged.
func WithErrorHandler(h func(Error)) ManagerOption {
	return func(m *Manager) error {
		m.errorHandler = h
		return nil
	}
}

// WithTransportFactory overrides how the Manager builds Transports,
// letting tests and alternate backends substitute something other than a
// live TLS socket.
func WithTransportFactory(f TransportFactory) ManagerOption {
	return func(m *Manager) error {
		m.transportFactory = f
		return nil
	}
}

// NewManager constructs a Manager for the given certificate, talking to the
// APNs gateway for the given environment ("sandbox" or "production").
func NewManager(config *ManagerConfig, cert tls.Certificate, opts ...ManagerOption) (*Manager, error) {
	if config == nil {
		config = NewManagerConfig()
	}

	grace := config.MessageGrace
	if grace <= 0 {
		grace = DefaultMessageGrace
	}

	production := config.Env == "production"
	host, port := gatewayAddress(production)
	fbHost, fbPort := feedbackAddress(production)

	m := &Manager{
		queue: NewNotificationQueue(grace, nil),
		transportConfig: TransportConfig{
			Host:        host,
			Port:        port,
			Certificate: cert,
			KeepAlive:   10 * time.Second,
		},
		feedbackConfig: TransportConfig{
			Host:        fbHost,
			Port:        fbPort,
			Certificate: cert,
			KeepAlive:   10 * time.Second,
		},
		transportFactory: NewTLSTransport,
		errorHandler:     config.ErrorHandler,
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Start begins the reader/writer delivery loop. It is idempotent; calling
// Start twice on an already-started Manager has no effect.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	m.readerWG.Add(1)
	go m.readLoop(done)
}

// Stop requests termination and waits a bounded amount of time for the
// reader and writer goroutines to exit. A goroutine that does not exit in
// time is logged and abandoned.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	close(m.done)
	transport := m.transport
	m.mu.Unlock()

	if transport != nil {
		transport.Close()
	}

	if waitTimeout(&m.readerWG, time.Second) {
		logger.Warningf("apns: reader did not terminate within the shutdown window")
	}
}

// SendMessage queues message for delivery. It returns once the message has
// been appended to the internal queue; delivery itself happens
// asynchronously.
func (m *Manager) SendMessage(message *Message) {
	m.queue.append(message)
}

// FlushMessages blocks until every currently-queued notification has been
// presumed delivered (its grace window has elapsed with no error), by
// repeatedly polling purgeExpired and sleeping the returned delay. This is
// only useful to drain the queue before terminating a process.
func (m *Manager) FlushMessages() {
	delay := m.queue.purgeExpired()
	for !m.queue.isEmpty() {
		time.Sleep(delay)
		delay = m.queue.purgeExpired()
	}
}

// GetFeedback connects to the APNs feedback service and invokes cb once for
// each expired device token reported. It returns once the feedback
// connection closes (APNs always closes after sending its backlog), or
// once ctx is canceled.
func (m *Manager) GetFeedback(ctx context.Context, cb func(FeedbackRecord)) error {
	client := &FeedbackClient{
		transport: m.transportFactory(m.feedbackConfig),
	}
	return client.Run(ctx, cb)
}

//
// Reader / writer roles
//

// readLoop is the master role: it waits for work, starts a writer against
// a fresh transport, and blocks for an error frame. On any connection loss
// it resets and starts over, until told to terminate.
func (m *Manager) readLoop(done <-chan struct{}) {
	defer m.readerWG.Done()

	transport := m.transportFactory(m.transportConfig)
	m.setTransport(transport)

	for {
		select {
		case <-done:
			m.teardown(transport)
			return
		default:
		}

		m.queue.waitForUnclaimed(done)
		if isClosed(done) {
			m.teardown(transport)
			return
		}

		m.writerWG.Add(1)
		writerDone := make(chan struct{})
		go m.writeLoop(transport, writerDone)

		buf, err := transport.RecvExact(errorResponseLength)
		close(writerDone)
		m.writerWG.Wait()

		if err == nil && len(buf) == errorResponseLength {
			m.handleErrorResponse(buf)
		} else {
			logger.Infof("apns: connection dropped while awaiting error response: %v", err)
		}

		transport.Close()
		transport = transport.Reconnect()
		m.setTransport(transport)
	}
}

func (m *Manager) teardown(transport Transport) {
	transport.Close()
	m.writerWG.Wait()
}

func (m *Manager) setTransport(t Transport) {
	m.mu.Lock()
	m.transport = t
	m.mu.Unlock()
}

// handleErrorResponse parses a server error frame and reconciles it against
// the queue. Status 10 (shutdown) is a clean-close signal, not a
// rejection; any other status is reported to the error handler if the
// identified notification is still resolvable.
func (m *Manager) handleErrorResponse(buf []byte) {
	status, ident, err := parseErrorResponse(buf)
	if err != nil {
		logger.Warningf("apns: failed to parse error response: %v", err)
		m.queue.backtrack(0, false)
		return
	}

	isShutdown := status == shutdownStatus
	notification := m.queue.backtrack(ident, isShutdown)

	if notification != nil && !isShutdown {
		apnsErr := Error{
			Status:  status,
			Message: notification.Message(),
			Token:   notification.Token(),
		}
		if m.errorHandler != nil {
			m.errorHandler(apnsErr)
		} else {
			logger.Warningf("apns: %s", apnsErr.Error())
		}
	}
}

// writeLoop is the subordinate role: it claims notifications and sends
// them until told to stop or until a send fails.
func (m *Manager) writeLoop(transport Transport, done <-chan struct{}) {
	defer m.writerWG.Done()

	for {
		select {
		case <-done:
			return
		default:
		}

		notification := m.claimOrWait(done)
		if notification == nil {
			return
		}

		if err := transport.Send(notification.frame()); err != nil {
			logger.Infof("apns: write failed, yielding to reader reset: %v", err)
			m.queue.unclaim(notification)
			return
		}
	}
}

func (m *Manager) claimOrWait(done <-chan struct{}) *Notification {
	for {
		if n := m.queue.claim(); n != nil {
			return n
		}
		if isClosed(done) {
			return nil
		}
		m.queue.waitForUnclaimed(done)
		if isClosed(done) {
			return nil
		}
	}
}

// waitTimeout waits for wg to finish, up to d. It reports whether the wait
// timed out.
func waitTimeout(wg *sync.WaitGroup, d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return false
	case <-time.After(d):
		return true
	}
}
