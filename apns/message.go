package apns

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DeviceTokenLength is the length, in bytes, of a decoded device token.
const DeviceTokenLength = 32

// Message is a single push notification to be sent to one or more devices.
//
// A Message is immutable once constructed: tokens are decoded and the
// payload is serialized exactly once, by NewMessage.
type Message struct {
	tokens         []string
	encodedTokens  [][DeviceTokenLength]byte
	payload        interface{}
	encodedPayload []byte
	expiration     *time.Time
	encodedExpire  *uint32
	priority       *uint8
}

// MessageOption configures optional Message fields.
type MessageOption func(*Message) error

// WithExpiration sets the absolute instant after which APNs should stop
// trying to deliver the notification. Naive (non-UTC) times are treated as
// UTC.
func WithExpiration(t time.Time) MessageOption {
	return func(m *Message) error {
		u := t.UTC()
		m.expiration = &u
		return nil
	}
}

// WithPriority sets the APNs delivery priority. Must be in [0, 255];
// Apple's documented values are 5 (send when convenient) and 10 (send now).
func WithPriority(priority int) MessageOption {
	return func(m *Message) error {
		if priority < 0 || priority > 255 {
			return fmt.Errorf("apns: priority must be in [0, 255], got %d", priority)
		}
		p := uint8(priority)
		m.priority = &p
		return nil
	}
}

// NewMessage constructs a Message for delivery to the given hex-encoded
// device tokens. payload is serialized to compact UTF-8 JSON (no spaces,
// non-ASCII left unescaped) immediately; construction fails if any token is
// not valid hex, the wrong length, the payload cannot be marshaled, or an
// option is invalid.
func NewMessage(tokens []string, payload interface{}, opts ...MessageOption) (*Message, error) {
	if len(tokens) == 0 {
		return nil, errors.New("apns: message must have at least one token")
	}

	m := &Message{
		tokens:  append([]string(nil), tokens...),
		payload: payload,
	}

	encoded := make([][DeviceTokenLength]byte, len(tokens))
	for i, t := range tokens {
		raw, err := hex.DecodeString(t)
		if err != nil {
			return nil, fmt.Errorf("apns: token %q is not valid hex: %w", t, err)
		}
		if len(raw) != DeviceTokenLength {
			return nil, fmt.Errorf("apns: token %q decodes to %d bytes, want %d", t, len(raw), DeviceTokenLength)
		}
		copy(encoded[i][:], raw)
	}
	m.encodedTokens = encoded

	payloadBytes, err := marshalCompactJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("apns: payload is not serializable: %w", err)
	}
	m.encodedPayload = payloadBytes

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	if m.expiration != nil {
		secs := uint32(m.expiration.Unix())
		m.encodedExpire = &secs
	}

	return m, nil
}

// marshalCompactJSON serializes v without HTML-escaping (matching the
// reference implementation's ensure_ascii=False, compact separators).
func marshalCompactJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Tokens returns the hex-encoded device tokens this message targets.
func (m *Message) Tokens() []string {
	return append([]string(nil), m.tokens...)
}

// notifications expands the message into one Notification per token, in
// token order, assigning each an identifier pulled from idents. If idents
// is nil, the resulting notifications carry no identifier at all (and
// frame() omits item 3), matching a Message expanded outside a
// NotificationQueue.
func (m *Message) notifications(idents *identifierGenerator) []*Notification {
	out := make([]*Notification, len(m.encodedTokens))
	for i, tok := range m.encodedTokens {
		n := &Notification{
			message:      m,
			encodedToken: tok,
		}
		if idents != nil {
			id := idents.next()
			n.ident = &id
		}
		out[i] = n
	}
	return out
}

// identifierGenerator hands out sequential, wrap-around 32-bit identifiers.
// It is safe for concurrent use.
type identifierGenerator struct {
	mu     sync.Mutex
	nextID uint32
}

func newIdentifierGenerator() *identifierGenerator {
	return &identifierGenerator{}
}

// next returns the next identifier in the cycle. Wrap-around through the
// full 32-bit space is intentional; the grace window keeps the live set
// far smaller than 2^32, making collisions theoretical.
func (g *identifierGenerator) next() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nextID
	g.nextID++
	return id
}
