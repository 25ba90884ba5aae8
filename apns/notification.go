package apns

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
)

// Item IDs in the APNs v2 enhanced binary frame format.
const (
	itemDeviceToken = 1
	itemPayload     = 2
	itemIdentifier  = 3
	itemExpiration  = 4
	itemPriority    = 5

	// frameCommand is the command byte for an enhanced-format notification
	// frame (command 2 in Apple's legacy binary protocol).
	frameCommand = 2
)

// Notification is a single (message, token, identifier) triple: the unit
// of the wire protocol. It is produced by a Message's notifications()
// method and is never constructed directly by callers. The identifier is
// optional: a NotificationQueue always assigns one, but a Message expanded
// without a generator (idents == nil) leaves it unset, and frame() omits
// item 3 entirely in that case.
type Notification struct {
	message      *Message
	encodedToken [DeviceTokenLength]byte
	ident        *uint32
}

// Token returns the notification's hex-encoded device token.
func (n *Notification) Token() string {
	return hex.EncodeToString(n.encodedToken[:])
}

// Ident returns the notification's 32-bit wire identifier and whether one
// is set.
func (n *Notification) Ident() (uint32, bool) {
	if n.ident == nil {
		return 0, false
	}
	return *n.ident, true
}

// identValue returns the identifier for internal comparisons, treating an
// unset identifier as 0. Only used where the caller already knows the
// notification came from a queue, which always assigns one.
func (n *Notification) identValue() uint32 {
	if n.ident == nil {
		return 0
	}
	return *n.ident
}

// Message returns the message this notification was derived from.
func (n *Notification) Message() *Message {
	return n.message
}

// frame renders the notification to a complete APNs v2 frame, ready to be
// written to the wire.
func (n *Notification) frame() []byte {
	var content bytes.Buffer

	writeItem(&content, itemDeviceToken, n.encodedToken[:])
	writeItem(&content, itemPayload, n.message.encodedPayload)

	if n.ident != nil {
		var identBuf [4]byte
		binary.BigEndian.PutUint32(identBuf[:], *n.ident)
		writeItem(&content, itemIdentifier, identBuf[:])
	}

	if n.message.encodedExpire != nil {
		var expBuf [4]byte
		binary.BigEndian.PutUint32(expBuf[:], *n.message.encodedExpire)
		writeItem(&content, itemExpiration, expBuf[:])
	}

	if n.message.priority != nil {
		writeItem(&content, itemPriority, []byte{*n.message.priority})
	}

	frame := make([]byte, 0, 5+content.Len())
	frame = append(frame, frameCommand)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(content.Len()))
	frame = append(frame, lenBuf[:]...)
	frame = append(frame, content.Bytes()...)

	return frame
}

// writeItem appends a single <id><length><payload> item to buf.
func writeItem(buf *bytes.Buffer, id uint8, payload []byte) {
	buf.WriteByte(id)
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(payload)))
	buf.Write(lenBuf[:])
	buf.Write(payload)
}
