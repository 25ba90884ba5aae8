package apns

import (
	"encoding/binary"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildNotification(t *testing.T, tok string, opts ...MessageOption) *Notification {
	t.Helper()
	m, err := NewMessage([]string{tok}, map[string]interface{}{"aps": map[string]interface{}{"badge": 1}}, opts...)
	require.NoError(t, err)
	notifications := m.notifications(newIdentifierGenerator())
	require.Len(t, notifications, 1)
	return notifications[0]
}

func TestNotificationFrameSingleToken(t *testing.T) {
	n := buildNotification(t, token1)
	frame := n.frame()

	require.GreaterOrEqual(t, len(frame), 5)
	assert.Equal(t, byte(frameCommand), frame[0])

	contentLen := binary.BigEndian.Uint32(frame[1:5])
	assert.Equal(t, uint32(len(frame)-5), contentLen)

	assert.Equal(t, []byte{itemDeviceToken, 0, DeviceTokenLength}, frame[5:8])

	rawToken, err := hex.DecodeString(token1)
	require.NoError(t, err)
	assert.Equal(t, rawToken, frame[8:8+DeviceTokenLength])

	payloadStart := 8 + DeviceTokenLength
	payloadBytes := []byte(`{"aps":{"badge":1}}`)
	assert.Equal(t, []byte{itemPayload, 0, byte(len(payloadBytes))}, frame[payloadStart:payloadStart+3])
	assert.Equal(t, payloadBytes, frame[payloadStart+3:payloadStart+3+len(payloadBytes)])

	identStart := payloadStart + 3 + len(payloadBytes)
	assert.Equal(t, []byte{itemIdentifier, 0, 4, 0, 0, 0, 0}, frame[identStart:])
}

func TestNotificationFrameWithExpirationAndPriority(t *testing.T) {
	expiration := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

	m, err := NewMessage(
		[]string{token1, token2},
		map[string]interface{}{"aps": map[string]interface{}{"badge": 1}},
		WithExpiration(expiration),
		WithPriority(5),
	)
	require.NoError(t, err)

	idents := newIdentifierGenerator()
	notifications := m.notifications(idents)
	require.Len(t, notifications, 2)

	for _, n := range notifications {
		frame := n.frame()
		contentLen := binary.BigEndian.Uint32(frame[1:5])
		assert.Equal(t, uint32(len(frame)-5), contentLen)
		assert.Equal(t, []byte{0x04, 0x00, 0x04, 0x54, 0xA4, 0x8E, 0x00, 0x05, 0x00, 0x01, 0x05}, frame[len(frame)-11:])
	}

	// Only the token bytes differ between the two frames.
	assert.NotEqual(t, notifications[0].frame(), notifications[1].frame())
}

func TestNotificationTokenAndMessageAccessors(t *testing.T) {
	n := buildNotification(t, token1)
	assert.Equal(t, token1, n.Token())
	assert.NotNil(t, n.Message())

	id, ok := n.Ident()
	assert.True(t, ok)
	assert.Equal(t, uint32(0), id)
}

// TestNotificationFrameScenario1 reproduces spec.md §8 scenario 1's literal
// byte dump: a single-token notification with no identifier assigned
// (Message expanded outside a queue), encoding to exactly
// 02 00 00 00 39 01 00 20 <token> 02 00 13 {"aps":{"badge":1}}.
func TestNotificationFrameScenario1(t *testing.T) {
	token := "1ba97ad15460a1b0b6354b4b2e9b7c44e3f29b90d0db8e3d4c2a1f0e1a5b8fd3"

	m, err := NewMessage([]string{token}, map[string]interface{}{"aps": map[string]interface{}{"badge": 1}})
	require.NoError(t, err)

	notifications := m.notifications(nil)
	require.Len(t, notifications, 1)
	n := notifications[0]

	_, hasIdent := n.Ident()
	assert.False(t, hasIdent)

	rawToken, err := hex.DecodeString(token)
	require.NoError(t, err)

	expected := []byte{0x02, 0x00, 0x00, 0x00, 0x39, 0x01, 0x00, 0x20}
	expected = append(expected, rawToken...)
	expected = append(expected, []byte{0x02, 0x00, 0x13}...)
	expected = append(expected, []byte(`{"aps":{"badge":1}}`)...)

	assert.Equal(t, expected, n.frame())
}

// TestNotificationFrameScenario2 reproduces spec.md §8 scenario 2's literal
// 68-byte content frame: a notification with an expiration and a priority
// but, again, no identifier, so content is exactly
// token(35) + payload(22) + expiration(7) + priority(4) = 68 bytes.
func TestNotificationFrameScenario2(t *testing.T) {
	token := "1ba97ad15460a1b0b6354b4b2e9b7c44e3f29b90d0db8e3d4c2a1f0e1a5b8fd3"
	expiration := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

	m, err := NewMessage(
		[]string{token},
		map[string]interface{}{"aps": map[string]interface{}{"badge": 1}},
		WithExpiration(expiration),
		WithPriority(5),
	)
	require.NoError(t, err)

	notifications := m.notifications(nil)
	require.Len(t, notifications, 1)
	n := notifications[0]

	frame := n.frame()

	contentLen := binary.BigEndian.Uint32(frame[1:5])
	assert.Equal(t, uint32(68), contentLen)
	assert.Equal(t, uint32(len(frame)-5), contentLen)

	assert.Equal(t, []byte{0x04, 0x00, 0x04, 0x54, 0xA4, 0x8E, 0x00, 0x05, 0x00, 0x01, 0x05}, frame[len(frame)-11:])
}

func TestMessageWithKTokensProducesKFrames(t *testing.T) {
	m, err := NewMessage([]string{token1, token2, token3}, map[string]string{})
	require.NoError(t, err)

	notifications := m.notifications(newIdentifierGenerator())
	require.Len(t, notifications, 3)

	for i, n := range notifications {
		frame := n.frame()
		assert.Equal(t, byte(frameCommand), frame[0])
		_ = i
	}
}
