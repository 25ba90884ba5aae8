package apns

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadMarshalStringAlert(t *testing.T) {
	p := NewPayload()
	p.Aps.Alert = "Hi there!"
	p.Aps.Sound = "default"
	p.AddCustomField("weather", "It will be sunny today")

	out, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))

	assert.Equal(t, "It will be sunny today", decoded["weather"])
	aps := decoded["aps"].(map[string]interface{})
	assert.Equal(t, "Hi there!", aps["alert"])
	assert.Equal(t, "default", aps["sound"])
}

func TestPayloadMarshalRejectsReservedCustomKey(t *testing.T) {
	p := NewPayload()
	p.AddCustomField("aps", "oops")

	_, err := json.Marshal(p)
	assert.Error(t, err)
}

func TestPayloadMarshalRequiresAps(t *testing.T) {
	p := &Payload{}
	_, err := json.Marshal(p)
	assert.Error(t, err)
}

func TestPayloadUnmarshalStringAlert(t *testing.T) {
	data := []byte(`{"aps":{"alert":"Hi there!","sound":"default"},"customValues":{"weather":"sunny"}}`)

	var p Payload
	require.NoError(t, json.Unmarshal(data, &p))

	assert.Equal(t, "Hi there!", p.Aps.Alert)
	assert.Equal(t, "default", p.Aps.Sound)
	assert.Equal(t, "sunny", p.customValues["weather"])
}

func TestPayloadUnmarshalDictionaryAlert(t *testing.T) {
	data := []byte(`{"aps":{"alert":{"title":"Hello","body":"World","loc-args":["a","b"]}}}`)

	var p Payload
	require.NoError(t, json.Unmarshal(data, &p))

	alert, ok := p.Aps.Alert.(*Alert)
	require.True(t, ok)
	assert.Equal(t, "Hello", alert.Title)
	assert.Equal(t, "World", alert.Body)
	assert.Equal(t, []string{"a", "b"}, alert.LocArgs)
}

func TestPayloadUnmarshalWithoutAps(t *testing.T) {
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
	assert.NotNil(t, p.Aps)
	assert.Nil(t, p.Aps.Alert)
}
