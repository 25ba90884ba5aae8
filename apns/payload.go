package apns

import (
	"encoding/json"
	"errors"

	"github.com/mitchellh/mapstructure"
)

// Alert represents the APNs alert dictionary. Callers that only need a
// plain string alert can skip this type entirely and pass it directly in a
// Payload's Aps.Alert field, or supply their own payload type to NewMessage.
type Alert struct {
	Title                string   `json:"title,omitempty"`
	Body                 string   `json:"body,omitempty"`
	TitleLocKey          string   `json:"title-loc-key,omitempty"`
	TitleLocArgs         []string `json:"title-loc-args,omitempty"`
	ActionLocKey         string   `json:"action-loc-key,omitempty"`
	LocKey               string   `json:"loc-key,omitempty"`
	LocArgs              []string `json:"loc-args,omitempty"`
	LaunchImage          string   `json:"launch-image,omitempty"`
}

// Aps represents the APNs "aps" payload dictionary.
type Aps struct {
	Alert            interface{} `json:"alert,omitempty"`
	Badge            int         `json:"badge,omitempty"`
	Sound            string      `json:"sound,omitempty"`
	ContentAvailable int         `json:"content-available,omitempty"`
	Category         string      `json:"category,omitempty"`
}

// NewAps returns a blank Aps payload.
func NewAps() *Aps {
	return new(Aps)
}

// Payload is a convenience type implementing the common APNs payload shape:
// an "aps" dictionary plus arbitrary top-level custom fields. It is an
// ordinary value that can be passed as the payload argument to NewMessage.
type Payload struct {
	Aps          *Aps
	customValues map[string]interface{}
}

// NewPayload returns a blank notification payload.
func NewPayload() *Payload {
	return &Payload{Aps: NewAps()}
}

// AddCustomField adds a custom top-level field to the payload. The key
// "aps" is reserved and will cause MarshalJSON to fail.
func (p *Payload) AddCustomField(key string, value interface{}) {
	if p.customValues == nil {
		p.customValues = make(map[string]interface{})
	}
	p.customValues[key] = value
}

// MarshalJSON implements json.Marshaler, flattening the aps dictionary and
// custom top-level fields into a single JSON object.
func (p *Payload) MarshalJSON() ([]byte, error) {
	if p.Aps == nil {
		return nil, errors.New("apns: payload 'aps' is required")
	}

	out := make(map[string]interface{}, len(p.customValues)+1)
	for key, value := range p.customValues {
		if key == "aps" {
			return nil, errors.New("apns: 'aps' is reserved and cannot be used as a custom field")
		}
		out[key] = value
	}
	out["aps"] = p.Aps

	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. The "aps.alert" field may be
// either a plain string or an alert dictionary; dictionaries are decoded
// into an Alert via mapstructure, matching the loosely-typed shape Apple's
// documentation describes.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var raw struct {
		Aps          *Aps                   `json:"aps"`
		CustomValues map[string]interface{} `json:"customValues"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.Aps = NewAps()
	p.customValues = raw.CustomValues

	if raw.Aps == nil {
		return nil
	}

	if _, isString := raw.Aps.Alert.(string); isString {
		p.Aps = raw.Aps
		return nil
	}

	if raw.Aps.Alert != nil {
		var alert Alert
		if err := mapstructure.Decode(raw.Aps.Alert, &alert); err != nil {
			return errors.New("apns: invalid alert dictionary format")
		}
		raw.Aps.Alert = &alert
	}

	p.Aps = raw.Aps
	return nil
}
