package model

import (
	"bytes"
	"fmt"
	"time"
)

// naive layouts emitted by the backend for timestamps without a zone
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp decodes both RFC 3339 and zone-less timestamps; zone-less
// values are taken as UTC.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp: expected string, got %s", data)
	}
	raw := string(data[1 : len(data)-1])
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognised format %q", raw)
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Time.Format(time.RFC3339Nano) + `"`), nil
}
