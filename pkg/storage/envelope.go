package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const (
	EnvelopeVersion = "1.0"
	TargetAll       = "all"
)

// Envelope is the metadata wrapper stored around every payload.
type Envelope struct {
	Payload    json.RawMessage `json:"payload"`
	Timestamp  time.Time       `json:"timestamp"`
	SourcePage string          `json:"sourcePage"`
	Version    string          `json:"version"`
	ExpiresAt  *time.Time      `json:"expiresAt"`
	Target     string          `json:"target,omitempty"`
	Shared     bool            `json:"shared,omitempty"`
	Imported   bool            `json:"imported,omitempty"`
	ImportDate *time.Time      `json:"importDate,omitempty"`
}

// Expired reports whether the envelope carries an expiry that lies before now.
func (e Envelope) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}

// HasPayload is false for entries saved without data or with a JSON null.
func (e Envelope) HasPayload() bool {
	trimmed := bytes.TrimSpace(e.Payload)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Decode unmarshals the payload into dst.
func (e Envelope) Decode(dst any) error {
	return json.Unmarshal(e.Payload, dst)
}

type envelopeWire struct {
	Payload    json.RawMessage `json:"payload"`
	Data       json.RawMessage `json:"data"`
	Timestamp  json.RawMessage `json:"timestamp"`
	SourcePage string          `json:"sourcePage"`
	Source     string          `json:"source"`
	Version    string          `json:"version"`
	ExpiresAt  json.RawMessage `json:"expiresAt"`
	Expires    json.RawMessage `json:"expires"`
	Target     string          `json:"target"`
	Shared     bool            `json:"shared"`
	Imported   bool            `json:"imported"`
	ImportDate json.RawMessage `json:"importDate"`
}

// UnmarshalJSON also accepts the field names written by the browser dashboard
// (data, source, expires) and epoch-millisecond timestamps.
func (e *Envelope) UnmarshalJSON(b []byte) error {
	var w envelopeWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	e.Payload = firstRaw(w.Payload, w.Data)
	e.SourcePage = w.SourcePage
	if e.SourcePage == "" {
		e.SourcePage = w.Source
	}
	e.Version = w.Version
	e.Target = w.Target
	e.Shared = w.Shared
	e.Imported = w.Imported

	ts, err := decodeTime(w.Timestamp)
	if err != nil {
		return fmt.Errorf("invalid timestamp: %w", err)
	}
	if ts != nil {
		e.Timestamp = *ts
	}
	if e.ExpiresAt, err = decodeTime(firstRaw(w.ExpiresAt, w.Expires)); err != nil {
		return fmt.Errorf("invalid expiry: %w", err)
	}
	if e.ImportDate, err = decodeTime(w.ImportDate); err != nil {
		return fmt.Errorf("invalid import date: %w", err)
	}
	return nil
}

func firstRaw(values ...json.RawMessage) json.RawMessage {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}
	return nil
}

func decodeTime(raw json.RawMessage) (*time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if s == "" {
			return nil, nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
	ms, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return nil, err
	}
	t := time.UnixMilli(int64(ms)).UTC()
	return &t, nil
}
