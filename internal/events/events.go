// Package events carries server-sent notifications to dashboard clients.
package events

import (
	"encoding/json"
	"time"
)

// Event types pushed over /events.
const (
	TypePing           = "ping"
	TypeScrapeStarted  = "scrape_started"
	TypeScrapeFinished = "scrape_finished"
	TypeScrapeFailed   = "scrape_failed"
	TypeNoticesUpdated = "notices_updated"
	TypeConfigChanged  = "config_changed"
)

// Version is bumped when an event payload changes shape.
const Version = 1

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// MakeEvent encodes an event as a single JSON line.
func MakeEvent(reqID, typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			raw = b
		}
	}
	b, _ := json.Marshal(Event{
		Type:      typ,
		Version:   Version,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	})
	return string(b)
}
