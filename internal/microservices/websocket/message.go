package websocket

import (
	"encoding/json"
	"log/slog"
	"time"
)

// Message protocol for the notification channel. The server pushes
// shared.Event envelopes; the only client-to-server traffic is the
// lightweight control message below (ack/ping payloads from older clients),
// which is parsed and dropped.

type ClientMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientMessageFromJSON: unmarshal JSON data to ClientMessage struct
func ClientMessageFromJSON(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Error("Failed to unmarshal client message", "error", err)
		return nil, err
	}
	return &msg, nil
}
