package shared

// shared types across the application
// 1st: auth claims carried from the JWT middleware into handlers and the websocket hub
// 2nd: realtime event envelope pushed over the notification channel

import (
	"encoding/json"
	"time"
)

type AuthClaims struct {
	UserID   string `json:"user_id"`  // user identifier (UUID)
	Username string `json:"username"` // display username
	Role     string `json:"role"`     // "user" or "admin"
}

// Realtime event types delivered on the per-user notification channel.
// Deletions are intentionally not pushed: they are always client-initiated
// and reflected in the issuing request's response.
const (
	EventNotificationCreated = "notification.created"
	EventNotificationUpdated = "notification.updated"
)

// Event is the envelope sent to every websocket connection of the target user.
type Event struct {
	Type      string          `json:"type"`
	UserID    string          `json:"user_id"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent wraps an already-marshalled payload in an Event envelope.
func NewEvent(eventType, userID string, payload json.RawMessage) *Event {
	return &Event{
		Type:      eventType,
		UserID:    userID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON marshals the event for wire delivery.
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
