package dto

import (
	"encoding/json"
	"time"

	"esporthub/internal/microservices/http-api/models"
)

// NotificationResponse mirrors a stored notification row
type NotificationResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"created_at"`
}

// FromModelToNotificationResponse converts a Notification model to its DTO
func FromModelToNotificationResponse(n *models.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// NotificationListResponse for the recent-notifications listing
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Unread        int64                  `json:"unread"`
}

// UnreadCountResponse for the badge poll
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}
