package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types. Closed enumeration.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
	NotificationEvent   = "event"
	NotificationRanking = "ranking"
	NotificationMention = "mention"
	NotificationSystem  = "system"
)

type Notification struct {
	ID        string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      string          `gorm:"not null;size:20" json:"type"`
	Title     string          `gorm:"not null" json:"title"`
	Message   string          `gorm:"not null" json:"message"`
	Data      json.RawMessage `gorm:"type:jsonb" json:"data,omitempty"` // opaque payload, e.g. {"url": "/forum/42"}
	Read      bool            `gorm:"default:false;not null" json:"read"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`

	// Associations
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
}

// BeforeCreate hook to set UUID before creating a Notification
func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return
}

func (Notification) TableName() string {
	return "notifications"
}

// ValidNotificationType reports whether t belongs to the closed type set.
func ValidNotificationType(t string) bool {
	switch t {
	case NotificationLike, NotificationComment, NotificationFollow,
		NotificationEvent, NotificationRanking, NotificationMention, NotificationSystem:
		return true
	}
	return false
}
