package models

import "time"

// Activity is the generic activity record appended alongside user actions
// (forum post created, reply posted, ...). It feeds the profile activity feed.
type Activity struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;index"`
	Action    string    `json:"action" gorm:"not null;size:50"` // e.g. "forum_post_created"
	RefType   string    `json:"ref_type" gorm:"not null;size:20"`
	RefID     int64     `json:"ref_id" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Activity) TableName() string {
	return "activities"
}
