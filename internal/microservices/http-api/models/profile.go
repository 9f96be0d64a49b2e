package models

import "time"

// Profile holds the public-facing side of an account. A profile may be
// synthesized on first write for identities that never completed onboarding,
// with a username derived from the email local part.
type Profile struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null;size:50"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	PostCount int       `json:"post_count" gorm:"default:0;not null"` // lifetime forum post counter
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
}

func (Profile) TableName() string {
	return "profiles"
}
