package models

import "time"

type ForumReply struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PostID    int64     `json:"post_id" gorm:"not null;index"`
	AuthorID  string    `json:"author_id" gorm:"type:uuid;not null;index"`
	Content   string    `json:"content" gorm:"not null;type:text"`
	LikeCount int       `json:"like_count" gorm:"default:0;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Associations
	Author *Profile `json:"author,omitempty" gorm:"foreignKey:AuthorID;references:UserID"`
}

func (ForumReply) TableName() string {
	return "forum_replies"
}
