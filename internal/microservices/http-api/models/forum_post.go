package models

import "time"

type ForumPost struct {
	ID                int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title             string     `json:"title" gorm:"not null;size:200"`
	Content           string     `json:"content" gorm:"not null;type:text"`
	AuthorID          string     `json:"author_id" gorm:"type:uuid;not null;index"`
	CategoryID        int64      `json:"category_id" gorm:"not null;index"`
	Tags              []string   `json:"tags" gorm:"serializer:json;type:jsonb"`
	Views             int        `json:"views" gorm:"default:0;not null"`
	LikeCount         int        `json:"like_count" gorm:"default:0;not null"`
	ReplyCount        int        `json:"reply_count" gorm:"default:0;not null"` // must equal the count of live replies
	IsPinned          bool       `json:"is_pinned" gorm:"default:false;not null"`
	IsLocked          bool       `json:"is_locked" gorm:"default:false;not null"` // closes the post to new replies
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	LastReplyAt       *time.Time `json:"last_reply_at,omitempty"`
	LastReplyAuthorID *string    `json:"last_reply_author_id,omitempty" gorm:"type:uuid"`

	// Associations
	Author   *Profile  `json:"author,omitempty" gorm:"foreignKey:AuthorID;references:UserID"`
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Replies  []ForumReply `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE;"`
}

func (ForumPost) TableName() string {
	return "forum_posts"
}
