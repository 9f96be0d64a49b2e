package models

import "time"

// Like relations are (user, target) pairs guarded by unique indexes; the
// denormalized counters on the target rows are adjusted in the same
// transaction as the relation write.

type PostLike struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PostID    int64     `json:"post_id" gorm:"not null;uniqueIndex:idx_post_likes_pair,priority:1"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_post_likes_pair,priority:2"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Post ForumPost `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE;"`
}

func (PostLike) TableName() string {
	return "forum_post_likes"
}

type ReplyLike struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ReplyID   int64     `json:"reply_id" gorm:"not null;uniqueIndex:idx_reply_likes_pair,priority:1"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_reply_likes_pair,priority:2"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Reply ForumReply `json:"-" gorm:"foreignKey:ReplyID;constraint:OnDelete:CASCADE;"`
}

func (ReplyLike) TableName() string {
	return "forum_reply_likes"
}

type CommentLike struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	CommentID int64     `json:"comment_id" gorm:"not null;uniqueIndex:idx_comment_likes_pair,priority:1"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_comment_likes_pair,priority:2"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Comment Comment `json:"-" gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE;"`
}

func (CommentLike) TableName() string {
	return "content_comment_likes"
}
