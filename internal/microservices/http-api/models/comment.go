package models

import "time"

// Content types a comment thread can attach to. Closed set: anything else
// is rejected at the service boundary.
const (
	ContentTypeArticle   = "article"
	ContentTypeEvent     = "event"
	ContentTypeInterview = "interview"
	ContentTypeProduct   = "product"
)

// Comment is a generic threaded comment attached to any content entity via
// the (content_type, content_id) pair. Nesting is unbounded in storage;
// display depth is bounded during tree assembly.
type Comment struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ContentType string    `json:"content_type" gorm:"not null;size:20;index:idx_comments_content,priority:1"`
	ContentID   int64     `json:"content_id" gorm:"not null;index:idx_comments_content,priority:2"`
	AuthorID    string    `json:"author_id" gorm:"type:uuid;not null;index"`
	ParentID    *int64    `json:"parent_id,omitempty" gorm:"index"`
	Content     string    `json:"content" gorm:"not null;type:text"`
	LikesCount  int       `json:"likes_count" gorm:"default:0;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	Author *Profile `json:"author,omitempty" gorm:"foreignKey:AuthorID;references:UserID"`
}

func (Comment) TableName() string {
	return "content_comments"
}

// ValidContentType reports whether t belongs to the closed content-type set.
func ValidContentType(t string) bool {
	switch t {
	case ContentTypeArticle, ContentTypeEvent, ContentTypeInterview, ContentTypeProduct:
		return true
	}
	return false
}
