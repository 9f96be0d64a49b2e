package dto

import (
	"time"

	"esporthub/internal/microservices/http-api/models"
)

// CreateCommentDTO for creating a threaded comment on any content entity
type CreateCommentDTO struct {
	ContentType string `json:"content_type" binding:"required"`
	ContentID   int64  `json:"content_id" binding:"required"`
	ParentID    *int64 `json:"parent_id,omitempty"`
	Content     string `json:"content" binding:"required,min=1,max=2000"`
}

// CommentNode is a comment with its resolved children. Depth in the tree is
// bounded by the configured maximum; storage nesting is unbounded.
type CommentNode struct {
	ID             int64          `json:"id"`
	AuthorID       string         `json:"author_id"`
	AuthorUsername string         `json:"author_username,omitempty"`
	ParentID       *int64         `json:"parent_id,omitempty"`
	Content        string         `json:"content"`
	LikesCount     int            `json:"likes_count"`
	CreatedAt      time.Time      `json:"created_at"`
	Replies        []*CommentNode `json:"replies"`
}

// FromModelToCommentNode converts a Comment model to a leaf CommentNode
func FromModelToCommentNode(comment *models.Comment) *CommentNode {
	node := &CommentNode{
		ID:         comment.ID,
		AuthorID:   comment.AuthorID,
		ParentID:   comment.ParentID,
		Content:    comment.Content,
		LikesCount: comment.LikesCount,
		CreatedAt:  comment.CreatedAt,
		Replies:    []*CommentNode{},
	}
	if comment.Author != nil {
		node.AuthorUsername = comment.Author.Username
	}
	return node
}

// CommentTreeResponse for returning the reconstructed comment tree
type CommentTreeResponse struct {
	ContentType string         `json:"content_type"`
	ContentID   int64          `json:"content_id"`
	Total       int            `json:"total"`
	Comments    []*CommentNode `json:"comments"`
}
