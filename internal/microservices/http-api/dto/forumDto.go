package dto

import (
	"time"

	"esporthub/internal/microservices/http-api/models"
)

// CreatePostDTO for creating a forum post. Length floors mirror the product
// rules: short titles and one-liner bodies are rejected before any store call.
type CreatePostDTO struct {
	Title      string   `json:"title" binding:"required"`
	Content    string   `json:"content" binding:"required"`
	CategoryID int64    `json:"category_id"`
	Tags       []string `json:"tags,omitempty"`
}

// CreateReplyDTO for replying to a forum post
type CreateReplyDTO struct {
	Content string `json:"content" binding:"required,min=1,max=10000"`
}

// PostResponse for returning a forum post with joined author and category
type PostResponse struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Content           string     `json:"content"`
	AuthorID          string     `json:"author_id"`
	AuthorUsername    string     `json:"author_username,omitempty"`
	CategoryID        int64      `json:"category_id"`
	CategoryName      string     `json:"category_name,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
	Views             int        `json:"views"`
	LikeCount         int        `json:"like_count"`
	ReplyCount        int        `json:"reply_count"`
	IsPinned          bool       `json:"is_pinned"`
	IsLocked          bool       `json:"is_locked"`
	CreatedAt         time.Time  `json:"created_at"`
	LastReplyAt       *time.Time `json:"last_reply_at,omitempty"`
	LastReplyAuthorID *string    `json:"last_reply_author_id,omitempty"`
}

// FromModelToPostResponse converts a ForumPost model to PostResponse DTO.
// Author and Category preloads are optional: when the joined re-fetch after
// creation fails, the un-joined row is still returned.
func FromModelToPostResponse(post *models.ForumPost) *PostResponse {
	resp := &PostResponse{
		ID:                post.ID,
		Title:             post.Title,
		Content:           post.Content,
		AuthorID:          post.AuthorID,
		CategoryID:        post.CategoryID,
		Tags:              post.Tags,
		Views:             post.Views,
		LikeCount:         post.LikeCount,
		ReplyCount:        post.ReplyCount,
		IsPinned:          post.IsPinned,
		IsLocked:          post.IsLocked,
		CreatedAt:         post.CreatedAt,
		LastReplyAt:       post.LastReplyAt,
		LastReplyAuthorID: post.LastReplyAuthorID,
	}
	if post.Author != nil {
		resp.AuthorUsername = post.Author.Username
	}
	if post.Category != nil {
		resp.CategoryName = post.Category.Name
	}
	return resp
}

// PaginatedPostResponse for returning paginated forum posts
type PaginatedPostResponse struct {
	Data []PostResponse `json:"data"`
	Pagination
}

// NewPaginatedPostResponse creates a paginated post response
func NewPaginatedPostResponse(data []PostResponse, total, page, pageSize int) *PaginatedPostResponse {
	return &PaginatedPostResponse{
		Data:       data,
		Pagination: NewPagination(total, page, pageSize),
	}
}

// ReplyResponse for returning a forum reply
type ReplyResponse struct {
	ID             int64     `json:"id"`
	PostID         int64     `json:"post_id"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username,omitempty"`
	Content        string    `json:"content"`
	LikeCount      int       `json:"like_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// FromModelToReplyResponse converts a ForumReply model to ReplyResponse DTO
func FromModelToReplyResponse(reply *models.ForumReply) *ReplyResponse {
	resp := &ReplyResponse{
		ID:        reply.ID,
		PostID:    reply.PostID,
		AuthorID:  reply.AuthorID,
		Content:   reply.Content,
		LikeCount: reply.LikeCount,
		CreatedAt: reply.CreatedAt,
	}
	if reply.Author != nil {
		resp.AuthorUsername = reply.Author.Username
	}
	return resp
}

// PaginatedReplyResponse for returning paginated replies
type PaginatedReplyResponse struct {
	Data []ReplyResponse `json:"data"`
	Pagination
}

// NewPaginatedReplyResponse creates a paginated reply response
func NewPaginatedReplyResponse(data []ReplyResponse, total, page, pageSize int) *PaginatedReplyResponse {
	return &PaginatedReplyResponse{
		Data:       data,
		Pagination: NewPagination(total, page, pageSize),
	}
}

// LikeResponse reports the state after a like toggle
type LikeResponse struct {
	Liked bool `json:"liked"`
}
