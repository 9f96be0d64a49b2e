package repository

import (
	"fmt"

	"esporthub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(commentID int64) (*models.Comment, error)
	// ListByContent returns the full flat comment list for a content pair,
	// oldest first; the tree is reconstructed in memory by the service.
	ListByContent(contentType string, contentID int64) ([]models.Comment, error)
	Delete(commentID int64, userID string) error
	DeleteAsAdmin(commentID int64) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create a new comment
func (r *commentRepository) Create(comment *models.Comment) error {
	if err := r.db.Create(comment).Error; err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// GetByID retrieves a comment by its ID
func (r *commentRepository) GetByID(commentID int64) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Where("id = ?", commentID).
		Preload("Author").
		First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByContent(contentType string, contentID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Where("content_type = ? AND content_id = ?", contentType, contentID).
		Preload("Author").
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Delete removes a comment only if the user owns it. Zero rows affected
// surfaces as gorm.ErrRecordNotFound; the service decides whether that
// means missing or not owned.
func (r *commentRepository) Delete(commentID int64, userID string) error {
	result := r.db.Where("id = ? AND author_id = ?", commentID, userID).Delete(&models.Comment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAsAdmin removes any comment regardless of ownership
func (r *commentRepository) DeleteAsAdmin(commentID int64) error {
	result := r.db.Delete(&models.Comment{}, commentID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
