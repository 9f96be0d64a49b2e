package repository

import (
	"context"
	"errors"
	"fmt"

	"esporthub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type ForumReplyRepository interface {
	// Create inserts the reply and maintains the parent post's reply_count,
	// last_reply_at and last_reply_author_id in the same transaction.
	Create(ctx context.Context, reply *models.ForumReply) error
	GetByID(ctx context.Context, id int64) (*models.ForumReply, error)
	ListByPost(ctx context.Context, postID int64, page, pageSize int) ([]models.ForumReply, int64, error)
	// Delete removes the reply, decrements the parent's reply_count and
	// recomputes last_reply_* from the surviving replies, transactionally.
	Delete(ctx context.Context, id int64) error
	CountByPost(ctx context.Context, postID int64) (int64, error)
}

type forumReplyRepository struct {
	db *gorm.DB
}

func NewForumReplyRepository(db *gorm.DB) ForumReplyRepository {
	return &forumReplyRepository{db: db}
}

func (r *forumReplyRepository) Create(ctx context.Context, reply *models.ForumReply) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return fmt.Errorf("create reply: %w", err)
		}
		// single-statement increment, no read-modify-write window
		result := tx.Model(&models.ForumPost{}).
			Where("id = ?", reply.PostID).
			Updates(map[string]interface{}{
				"reply_count":          gorm.Expr("reply_count + 1"),
				"last_reply_at":        reply.CreatedAt,
				"last_reply_author_id": reply.AuthorID,
			})
		if result.Error != nil {
			return fmt.Errorf("update post counters: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *forumReplyRepository) GetByID(ctx context.Context, id int64) (*models.ForumReply, error) {
	var reply models.ForumReply
	if err := r.db.WithContext(ctx).Preload("Author").First(&reply, id).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

func (r *forumReplyRepository) ListByPost(ctx context.Context, postID int64, page, pageSize int) ([]models.ForumReply, int64, error) {
	var replies []models.ForumReply
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.ForumReply{}).Where("post_id = ?", postID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Preload("Author").
		Order("created_at ASC").
		Limit(pageSize).
		Offset(offset).
		Find(&replies).Error
	if err != nil {
		return nil, 0, err
	}

	return replies, total, nil
}

func (r *forumReplyRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reply models.ForumReply
		if err := tx.First(&reply, id).Error; err != nil {
			return err
		}

		if err := tx.Where("reply_id = ?", id).Delete(&models.ReplyLike{}).Error; err != nil {
			return fmt.Errorf("delete reply likes: %w", err)
		}
		if err := tx.Delete(&models.ForumReply{}, id).Error; err != nil {
			return fmt.Errorf("delete reply: %w", err)
		}

		// recompute last_reply_* from the surviving replies; NULL when none remain
		var last models.ForumReply
		err := tx.Where("post_id = ?", reply.PostID).Order("created_at DESC").First(&last).Error
		updates := map[string]interface{}{
			"reply_count": gorm.Expr("GREATEST(reply_count - 1, 0)"),
		}
		switch {
		case err == nil:
			updates["last_reply_at"] = last.CreatedAt
			updates["last_reply_author_id"] = last.AuthorID
		case errors.Is(err, gorm.ErrRecordNotFound):
			updates["last_reply_at"] = nil
			updates["last_reply_author_id"] = nil
		default:
			return fmt.Errorf("recompute last reply: %w", err)
		}

		if err := tx.Model(&models.ForumPost{}).
			Where("id = ?", reply.PostID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("update post counters: %w", err)
		}
		return nil
	})
}

func (r *forumReplyRepository) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ForumReply{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
