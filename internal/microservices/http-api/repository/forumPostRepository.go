package repository

import (
	"context"
	"fmt"
	"strings"

	"esporthub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// Sort orders supported by the post listing.
const (
	SortRecent   = "recent"
	SortReplies  = "replies"
	SortViews    = "views"
	SortLikes    = "likes"
	SortActivity = "activity"
)

// ListPostParams carries the listing filters. Zero values mean "no filter".
type ListPostParams struct {
	CategoryID int64
	Search     string
	Sort       string
	Page       int
	PageSize   int
}

type ForumPostRepository interface {
	Create(ctx context.Context, post *models.ForumPost) error
	GetByID(ctx context.Context, id int64) (*models.ForumPost, error)
	GetByIDJoined(ctx context.Context, id int64) (*models.ForumPost, error)
	List(ctx context.Context, params ListPostParams) ([]models.ForumPost, int64, error)
	Delete(ctx context.Context, id int64) error
	IncrementViews(ctx context.Context, id int64) error
	SetPinned(ctx context.Context, id int64, pinned bool) error
	SetLocked(ctx context.Context, id int64, locked bool) error
}

type forumPostRepository struct {
	db *gorm.DB
}

func NewForumPostRepository(db *gorm.DB) ForumPostRepository {
	return &forumPostRepository{db: db}
}

func (r *forumPostRepository) Create(ctx context.Context, post *models.ForumPost) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("create forum post: %w", err)
	}
	// GORM populates post.ID and post.CreatedAt
	return nil
}

func (r *forumPostRepository) GetByID(ctx context.Context, id int64) (*models.ForumPost, error) {
	var p models.ForumPost
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByIDJoined fetches the post together with its author profile and category.
func (r *forumPostRepository) GetByIDJoined(ctx context.Context, id int64) (*models.ForumPost, error) {
	var p models.ForumPost
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// List applies category filter, case-insensitive substring search over
// title and content, the requested sort order and offset pagination.
// Pinned posts always sort first.
func (r *forumPostRepository) List(ctx context.Context, params ListPostParams) ([]models.ForumPost, int64, error) {
	var posts []models.ForumPost
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ForumPost{})

	if params.CategoryID > 0 {
		query = query.Where("category_id = ?", params.CategoryID)
	}

	if search := strings.TrimSpace(params.Search); search != "" {
		p := "%" + search + "%"
		query = query.Where("title ILIKE ? OR content ILIKE ?", p, p)
	}

	// Count total records before pagination
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	switch params.Sort {
	case SortReplies:
		order = "reply_count DESC"
	case SortViews:
		order = "views DESC"
	case SortLikes:
		order = "like_count DESC"
	case SortActivity:
		order = "COALESCE(last_reply_at, created_at) DESC"
	case SortRecent, "":
		// default
	}

	offset := (params.Page - 1) * params.PageSize
	err := query.
		Preload("Author").
		Preload("Category").
		Order("is_pinned DESC").
		Order(order).
		Limit(params.PageSize).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

// Delete removes the post and cascades its replies and likes in one
// transaction. The FK constraints cascade as well; the explicit deletes keep
// the behavior identical on stores without enforced constraints.
func (r *forumPostRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.ForumReply{}).Error; err != nil {
			return fmt.Errorf("delete post replies: %w", err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return fmt.Errorf("delete post likes: %w", err)
		}
		result := tx.Delete(&models.ForumPost{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete forum post: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// IncrementViews bumps the monotonic view counter with a single UPDATE.
func (r *forumPostRepository) IncrementViews(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&models.ForumPost{}).
		Where("id = ?", id).
		Update("views", gorm.Expr("views + 1")).Error
}

func (r *forumPostRepository) SetPinned(ctx context.Context, id int64, pinned bool) error {
	return r.setFlag(ctx, id, "is_pinned", pinned)
}

func (r *forumPostRepository) SetLocked(ctx context.Context, id int64, locked bool) error {
	return r.setFlag(ctx, id, "is_locked", locked)
}

func (r *forumPostRepository) setFlag(ctx context.Context, id int64, column string, value bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.ForumPost{}).
		Where("id = ?", id).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
