package repository

import (
	"context"
	"errors"
	"fmt"

	"esporthub/internal/microservices/http-api/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// LikeRepository toggles like relations. Every toggle runs the relation
// write and the denormalized counter adjustment in one transaction, with the
// counter changed by a single-statement increment/decrement so concurrent
// likers cannot lose updates. A unique index on the (target, user) pair is
// the arbiter under races: a duplicate insert surfaces as a Postgres
// unique-violation and is treated as already-liked.
type LikeRepository interface {
	TogglePostLike(ctx context.Context, postID int64, userID string) (liked bool, err error)
	ToggleReplyLike(ctx context.Context, replyID int64, userID string) (liked bool, err error)
	ToggleCommentLike(ctx context.Context, commentID int64, userID string) (liked bool, err error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// pgUniqueViolation is the Postgres error code for unique constraint violations.
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (r *likeRepository) TogglePostLike(ctx context.Context, postID int64, userID string) (bool, error) {
	return r.toggle(ctx,
		&models.PostLike{PostID: postID, UserID: userID},
		&models.PostLike{},
		"post_id = ? AND user_id = ?", postID, userID,
		&models.ForumPost{}, "like_count", postID,
	)
}

func (r *likeRepository) ToggleReplyLike(ctx context.Context, replyID int64, userID string) (bool, error) {
	return r.toggle(ctx,
		&models.ReplyLike{ReplyID: replyID, UserID: userID},
		&models.ReplyLike{},
		"reply_id = ? AND user_id = ?", replyID, userID,
		&models.ForumReply{}, "like_count", replyID,
	)
}

func (r *likeRepository) ToggleCommentLike(ctx context.Context, commentID int64, userID string) (bool, error) {
	return r.toggle(ctx,
		&models.CommentLike{CommentID: commentID, UserID: userID},
		&models.CommentLike{},
		"comment_id = ? AND user_id = ?", commentID, userID,
		&models.Comment{}, "likes_count", commentID,
	)
}

func (r *likeRepository) toggle(
	ctx context.Context,
	newLike interface{},
	likeModel interface{},
	pairQuery string, targetID int64, userID string,
	counterModel interface{}, counterColumn string, counterID int64,
) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where(pairQuery, targetID, userID).Delete(likeModel)
		if result.Error != nil {
			return fmt.Errorf("delete like: %w", result.Error)
		}

		if result.RowsAffected > 0 {
			// relation existed: this toggle is an unlike
			liked = false
			return tx.Model(counterModel).
				Where("id = ?", counterID).
				Update(counterColumn, gorm.Expr(fmt.Sprintf("GREATEST(%s - 1, 0)", counterColumn))).Error
		}

		if err := tx.Create(newLike).Error; err != nil {
			if isUniqueViolation(err) {
				// concurrent toggle won the insert; leave the counter alone
				liked = true
				return nil
			}
			return fmt.Errorf("create like: %w", err)
		}
		liked = true
		return tx.Model(counterModel).
			Where("id = ?", counterID).
			Update(counterColumn, gorm.Expr(fmt.Sprintf("%s + 1", counterColumn))).Error
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}
