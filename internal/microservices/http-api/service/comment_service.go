package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"esporthub/internal/microservices/http-api/dto"
	"esporthub/internal/microservices/http-api/models"
	"esporthub/internal/microservices/http-api/repository"
	"esporthub/internal/shared"

	"gorm.io/gorm"
)

var (
	ErrInvalidContentType = errors.New("invalid content type")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrParentMismatch     = errors.New("parent comment belongs to different content")
)

type CommentService interface {
	CreateComment(ctx context.Context, claims *shared.AuthClaims, req dto.CreateCommentDTO) (*dto.CommentNode, error)
	GetCommentTree(ctx context.Context, contentType string, contentID int64) (*dto.CommentTreeResponse, error)
	DeleteComment(ctx context.Context, commentID int64, claims *shared.AuthClaims) error
	ToggleCommentLike(ctx context.Context, commentID int64, claims *shared.AuthClaims) (bool, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
	likeRepo    repository.LikeRepository
	notifier    Notifier
	maxDepth    int
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	profileRepo repository.ProfileRepository,
	userRepo repository.UserRepository,
	likeRepo repository.LikeRepository,
	notifier Notifier,
	maxDepth int,
) CommentService {
	if maxDepth < 1 {
		maxDepth = 1
	}
	return &commentService{
		commentRepo: commentRepo,
		profileRepo: profileRepo,
		userRepo:    userRepo,
		likeRepo:    likeRepo,
		notifier:    notifier,
		maxDepth:    maxDepth,
	}
}

// CreateComment validates the content type, checks that the declared parent
// belongs to the same (content_type, content_id) pair, then inserts the row.
// A reply to someone else's comment notifies its author.
func (s *commentService) CreateComment(ctx context.Context, claims *shared.AuthClaims, req dto.CreateCommentDTO) (*dto.CommentNode, error) {
	if !models.ValidContentType(req.ContentType) {
		return nil, ErrInvalidContentType
	}

	var parent *models.Comment
	if req.ParentID != nil {
		var err error
		parent, err = s.commentRepo.GetByID(*req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCommentNotFound
			}
			return nil, err
		}
		if parent.ContentType != req.ContentType || parent.ContentID != req.ContentID {
			return nil, ErrParentMismatch
		}
	}

	if _, err := ensureProfile(ctx, s.profileRepo, s.userRepo, claims.UserID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		AuthorID:    claims.UserID,
		ParentID:    req.ParentID,
		Content:     req.Content,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	if parent != nil && parent.AuthorID != claims.UserID {
		s.notifier.Dispatch(&models.Notification{
			UserID:  parent.AuthorID,
			Type:    models.NotificationComment,
			Title:   "Nouvelle réponse",
			Message: fmt.Sprintf("%s a répondu à votre commentaire", claims.Username),
			Data:    deepLink(fmt.Sprintf("/%s/%d#comment-%d", comment.ContentType, comment.ContentID, comment.ID)),
		})
	}

	loaded, err := s.commentRepo.GetByID(comment.ID)
	if err != nil {
		return dto.FromModelToCommentNode(comment), nil
	}
	return dto.FromModelToCommentNode(loaded), nil
}

// GetCommentTree loads the flat comment list for the content pair and
// reconstructs the thread hierarchy in memory.
func (s *commentService) GetCommentTree(ctx context.Context, contentType string, contentID int64) (*dto.CommentTreeResponse, error) {
	if !models.ValidContentType(contentType) {
		return nil, ErrInvalidContentType
	}

	comments, err := s.commentRepo.ListByContent(contentType, contentID)
	if err != nil {
		return nil, err
	}

	return &dto.CommentTreeResponse{
		ContentType: contentType,
		ContentID:   contentID,
		Total:       len(comments),
		Comments:    BuildCommentTree(comments, s.maxDepth),
	}, nil
}

// BuildCommentTree reconstructs the thread hierarchy from a flat,
// chronologically ordered comment list in a single pass over an id-keyed
// map. Comments whose parent is missing from the set are promoted to the
// root level. Storage nesting is unbounded, display nesting is not: a
// comment whose parent already sits at maxDepth is flattened into a
// sibling of its parent instead of starting a deeper level.
func BuildCommentTree(comments []models.Comment, maxDepth int) []*dto.CommentNode {
	nodes := make(map[int64]*dto.CommentNode, len(comments))
	depths := make(map[int64]int, len(comments))
	// holders maps a comment id to the node whose Replies list contains it;
	// nil for root-level comments
	holders := make(map[int64]*dto.CommentNode, len(comments))
	roots := make([]*dto.CommentNode, 0)

	for i := range comments {
		nodes[comments[i].ID] = dto.FromModelToCommentNode(&comments[i])
	}

	for i := range comments {
		c := &comments[i]
		node := nodes[c.ID]

		if c.ParentID == nil {
			roots = append(roots, node)
			depths[c.ID] = 1
			continue
		}

		parent, ok := nodes[*c.ParentID]
		parentDepth := depths[*c.ParentID]
		// a zero depth means the parent appears after the child, which the
		// chronological ordering rules out; treat it as missing
		if !ok || parentDepth == 0 {
			slog.Warn("orphan comment promoted to root",
				"comment_id", c.ID, "parent_id", *c.ParentID)
			roots = append(roots, node)
			depths[c.ID] = 1
			continue
		}

		if parentDepth >= maxDepth {
			// flatten: attach beside the parent, under the parent's holder
			holder := holders[*c.ParentID]
			if holder == nil {
				roots = append(roots, node)
			} else {
				holder.Replies = append(holder.Replies, node)
			}
			depths[c.ID] = parentDepth
			holders[c.ID] = holder
			continue
		}

		parent.Replies = append(parent.Replies, node)
		depths[c.ID] = parentDepth + 1
		holders[c.ID] = parent
	}

	return roots
}

// DeleteComment removes a comment. Administrators bypass the ownership
// scope; everyone else can only delete their own. A missing row and a row
// owned by someone else map to distinct errors.
func (s *commentService) DeleteComment(ctx context.Context, commentID int64, claims *shared.AuthClaims) error {
	if claims.Role == "admin" {
		if err := s.commentRepo.DeleteAsAdmin(commentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommentNotFound
			}
			return err
		}
		return nil
	}

	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	if comment.AuthorID != claims.UserID {
		return ErrNotOwner
	}
	if err := s.commentRepo.Delete(commentID, claims.UserID); err != nil {
		// the row vanished between the ownership check and the delete
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	return nil
}

func (s *commentService) ToggleCommentLike(ctx context.Context, commentID int64, claims *shared.AuthClaims) (bool, error) {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrCommentNotFound
		}
		return false, err
	}

	liked, err := s.likeRepo.ToggleCommentLike(ctx, commentID, claims.UserID)
	if err != nil {
		return false, err
	}

	if liked && comment.AuthorID != claims.UserID {
		s.notifier.Dispatch(&models.Notification{
			UserID:  comment.AuthorID,
			Type:    models.NotificationLike,
			Title:   "Nouveau j'aime",
			Message: fmt.Sprintf("%s a aimé votre commentaire", claims.Username),
			Data:    deepLink(fmt.Sprintf("/%s/%d#comment-%d", comment.ContentType, comment.ContentID, comment.ID)),
		})
	}

	return liked, nil
}
