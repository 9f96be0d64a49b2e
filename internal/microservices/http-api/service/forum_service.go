package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"esporthub/internal/microservices/http-api/dto"
	"esporthub/internal/microservices/http-api/models"
	"esporthub/internal/microservices/http-api/repository"
	"esporthub/internal/shared"

	"gorm.io/gorm"
)

const (
	minTitleLen   = 10
	minContentLen = 20

	defaultCategoryName = "Général"
	defaultCategorySlug = "general"
)

var (
	ErrTitleTooShort    = fmt.Errorf("title must be at least %d characters", minTitleLen)
	ErrContentTooShort  = fmt.Errorf("content must be at least %d characters", minContentLen)
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryRequired = errors.New("category is required")
	ErrPostNotFound     = errors.New("post not found")
	ErrReplyNotFound    = errors.New("reply not found")
	ErrPostLocked       = errors.New("post is locked")
	ErrNotOwner         = errors.New("you don't have permission to perform this action")
)

// Notifier enqueues a notification for asynchronous delivery.
// Satisfied by notify.Dispatcher.
type Notifier interface {
	Dispatch(n *models.Notification)
}

type ForumService interface {
	CreatePost(ctx context.Context, claims *shared.AuthClaims, req dto.CreatePostDTO) (*dto.PostResponse, error)
	GetPost(ctx context.Context, id int64) (*dto.PostResponse, error)
	ListPosts(ctx context.Context, params repository.ListPostParams) (*dto.PaginatedPostResponse, error)
	DeletePost(ctx context.Context, id int64, claims *shared.AuthClaims) error
	SetPostPinned(ctx context.Context, id int64, pinned bool) error
	SetPostLocked(ctx context.Context, id int64, locked bool) error
	TogglePostLike(ctx context.Context, postID int64, claims *shared.AuthClaims) (bool, error)

	CreateReply(ctx context.Context, postID int64, claims *shared.AuthClaims, content string) (*dto.ReplyResponse, error)
	ListReplies(ctx context.Context, postID int64, page, pageSize int) (*dto.PaginatedReplyResponse, error)
	DeleteReply(ctx context.Context, replyID int64, claims *shared.AuthClaims) error
	ToggleReplyLike(ctx context.Context, replyID int64, claims *shared.AuthClaims) (bool, error)

	GetCategories(ctx context.Context) ([]models.Category, error)
}

type forumService struct {
	postRepo     repository.ForumPostRepository
	replyRepo    repository.ForumReplyRepository
	categoryRepo repository.CategoryRepository
	profileRepo  repository.ProfileRepository
	likeRepo     repository.LikeRepository
	activityRepo repository.ActivityRepository
	userRepo     repository.UserRepository
	notifier     Notifier
}

func NewForumService(
	postRepo repository.ForumPostRepository,
	replyRepo repository.ForumReplyRepository,
	categoryRepo repository.CategoryRepository,
	profileRepo repository.ProfileRepository,
	likeRepo repository.LikeRepository,
	activityRepo repository.ActivityRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
) ForumService {
	return &forumService{
		postRepo:     postRepo,
		replyRepo:    replyRepo,
		categoryRepo: categoryRepo,
		profileRepo:  profileRepo,
		likeRepo:     likeRepo,
		activityRepo: activityRepo,
		userRepo:     userRepo,
		notifier:     notifier,
	}
}

// ValidatePostInput applies the creation floor rules: titles shorter than
// ten characters and bodies shorter than twenty are rejected before any
// store call. Lengths count characters, not bytes.
func ValidatePostInput(title, content string) error {
	if utf8.RuneCountInString(strings.TrimSpace(title)) < minTitleLen {
		return ErrTitleTooShort
	}
	if utf8.RuneCountInString(strings.TrimSpace(content)) < minContentLen {
		return ErrContentTooShort
	}
	return nil
}

// CreatePost validates, resolves the category (synthesizing "Général" when
// the system has none), ensures the author has a profile (synthesizing one
// with a username derived from the email local part when missing), inserts
// the post with zero counters, bumps the author's lifetime post counter,
// appends an activity record and returns the joined post. When the joined
// re-fetch fails the un-joined insert result is returned instead of an error.
func (s *forumService) CreatePost(ctx context.Context, claims *shared.AuthClaims, req dto.CreatePostDTO) (*dto.PostResponse, error) {
	if err := ValidatePostInput(req.Title, req.Content); err != nil {
		return nil, err
	}

	category, err := s.resolveCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	if _, err := s.ensureProfile(ctx, claims.UserID); err != nil {
		return nil, err
	}

	post := &models.ForumPost{
		Title:      strings.TrimSpace(req.Title),
		Content:    req.Content,
		AuthorID:   claims.UserID,
		CategoryID: category.ID,
		Tags:       req.Tags,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if err := s.profileRepo.IncrementPostCount(ctx, claims.UserID); err != nil {
		slog.Error("failed to increment post count", "user_id", claims.UserID, "error", err)
	}

	activity := &models.Activity{
		UserID:  claims.UserID,
		Action:  "forum_post_created",
		RefType: "forum_post",
		RefID:   post.ID,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		slog.Error("failed to append activity record", "user_id", claims.UserID, "error", err)
	}

	joined, err := s.postRepo.GetByIDJoined(ctx, post.ID)
	if err != nil {
		// fall back to the un-joined insert result rather than failing
		slog.Warn("joined re-fetch failed after post creation", "post_id", post.ID, "error", err)
		return dto.FromModelToPostResponse(post), nil
	}
	return dto.FromModelToPostResponse(joined), nil
}

// resolveCategory validates an explicit category id, or synthesizes the
// default category when none exists system-wide.
func (s *forumService) resolveCategory(ctx context.Context, id int64) (*models.Category, error) {
	if id > 0 {
		category, err := s.categoryRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		return category, nil
	}

	count, err := s.categoryRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrCategoryRequired
	}

	category := &models.Category{
		Name: defaultCategoryName,
		Slug: defaultCategorySlug,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	slog.Info("synthesized default forum category", "name", defaultCategoryName)
	return category, nil
}

func (s *forumService) ensureProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return ensureProfile(ctx, s.profileRepo, s.userRepo, userID)
}

// ensureProfile returns the user's profile, creating one with a username
// derived from the email local part when the identity has no profile row
// yet. Collisions get a numeric suffix.
func ensureProfile(ctx context.Context, profiles repository.ProfileRepository, users repository.UserRepository, userID string) (*models.Profile, error) {
	profile, err := profiles.GetByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user, err := users.FindByID(userID)
	if err != nil {
		return nil, err
	}

	username := deriveUsername(user.Email)
	for i := 1; ; i++ {
		exists, err := profiles.UsernameExists(ctx, username)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
		username = fmt.Sprintf("%s%d", deriveUsername(user.Email), i)
	}

	profile = &models.Profile{
		UserID:   userID,
		Username: username,
	}
	if err := profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	slog.Info("synthesized profile for identity", "user_id", userID, "username", username)
	return profile, nil
}

// deriveUsername takes the email local part, lowercased.
func deriveUsername(email string) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	return strings.ToLower(local)
}

// GetPost fetches the joined post and bumps its view counter.
func (s *forumService) GetPost(ctx context.Context, id int64) (*dto.PostResponse, error) {
	if err := s.postRepo.IncrementViews(ctx, id); err != nil {
		slog.Warn("failed to increment post views", "post_id", id, "error", err)
	}

	post, err := s.postRepo.GetByIDJoined(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return dto.FromModelToPostResponse(post), nil
}

func (s *forumService) ListPosts(ctx context.Context, params repository.ListPostParams) (*dto.PaginatedPostResponse, error) {
	posts, total, err := s.postRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		responses = append(responses, *dto.FromModelToPostResponse(&posts[i]))
	}

	return dto.NewPaginatedPostResponse(responses, int(total), params.Page, params.PageSize), nil
}

// DeletePost removes the post and cascades its replies. Owners delete their
// own posts; administrators may delete any.
func (s *forumService) DeletePost(ctx context.Context, id int64, claims *shared.AuthClaims) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if post.AuthorID != claims.UserID && claims.Role != "admin" {
		return ErrNotOwner
	}

	return s.postRepo.Delete(ctx, id)
}

func (s *forumService) SetPostPinned(ctx context.Context, id int64, pinned bool) error {
	if err := s.postRepo.SetPinned(ctx, id, pinned); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	return nil
}

func (s *forumService) SetPostLocked(ctx context.Context, id int64, locked bool) error {
	if err := s.postRepo.SetLocked(ctx, id, locked); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	return nil
}

// TogglePostLike flips the (post, user) like relation. A fresh like on
// someone else's post notifies the author; self-likes never notify.
func (s *forumService) TogglePostLike(ctx context.Context, postID int64, claims *shared.AuthClaims) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrPostNotFound
		}
		return false, err
	}

	liked, err := s.likeRepo.TogglePostLike(ctx, postID, claims.UserID)
	if err != nil {
		return false, err
	}

	if liked && post.AuthorID != claims.UserID {
		s.notifier.Dispatch(&models.Notification{
			UserID:  post.AuthorID,
			Type:    models.NotificationLike,
			Title:   "Nouveau j'aime",
			Message: fmt.Sprintf("%s a aimé votre sujet « %s »", claims.Username, post.Title),
			Data:    deepLink(fmt.Sprintf("/forum/%d", post.ID)),
		})
	}

	return liked, nil
}

// CreateReply appends a reply to an unlocked post. The reply insert and the
// parent counters share one transaction in the repository.
func (s *forumService) CreateReply(ctx context.Context, postID int64, claims *shared.AuthClaims, content string) (*dto.ReplyResponse, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.IsLocked {
		return nil, ErrPostLocked
	}

	if _, err := s.ensureProfile(ctx, claims.UserID); err != nil {
		return nil, err
	}

	reply := &models.ForumReply{
		PostID:   postID,
		AuthorID: claims.UserID,
		Content:  content,
	}
	if err := s.replyRepo.Create(ctx, reply); err != nil {
		return nil, err
	}

	activity := &models.Activity{
		UserID:  claims.UserID,
		Action:  "forum_reply_created",
		RefType: "forum_reply",
		RefID:   reply.ID,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		slog.Error("failed to append activity record", "user_id", claims.UserID, "error", err)
	}

	if post.AuthorID != claims.UserID {
		s.notifier.Dispatch(&models.Notification{
			UserID:  post.AuthorID,
			Type:    models.NotificationComment,
			Title:   "Nouvelle réponse",
			Message: fmt.Sprintf("%s a répondu à votre sujet « %s »", claims.Username, post.Title),
			Data:    deepLink(fmt.Sprintf("/forum/%d", post.ID)),
		})
	}

	// reload with author data
	loaded, err := s.replyRepo.GetByID(ctx, reply.ID)
	if err != nil {
		return dto.FromModelToReplyResponse(reply), nil
	}
	return dto.FromModelToReplyResponse(loaded), nil
}

func (s *forumService) ListReplies(ctx context.Context, postID int64, page, pageSize int) (*dto.PaginatedReplyResponse, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	replies, total, err := s.replyRepo.ListByPost(ctx, postID, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ReplyResponse, 0, len(replies))
	for i := range replies {
		responses = append(responses, *dto.FromModelToReplyResponse(&replies[i]))
	}

	return dto.NewPaginatedReplyResponse(responses, int(total), page, pageSize), nil
}

func (s *forumService) DeleteReply(ctx context.Context, replyID int64, claims *shared.AuthClaims) error {
	reply, err := s.replyRepo.GetByID(ctx, replyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReplyNotFound
		}
		return err
	}

	if reply.AuthorID != claims.UserID && claims.Role != "admin" {
		return ErrNotOwner
	}

	return s.replyRepo.Delete(ctx, replyID)
}

func (s *forumService) ToggleReplyLike(ctx context.Context, replyID int64, claims *shared.AuthClaims) (bool, error) {
	reply, err := s.replyRepo.GetByID(ctx, replyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrReplyNotFound
		}
		return false, err
	}

	liked, err := s.likeRepo.ToggleReplyLike(ctx, replyID, claims.UserID)
	if err != nil {
		return false, err
	}

	if liked && reply.AuthorID != claims.UserID {
		s.notifier.Dispatch(&models.Notification{
			UserID:  reply.AuthorID,
			Type:    models.NotificationLike,
			Title:   "Nouveau j'aime",
			Message: fmt.Sprintf("%s a aimé votre réponse", claims.Username),
			Data:    deepLink(fmt.Sprintf("/forum/%d", reply.PostID)),
		})
	}

	return liked, nil
}

func (s *forumService) GetCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.GetAll(ctx)
}

// deepLink wraps a navigation target into the opaque notification payload.
func deepLink(url string) json.RawMessage {
	raw, _ := json.Marshal(map[string]string{"url": url})
	return raw
}
