package service

import (
	"context"
	"testing"

	"esporthub/internal/microservices/http-api/dto"
	"esporthub/internal/microservices/http-api/models"
	"esporthub/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func newForumFixture() (*MockForumPostRepository, *MockForumReplyRepository, *MockCategoryRepository, *MockProfileRepository, *MockLikeRepository, *MockActivityRepository, *MockUserRepository, *recordingNotifier, ForumService) {
	postRepo := new(MockForumPostRepository)
	replyRepo := new(MockForumReplyRepository)
	categoryRepo := new(MockCategoryRepository)
	profileRepo := new(MockProfileRepository)
	likeRepo := new(MockLikeRepository)
	activityRepo := new(MockActivityRepository)
	userRepo := new(MockUserRepository)
	notifier := &recordingNotifier{}

	svc := NewForumService(postRepo, replyRepo, categoryRepo, profileRepo, likeRepo, activityRepo, userRepo, notifier)
	return postRepo, replyRepo, categoryRepo, profileRepo, likeRepo, activityRepo, userRepo, notifier, svc
}

func userClaims(id string) *shared.AuthClaims {
	return &shared.AuthClaims{UserID: id, Username: "joueur", Role: "user"}
}

func TestValidatePostInput_Boundaries(t *testing.T) {
	longContent := "ce contenu dépasse largement vingt caractères"

	// 9 characters fails, 10 passes
	assert.ErrorIs(t, ValidatePostInput("123456789", longContent), ErrTitleTooShort)
	assert.NoError(t, ValidatePostInput("1234567890", longContent))

	// 19 characters fails, 20 passes
	assert.ErrorIs(t, ValidatePostInput("un titre suffisant", "1234567890123456789"), ErrContentTooShort)
	assert.NoError(t, ValidatePostInput("un titre suffisant", "12345678901234567890"))

	// multibyte characters count as one
	assert.NoError(t, ValidatePostInput("éèàçùâêîôû", longContent))

	// surrounding whitespace does not count toward the floor
	assert.ErrorIs(t, ValidatePostInput("   12345     ", longContent), ErrTitleTooShort)
}

func TestCreatePost_SynthesizesDefaultCategory(t *testing.T) {
	postRepo, _, categoryRepo, profileRepo, _, activityRepo, _, _, svc := newForumFixture()
	claims := userClaims("user-1")

	// no category given and none exist yet
	categoryRepo.On("Count", mock.Anything).Return(int64(0), nil)
	categoryRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Category) bool {
		return c.Name == "Général" && c.Slug == "general"
	})).Return(nil)

	profileRepo.On("GetByUserID", mock.Anything, "user-1").
		Return(&models.Profile{UserID: "user-1", Username: "joueur"}, nil)

	postRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	profileRepo.On("IncrementPostCount", mock.Anything, "user-1").Return(nil)
	activityRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	postRepo.On("GetByIDJoined", mock.Anything, mock.Anything).
		Return(&models.ForumPost{ID: 1, Title: "Mon premier sujet ici", AuthorID: "user-1"}, nil)

	resp, err := svc.CreatePost(context.Background(), claims, dto.CreatePostDTO{
		Title:   "Mon premier sujet ici",
		Content: "du contenu qui atteint le seuil de validation",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	categoryRepo.AssertExpectations(t)
}

func TestCreatePost_RequiresCategoryWhenSomeExist(t *testing.T) {
	_, _, categoryRepo, _, _, _, _, _, svc := newForumFixture()

	categoryRepo.On("Count", mock.Anything).Return(int64(3), nil)

	_, err := svc.CreatePost(context.Background(), userClaims("user-1"), dto.CreatePostDTO{
		Title:   "Mon premier sujet ici",
		Content: "du contenu qui atteint le seuil de validation",
	})

	assert.ErrorIs(t, err, ErrCategoryRequired)
	categoryRepo.AssertNotCalled(t, "Create")
}

func TestCreatePost_JoinedRefetchFallback(t *testing.T) {
	postRepo, _, categoryRepo, profileRepo, _, activityRepo, _, _, svc := newForumFixture()

	categoryRepo.On("GetByID", mock.Anything, int64(2)).
		Return(&models.Category{ID: 2, Name: "CS2"}, nil)
	profileRepo.On("GetByUserID", mock.Anything, "user-1").
		Return(&models.Profile{UserID: "user-1", Username: "joueur"}, nil)
	postRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.ForumPost).ID = 42
	}).Return(nil)
	profileRepo.On("IncrementPostCount", mock.Anything, "user-1").Return(nil)
	activityRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	// joined re-fetch fails; creation must still succeed with the raw row
	postRepo.On("GetByIDJoined", mock.Anything, int64(42)).
		Return(nil, gorm.ErrRecordNotFound)

	resp, err := svc.CreatePost(context.Background(), userClaims("user-1"), dto.CreatePostDTO{
		Title:      "Mon premier sujet ici",
		Content:    "du contenu qui atteint le seuil de validation",
		CategoryID: 2,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(42), resp.ID)
}

func TestCreatePost_SynthesizesProfileFromEmail(t *testing.T) {
	postRepo, _, categoryRepo, profileRepo, _, activityRepo, userRepo, _, svc := newForumFixture()

	categoryRepo.On("GetByID", mock.Anything, int64(1)).
		Return(&models.Category{ID: 1}, nil)

	profileRepo.On("GetByUserID", mock.Anything, "user-1").
		Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("FindByID", "user-1").
		Return(&models.User{ID: "user-1", Email: "Jean.Dupont@example.com"}, nil)
	// first candidate taken, second probe never happens
	profileRepo.On("UsernameExists", mock.Anything, "jean.dupont").Return(false, nil)
	profileRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Profile) bool {
		return p.Username == "jean.dupont" && p.UserID == "user-1"
	})).Return(nil)

	postRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	profileRepo.On("IncrementPostCount", mock.Anything, "user-1").Return(nil)
	activityRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	postRepo.On("GetByIDJoined", mock.Anything, mock.Anything).
		Return(&models.ForumPost{ID: 1}, nil)

	_, err := svc.CreatePost(context.Background(), userClaims("user-1"), dto.CreatePostDTO{
		Title:      "Mon premier sujet ici",
		Content:    "du contenu qui atteint le seuil de validation",
		CategoryID: 1,
	})

	assert.NoError(t, err)
	profileRepo.AssertExpectations(t)
}

func TestCreateReply_LockedPostRejected(t *testing.T) {
	postRepo, replyRepo, _, _, _, _, _, notifier, svc := newForumFixture()

	postRepo.On("GetByID", mock.Anything, int64(5)).
		Return(&models.ForumPost{ID: 5, AuthorID: "author-1", IsLocked: true}, nil)

	_, err := svc.CreateReply(context.Background(), 5, userClaims("user-2"), "ma réponse")

	assert.ErrorIs(t, err, ErrPostLocked)
	replyRepo.AssertNotCalled(t, "Create")
	assert.Empty(t, notifier.dispatched)
}

func TestCreateReply_NotifiesPostAuthor(t *testing.T) {
	postRepo, replyRepo, _, profileRepo, _, activityRepo, _, notifier, svc := newForumFixture()

	postRepo.On("GetByID", mock.Anything, int64(5)).
		Return(&models.ForumPost{ID: 5, Title: "Quel AWPer?", AuthorID: "author-1"}, nil)
	profileRepo.On("GetByUserID", mock.Anything, "user-2").
		Return(&models.Profile{UserID: "user-2", Username: "joueur"}, nil)
	replyRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.ForumReply).ID = 9
	}).Return(nil)
	activityRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	replyRepo.On("GetByID", mock.Anything, int64(9)).
		Return(&models.ForumReply{ID: 9, PostID: 5, AuthorID: "user-2", Content: "ma réponse"}, nil)

	resp, err := svc.CreateReply(context.Background(), 5, userClaims("user-2"), "ma réponse")

	assert.NoError(t, err)
	assert.Equal(t, int64(9), resp.ID)
	if assert.Len(t, notifier.dispatched, 1) {
		n := notifier.dispatched[0]
		assert.Equal(t, "author-1", n.UserID)
		assert.Equal(t, models.NotificationComment, n.Type)
	}
}

func TestCreateReply_SelfReplyDoesNotNotify(t *testing.T) {
	postRepo, replyRepo, _, profileRepo, _, activityRepo, _, notifier, svc := newForumFixture()

	postRepo.On("GetByID", mock.Anything, int64(5)).
		Return(&models.ForumPost{ID: 5, AuthorID: "user-2"}, nil)
	profileRepo.On("GetByUserID", mock.Anything, "user-2").
		Return(&models.Profile{UserID: "user-2"}, nil)
	replyRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	activityRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	replyRepo.On("GetByID", mock.Anything, mock.Anything).
		Return(&models.ForumReply{PostID: 5, AuthorID: "user-2"}, nil)

	_, err := svc.CreateReply(context.Background(), 5, userClaims("user-2"), "je me réponds")

	assert.NoError(t, err)
	assert.Empty(t, notifier.dispatched)
}

func TestTogglePostLike_NotifiesOnLikeOnly(t *testing.T) {
	postRepo, _, _, _, likeRepo, _, _, notifier, svc := newForumFixture()

	postRepo.On("GetByID", mock.Anything, int64(5)).
		Return(&models.ForumPost{ID: 5, Title: "Quel AWPer?", AuthorID: "author-1"}, nil)

	// first toggle: like
	likeRepo.On("TogglePostLike", mock.Anything, int64(5), "user-2").Return(true, nil).Once()
	liked, err := svc.TogglePostLike(context.Background(), 5, userClaims("user-2"))
	assert.NoError(t, err)
	assert.True(t, liked)
	assert.Len(t, notifier.dispatched, 1)

	// second toggle: unlike, no new notification
	likeRepo.On("TogglePostLike", mock.Anything, int64(5), "user-2").Return(false, nil).Once()
	liked, err = svc.TogglePostLike(context.Background(), 5, userClaims("user-2"))
	assert.NoError(t, err)
	assert.False(t, liked)
	assert.Len(t, notifier.dispatched, 1)
}

func TestDeletePost_OwnerAndAdminOnly(t *testing.T) {
	postRepo, _, _, _, _, _, _, _, svc := newForumFixture()

	postRepo.On("GetByID", mock.Anything, int64(5)).
		Return(&models.ForumPost{ID: 5, AuthorID: "author-1"}, nil)
	postRepo.On("Delete", mock.Anything, int64(5)).Return(nil)

	// stranger rejected
	err := svc.DeletePost(context.Background(), 5, userClaims("user-2"))
	assert.ErrorIs(t, err, ErrNotOwner)

	// owner allowed
	assert.NoError(t, svc.DeletePost(context.Background(), 5, userClaims("author-1")))

	// admin allowed regardless of ownership
	admin := &shared.AuthClaims{UserID: "admin-1", Username: "modo", Role: "admin"}
	assert.NoError(t, svc.DeletePost(context.Background(), 5, admin))
}

func TestGetPost_IncrementsViews(t *testing.T) {
	postRepo, _, _, _, _, _, _, _, svc := newForumFixture()

	postRepo.On("IncrementViews", mock.Anything, int64(5)).Return(nil)
	postRepo.On("GetByIDJoined", mock.Anything, int64(5)).
		Return(&models.ForumPost{ID: 5, Views: 11}, nil)

	resp, err := svc.GetPost(context.Background(), 5)

	assert.NoError(t, err)
	assert.Equal(t, int64(5), resp.ID)
	postRepo.AssertCalled(t, "IncrementViews", mock.Anything, int64(5))
}

func TestGetPost_NotFound(t *testing.T) {
	postRepo, _, _, _, _, _, _, _, svc := newForumFixture()

	postRepo.On("IncrementViews", mock.Anything, int64(99)).Return(gorm.ErrRecordNotFound)
	postRepo.On("GetByIDJoined", mock.Anything, int64(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetPost(context.Background(), 99)
	assert.ErrorIs(t, err, ErrPostNotFound)
}
