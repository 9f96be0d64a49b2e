package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"esporthub/internal/microservices/http-api/dto"
	"esporthub/internal/microservices/http-api/models"
	"esporthub/internal/microservices/http-api/repository"
	"esporthub/internal/microservices/http-api/service"
	"esporthub/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockForumService mocks the ForumService interface
type MockForumService struct {
	mock.Mock
}

func (m *MockForumService) CreatePost(ctx context.Context, claims *shared.AuthClaims, req dto.CreatePostDTO) (*dto.PostResponse, error) {
	args := m.Called(ctx, claims, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PostResponse), args.Error(1)
}

func (m *MockForumService) GetPost(ctx context.Context, id int64) (*dto.PostResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PostResponse), args.Error(1)
}

func (m *MockForumService) ListPosts(ctx context.Context, params repository.ListPostParams) (*dto.PaginatedPostResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PaginatedPostResponse), args.Error(1)
}

func (m *MockForumService) DeletePost(ctx context.Context, id int64, claims *shared.AuthClaims) error {
	args := m.Called(ctx, id, claims)
	return args.Error(0)
}

func (m *MockForumService) SetPostPinned(ctx context.Context, id int64, pinned bool) error {
	args := m.Called(ctx, id, pinned)
	return args.Error(0)
}

func (m *MockForumService) SetPostLocked(ctx context.Context, id int64, locked bool) error {
	args := m.Called(ctx, id, locked)
	return args.Error(0)
}

func (m *MockForumService) TogglePostLike(ctx context.Context, postID int64, claims *shared.AuthClaims) (bool, error) {
	args := m.Called(ctx, postID, claims)
	return args.Bool(0), args.Error(1)
}

func (m *MockForumService) CreateReply(ctx context.Context, postID int64, claims *shared.AuthClaims, content string) (*dto.ReplyResponse, error) {
	args := m.Called(ctx, postID, claims, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReplyResponse), args.Error(1)
}

func (m *MockForumService) ListReplies(ctx context.Context, postID int64, page, pageSize int) (*dto.PaginatedReplyResponse, error) {
	args := m.Called(ctx, postID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PaginatedReplyResponse), args.Error(1)
}

func (m *MockForumService) DeleteReply(ctx context.Context, replyID int64, claims *shared.AuthClaims) error {
	args := m.Called(ctx, replyID, claims)
	return args.Error(0)
}

func (m *MockForumService) ToggleReplyLike(ctx context.Context, replyID int64, claims *shared.AuthClaims) (bool, error) {
	args := m.Called(ctx, replyID, claims)
	return args.Bool(0), args.Error(1)
}

func (m *MockForumService) GetCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func TestCreatePost_Success(t *testing.T) {
	mockService := new(MockForumService)
	handler := NewForumHandler(mockService)
	router := setupRouter()
	router.POST("/forum/posts", withClaims("user-1", "user"), handler.CreatePost)

	reqDTO := dto.CreatePostDTO{
		Title:      "Quel est le meilleur AWPer?",
		Content:    "On débat depuis des années, donnez vos arguments sérieux.",
		CategoryID: 1,
	}
	mockService.On("CreatePost", mock.Anything, mock.Anything, reqDTO).
		Return(&dto.PostResponse{ID: 10, Title: reqDTO.Title, AuthorID: "user-1", CategoryID: 1}, nil)

	body, _ := json.Marshal(reqDTO)
	req, _ := http.NewRequest("POST", "/forum/posts", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response dto.PostResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, int64(10), response.ID)

	mockService.AssertExpectations(t)
}

func TestCreatePost_TitleTooShort(t *testing.T) {
	mockService := new(MockForumService)
	handler := NewForumHandler(mockService)
	router := setupRouter()
	router.POST("/forum/posts", withClaims("user-1", "user"), handler.CreatePost)

	reqDTO := dto.CreatePostDTO{
		Title:      "court",
		Content:    "un contenu suffisamment long pour passer la validation",
		CategoryID: 1,
	}
	mockService.On("CreatePost", mock.Anything, mock.Anything, reqDTO).
		Return(nil, service.ErrTitleTooShort)

	body, _ := json.Marshal(reqDTO)
	req, _ := http.NewRequest("POST", "/forum/posts", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}

func TestGetPost_NotFound(t *testing.T) {
	mockService := new(MockForumService)
	handler := NewForumHandler(mockService)
	router := setupRouter()
	router.GET("/forum/posts/:id", handler.GetPost)

	mockService.On("GetPost", mock.Anything, int64(99)).Return(nil, service.ErrPostNotFound)

	req, _ := http.NewRequest("GET", "/forum/posts/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}

func TestGetPost_InvalidID(t *testing.T) {
	mockService := new(MockForumService)
	handler := NewForumHandler(mockService)
	router := setupRouter()
	router.GET("/forum/posts/:id", handler.GetPost)

	req, _ := http.NewRequest("GET", "/forum/posts/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GetPost")
}

func TestListPosts_ClampsPagination(t *testing.T) {
	mockService := new(MockForumService)
	handler := NewForumHandler(mockService)
	router := setupRouter()
	router.GET("/forum/posts", handler.ListPosts)

	expected := repository.ListPostParams{
		Sort:     repository.SortRecent,
		Page:     1,
		PageSize: 20,
	}
	mockService.On("ListPosts", mock.Anything, expected).
		Return(&dto.PaginatedPostResponse{Data: []dto.PostResponse{}}, nil)

	// page 0 and an oversized page_size both fall back to defaults
	req, _ := http.NewRequest("GET", "/forum/posts?page=0&page_size=5000", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestCreateReply_LockedPost(t *testing.T) {
	mockService := new(MockForumService)
	handler := NewForumHandler(mockService)
	router := setupRouter()
	router.POST("/forum/posts/:id/replies", withClaims("user-1", "user"), handler.CreateReply)

	mockService.On("CreateReply", mock.Anything, int64(5), mock.Anything, "une réponse").
		Return(nil, service.ErrPostLocked)

	body, _ := json.Marshal(dto.CreateReplyDTO{Content: "une réponse"})
	req, _ := http.NewRequest("POST", "/forum/posts/5/replies", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}

func TestDeletePost_Forbidden(t *testing.T) {
	mockService := new(MockForumService)
	handler := NewForumHandler(mockService)
	router := setupRouter()
	router.DELETE("/forum/posts/:id", withClaims("user-2", "user"), handler.DeletePost)

	mockService.On("DeletePost", mock.Anything, int64(5), mock.Anything).
		Return(service.ErrNotOwner)

	req, _ := http.NewRequest("DELETE", "/forum/posts/5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockService.AssertExpectations(t)
}

func TestTogglePostLike_ReturnsState(t *testing.T) {
	mockService := new(MockForumService)
	handler := NewForumHandler(mockService)
	router := setupRouter()
	router.POST("/forum/posts/:id/like", withClaims("user-1", "user"), handler.TogglePostLike)

	mockService.On("TogglePostLike", mock.Anything, int64(5), mock.Anything).Return(true, nil)

	req, _ := http.NewRequest("POST", "/forum/posts/5/like", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.LikeResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.True(t, response.Liked)

	mockService.AssertExpectations(t)
}

func TestPinPost_AsAdmin(t *testing.T) {
	mockService := new(MockForumService)
	handler := NewForumHandler(mockService)
	router := setupRouter()
	router.PUT("/forum/posts/:id/pin", withClaims("admin-1", "admin"), handler.PinPost)

	mockService.On("SetPostPinned", mock.Anything, int64(5), true).Return(nil)

	body := []byte(`{"value":true}`)
	req, _ := http.NewRequest("PUT", "/forum/posts/5/pin", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}
