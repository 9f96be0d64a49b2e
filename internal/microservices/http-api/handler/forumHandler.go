package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"esporthub/internal/microservices/http-api/dto"
	"esporthub/internal/microservices/http-api/middleware"
	"esporthub/internal/microservices/http-api/repository"
	"esporthub/internal/microservices/http-api/service"
	"esporthub/internal/shared"

	"github.com/gin-gonic/gin"
)

type ForumHandler struct {
	forumService service.ForumService
}

func NewForumHandler(forumService service.ForumService) *ForumHandler {
	return &ForumHandler{forumService: forumService}
}

// RegisterRoutes wires the forum endpoints. Reads are public; writes sit
// behind the auth middleware, pin/lock behind the admin role on top.
func (h *ForumHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/posts", h.ListPosts)
	rg.GET("/posts/:id", h.GetPost)
	rg.GET("/posts/:id/replies", h.ListReplies)
	rg.GET("/categories", h.GetCategories)

	authed := rg.Group("", authMW)
	authed.POST("/posts", h.CreatePost)
	authed.DELETE("/posts/:id", h.DeletePost)
	authed.POST("/posts/:id/replies", h.CreateReply)
	authed.DELETE("/replies/:id", h.DeleteReply)
	authed.POST("/posts/:id/like", h.TogglePostLike)
	authed.POST("/replies/:id/like", h.ToggleReplyLike)

	admin := authed.Group("", middleware.RequireAdmin())
	admin.PUT("/posts/:id/pin", h.PinPost)
	admin.PUT("/posts/:id/lock", h.LockPost)
}

func (h *ForumHandler) CreatePost(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	var req dto.CreatePostDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.forumService.CreatePost(c.Request.Context(), claims, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTitleTooShort),
			errors.Is(err, service.ErrContentTooShort),
			errors.Is(err, service.ErrCategoryRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create post"})
		}
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (h *ForumHandler) GetPost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	post, err := h.forumService.GetPost(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch post"})
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *ForumHandler) ListPosts(c *gin.Context) {
	params := repository.ListPostParams{
		Search:   c.Query("search"),
		Sort:     c.DefaultQuery("sort", repository.SortRecent),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	if categoryID, err := strconv.ParseInt(c.Query("category_id"), 10, 64); err == nil {
		params.CategoryID = categoryID
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	posts, err := h.forumService.ListPosts(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list posts"})
		return
	}

	c.JSON(http.StatusOK, posts)
}

func (h *ForumHandler) DeletePost(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.forumService.DeletePost(c.Request.Context(), id, claims); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete post"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

func (h *ForumHandler) PinPost(c *gin.Context) {
	h.setFlag(c, h.forumService.SetPostPinned, "pinned")
}

func (h *ForumHandler) LockPost(c *gin.Context) {
	h.setFlag(c, h.forumService.SetPostLocked, "locked")
}

type flagBody struct {
	Value bool `json:"value"`
}

func (h *ForumHandler) setFlag(c *gin.Context, apply func(ctx context.Context, id int64, v bool) error, name string) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var body flagBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := apply(c.Request.Context(), id, body.Value); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{name: body.Value})
}

func (h *ForumHandler) CreateReply(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}
	postID, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.CreateReplyDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.forumService.CreateReply(c.Request.Context(), postID, claims, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrPostLocked):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create reply"})
		}
		return
	}

	c.JSON(http.StatusCreated, reply)
}

func (h *ForumHandler) ListReplies(c *gin.Context) {
	postID, ok := pathID(c)
	if !ok {
		return
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 50)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}

	replies, err := h.forumService.ListReplies(c.Request.Context(), postID, page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list replies"})
		return
	}

	c.JSON(http.StatusOK, replies)
}

func (h *ForumHandler) DeleteReply(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}
	replyID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.forumService.DeleteReply(c.Request.Context(), replyID, claims); err != nil {
		switch {
		case errors.Is(err, service.ErrReplyNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete reply"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "reply deleted"})
}

func (h *ForumHandler) TogglePostLike(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}
	postID, ok := pathID(c)
	if !ok {
		return
	}

	liked, err := h.forumService.TogglePostLike(c.Request.Context(), postID, claims)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to toggle like"})
		return
	}

	c.JSON(http.StatusOK, dto.LikeResponse{Liked: liked})
}

func (h *ForumHandler) ToggleReplyLike(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}
	replyID, ok := pathID(c)
	if !ok {
		return
	}

	liked, err := h.forumService.ToggleReplyLike(c.Request.Context(), replyID, claims)
	if err != nil {
		if errors.Is(err, service.ErrReplyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to toggle like"})
		return
	}

	c.JSON(http.StatusOK, dto.LikeResponse{Liked: liked})
}

func (h *ForumHandler) GetCategories(c *gin.Context) {
	categories, err := h.forumService.GetCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// mustClaims pulls the validated claims set by the auth middleware; responds
// 401 and returns nil when absent.
func mustClaims(c *gin.Context) *shared.AuthClaims {
	v, exists := c.Get("claims")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil
	}
	claims, ok := v.(*shared.AuthClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil
	}
	return claims
}

// pathID parses the :id path parameter; responds 400 and reports false on
// garbage input.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return v
}
