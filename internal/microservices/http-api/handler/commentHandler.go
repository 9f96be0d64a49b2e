package handler

import (
	"errors"
	"net/http"
	"strconv"

	"esporthub/internal/microservices/http-api/dto"
	"esporthub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// RegisterRoutes wires the comment endpoints. The tree is public; creation,
// deletion and likes require authentication.
func (h *CommentHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("", h.GetCommentTree)

	authed := rg.Group("", authMW)
	authed.POST("", h.CreateComment)
	authed.DELETE("/:id", h.DeleteComment)
	authed.POST("/:id/like", h.ToggleCommentLike)
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	var req dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), claims, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidContentType),
			errors.Is(err, service.ErrParentMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrCommentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create comment"})
		}
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) GetCommentTree(c *gin.Context) {
	contentType := c.Query("content_type")
	contentID, err := strconv.ParseInt(c.Query("content_id"), 10, 64)
	if err != nil || contentID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content id"})
		return
	}

	tree, err := h.commentService.GetCommentTree(c.Request.Context(), contentType, contentID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidContentType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load comments"})
		return
	}

	c.JSON(http.StatusOK, tree)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), id, claims); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete comment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}

func (h *CommentHandler) ToggleCommentLike(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	liked, err := h.commentService.ToggleCommentLike(c.Request.Context(), id, claims)
	if err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to toggle like"})
		return
	}

	c.JSON(http.StatusOK, dto.LikeResponse{Liked: liked})
}
