package handler

import (
	"errors"
	"net/http"
	"strconv"

	"esporthub/internal/microservices/http-api/dto"
	"esporthub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// RegisterRoutes wires the notification endpoints; the whole group sits
// behind the auth middleware, every operation is owner-scoped.
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.GetRecent)
	rg.GET("/unread-count", h.UnreadCount)
	rg.PUT("/:id/read", h.MarkAsRead)
	rg.PUT("/read-all", h.MarkAllAsRead)
	rg.DELETE("", h.ClearAll)
	rg.DELETE("/:id", h.Delete)
}

func (h *NotificationHandler) GetRecent(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		limit = 50
	}

	resp, err := h.notificationService.GetRecent(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	count, err := h.notificationService.UnreadCount(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count notifications"})
		return
	}

	c.JSON(http.StatusOK, dto.UnreadCountResponse{Unread: count})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	err := h.notificationService.MarkAsRead(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	updated, err := h.notificationService.MarkAllAsRead(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	err := h.notificationService.Delete(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification deleted"})
}

func (h *NotificationHandler) ClearAll(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	if err := h.notificationService.ClearAll(c.Request.Context(), claims.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notifications cleared"})
}
