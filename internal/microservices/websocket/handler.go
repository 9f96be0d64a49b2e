package websocket

import (
	"net/http"

	"esporthub/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// HTTP upgrade handler for the per-user notification channel

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// allow all origins for development purpose; can restrict later
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades an authenticated HTTP request to a websocket and
// registers the connection with the hub. Runs behind the JWT middleware.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get("claims")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: claims not found"})
			return
		}
		claims, ok := claimsValue.(*shared.AuthClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: invalid claims"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade to WebSocket"})
			return
		}

		client := NewClient(
			uuid.New().String(), // unique per connection so multiple tabs coexist
			claims.UserID,
			claims.Username,
			conn,
			hub,
		)

		hub.Register <- client

		go client.ReadPump()
		go client.WritePump()
	}
}
