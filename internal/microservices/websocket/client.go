package websocket

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const ( // ping pong (2-way heartbeat) to keep connection alive
	WriteWait      = 10 * time.Second    // max time to write a message to the peer
	PongWait       = 60 * time.Second    // max time to wait for pong from peer => no pong = no connection
	PingPeriod     = (PongWait * 9) / 10 // send ping before pong wait expires, 10% slack for network jitter
	MaxMessageSize = 512                 // maximum message size allowed from peer
	SendBufferSize = 64                  // buffered outbound events per connection
)

// Client is one websocket connection of one user. A user can hold several
// clients at once (one per tab); each receives events independently.
type Client struct {
	ID          string          // unique client ID
	UserID      string          // user ID from auth token (JWT claims)
	Username    string          // username from auth token
	Conn        *websocket.Conn // WebSocket connection
	SendChannel chan []byte     // channel for outbound messages
	Hub         *Hub            // reference to the central Hub
	limiter     *rate.Limiter   // inbound message rate limiter
}

// NewClient constructs a registered-ready client.
func NewClient(id, userID, username string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:          id,
		UserID:      userID,
		Username:    username,
		Conn:        conn,
		SendChannel: make(chan []byte, SendBufferSize),
		Hub:         hub,
		limiter:     rate.NewLimiter(rate.Limit(10), 20), // 10 msgs/sec with burst of 20
	}
}

// ReadPump drains inbound frames so control messages (pong) are processed.
// Inbound payloads carry no commands on this channel; they are rate limited
// and discarded.
func (c *Client) ReadPump() {
	defer func() {
		c.detach()
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(PongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read error", "client_id", c.ID, "error", err)
			}
			return
		}
		if !c.limiter.Allow() {
			slog.Warn("client exceeded message rate, dropping connection", "client_id", c.ID, "user_id", c.UserID)
			return
		}
		// parsed only to validate framing; nothing to act on
		if _, err := ClientMessageFromJSON(data); err != nil {
			continue
		}
	}
}

// detach hands the client back to the hub. When the hub loop has already
// stopped nobody drains Unregister anymore; Shutdown closes every send
// channel itself, so the pump can simply return.
func (c *Client) detach() {
	select {
	case c.Hub.Unregister <- c:
	case <-c.Hub.done:
	}
}

// WritePump delivers queued events and keeps the heartbeat going. A closed
// SendChannel means the hub dropped the client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(PingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.SendChannel:
			c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				slog.Warn("websocket write error", "client_id", c.ID, "error", err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
