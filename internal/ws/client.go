package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"boardsync/internal/auth"
	clog "boardsync/internal/log"
	"boardsync/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 1 << 20 // 1MB
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one live transport session. boardID is the single board room the
// connection is joined to, empty when roaming; it is touched only from the
// connection's own read goroutine, so it needs no lock.
type Client struct {
	id       string
	hub      *Hub
	router   *Router
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	identity auth.Identity
	boardID  string
	logger   zerolog.Logger
}

// Serve is the Connection Gateway endpoint. The bearer credential is verified
// before the upgrade completes: a bad token is refused as a plain HTTP 401 and
// no event handler ever sees the connection.
func Serve(hub *Hub, router *Router, verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.BearerFromRequest(c.Request)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		ident, err := verifier.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		client := &Client{
			id:       uuid.NewString(),
			hub:      hub,
			router:   router,
			conn:     conn,
			send:     make(chan []byte, 256),
			done:     make(chan struct{}),
			identity: *ident,
		}
		client.logger = clog.Component("gateway").With().
			Str("conn_id", client.id).
			Uint("user_id", ident.ID).
			Logger()

		hub.addUser(client)
		metrics.WsConnections.Inc()
		client.logger.Info().Msg("connected")

		go client.writePump()
		client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.router.Disconnect(c)
		c.hub.removeUser(c)
		metrics.WsConnections.Dec()
		// send stays open: a concurrent Broadcast may still hold this client.
		// done tells the write pump and enqueue to stand down instead.
		close(c.done)
		_ = c.conn.Close()
		c.logger.Info().Msg("disconnected")
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
			c.enqueue(encodeEvent(evtError, errorEvent{Message: "malformed event"}))
			continue
		}
		c.router.Dispatch(c, env)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
