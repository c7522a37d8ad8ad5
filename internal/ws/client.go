package ws

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"tank-status-backend/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from arbitrary hosts during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// client is one subscriber connection. A single writer goroutine drains
// the send channel, which preserves per-connection message order.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// TankLister supplies the snapshot sent to newly connected subscribers.
type TankLister interface {
	ListTanks(ctx context.Context) ([]model.Tank, error)
}

// Serve returns the /ws upgrade handler. Every new connection receives
// an INITIAL_DATA snapshot before any delta, regardless of in-flight
// mutations: the snapshot is queued on the client's own channel before
// the client joins the broadcast set.
func (h *Hub) Serve(lister TankLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("ws: upgrade failed: %v", err)
			return
		}

		tanks, err := lister.ListTanks(c.Request.Context())
		if err != nil {
			log.Printf("ws: snapshot fetch failed, sending empty baseline: %v", err)
			tanks = []model.Tank{}
		}
		if tanks == nil {
			tanks = []model.Tank{}
		}

		snapshot, err := encodeMessage(TypeInitialData, tanks)
		if err != nil {
			log.Printf("ws: failed to encode snapshot: %v", err)
			conn.Close()
			return
		}

		cl := &client{hub: h, conn: conn, send: make(chan []byte, sendBufferSize)}
		cl.send <- snapshot
		h.register <- cl

		go cl.writePump()
		go cl.readPump()
	}
}

// readPump discards inbound frames (the protocol is push-only) and
// deregisters the client when the connection closes.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub dropped us.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
