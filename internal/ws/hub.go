package ws

import (
	"context"
	"log"
	"sync/atomic"

	"tank-status-backend/internal/model"
)

// Hub maintains the set of live subscriber connections and fans
// messages out to them. Delivery is best-effort: a subscriber that
// cannot keep up is dropped rather than allowed to block the hub, and
// messages to one subscriber always preserve emission order.
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	clients    map[*client]struct{}
	count      atomic.Int64
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
		clients:    make(map[*client]struct{}),
	}
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Store(int64(len(h.clients)))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.count.Store(int64(len(h.clients)))
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer; drop it instead of blocking
					// everyone else.
					delete(h.clients, c)
					close(c.send)
					h.count.Store(int64(len(h.clients)))
				}
			}
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.count.Store(0)
			return
		}
	}
}

// ClientCount reports the number of registered subscribers.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Broadcast queues a typed message for every connected subscriber.
func (h *Hub) Broadcast(msgType string, payload any) {
	msg, err := encodeMessage(msgType, payload)
	if err != nil {
		log.Printf("ws: failed to encode %s message: %v", msgType, err)
		return
	}
	h.broadcast <- msg
}

// TankCreated announces a newly created tank.
func (h *Hub) TankCreated(tank model.Tank) {
	h.Broadcast(TypeTankCreate, tank)
}

// TankUpdated announces a mutated tank.
func (h *Hub) TankUpdated(tank model.Tank) {
	h.Broadcast(TypeTankUpdate, tank)
}

// TankDeleted announces a removed tank by id.
func (h *Hub) TankDeleted(id int64) {
	h.Broadcast(TypeTankDelete, DeletePayload{ID: id})
}
