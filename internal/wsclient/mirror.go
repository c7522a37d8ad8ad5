package wsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tank-status-backend/internal/model"
	"tank-status-backend/internal/ws"
)

// State is the mirror's connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

const defaultBackoff = 3 * time.Second

// Mirror subscribes to the broadcast channel and maintains a local,
// insertion-ordered copy of the tank collection. It reconnects forever
// with a fixed backoff until its context is cancelled.
type Mirror struct {
	url     string
	backoff time.Duration
	dialer  *websocket.Dialer

	mu    sync.RWMutex
	state State
	tanks []model.Tank
}

// NewMirror creates a mirror for the given ws:// URL. backoff <= 0
// selects the default of 3 seconds.
func NewMirror(url string, backoff time.Duration) *Mirror {
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	return &Mirror{
		url:     url,
		backoff: backoff,
		dialer:  websocket.DefaultDialer,
		state:   StateDisconnected,
	}
}

// Run connects, consumes push messages and reconnects on close. It
// returns only when ctx is cancelled.
func (m *Mirror) Run(ctx context.Context) {
	for {
		m.setState(StateConnecting)
		conn, _, err := m.dialer.DialContext(ctx, m.url, nil)
		if err != nil {
			m.setState(StateDisconnected)
			if ctx.Err() != nil {
				return
			}
			log.Printf("mirror: dial %s failed: %v; retrying in %s", m.url, err, m.backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(m.backoff):
			}
			continue
		}

		m.setState(StateConnected)
		m.readLoop(ctx, conn)
		conn.Close()
		m.setState(StateDisconnected)

		select {
		case <-ctx.Done():
			return
		case <-time.After(m.backoff):
		}
	}
}

func (m *Mirror) readLoop(ctx context.Context, conn *websocket.Conn) {
	// Unblock ReadMessage when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if err := m.Apply(data); err != nil {
			log.Printf("mirror: ignoring malformed message: %v", err)
		}
	}
}

// Apply merges one raw push message into the local collection. Applying
// the same delta twice is a no-op the second time.
func (m *Mirror) Apply(data []byte) error {
	var msg ws.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	switch msg.Type {
	case ws.TypeInitialData:
		var tanks []model.Tank
		if err := json.Unmarshal(msg.Payload, &tanks); err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
		m.mu.Lock()
		m.tanks = tanks
		m.mu.Unlock()

	case ws.TypeTankCreate, ws.TypeTankUpdate:
		var tank model.Tank
		if err := json.Unmarshal(msg.Payload, &tank); err != nil {
			return fmt.Errorf("decode tank: %w", err)
		}
		m.upsert(tank)

	case ws.TypeTankDelete:
		var payload ws.DeletePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("decode delete: %w", err)
		}
		m.remove(payload.ID)

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

// upsert replaces the tank when present, appends it otherwise.
func (m *Mirror) upsert(tank model.Tank) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range m.tanks {
		if t.ID == tank.ID {
			m.tanks[i] = tank
			return
		}
	}
	m.tanks = append(m.tanks, tank)
}

// remove drops the tank by id; absent ids are silently ignored.
func (m *Mirror) remove(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range m.tanks {
		if t.ID == id {
			m.tanks = append(m.tanks[:i], m.tanks[i+1:]...)
			return
		}
	}
}

// Tanks returns a copy of the local collection in insertion order.
func (m *Mirror) Tanks() []model.Tank {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tanks := make([]model.Tank, len(m.tanks))
	copy(tanks, m.tanks)
	return tanks
}

// State reports the current connection state.
func (m *Mirror) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Mirror) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}
