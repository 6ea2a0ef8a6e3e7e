// Package realtime pushes store snapshots to the connections of the
// workspace they belong to, and notifications to all of a user's connections.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/pageza/mealtrack/backend/internal/store"
)

// Event types sent to clients.
const (
	EventSnapshot     = "snapshot"
	EventNotification = "notification"
	EventSession      = "session"
	EventEdit         = "edit"
	EventError        = "error"
)

const (
	sendBuffer     = 16
	writeTimeout   = 10 * time.Second
	pingInterval   = 25 * time.Second
	pongTimeout    = 60 * time.Second
	maxMessageSize = 4096
)

// Inbound message types.
const (
	MessageSwipe   = "swipe"
	MessageRefresh = "refresh"
)

// Event is one message on the wire.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Message is sent by clients.
type Message struct {
	Type      string  `json:"type"`
	ItemID    string  `json:"item_id,omitempty"`
	DX        float64 `json:"dx,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
}

// ReadPump reads client messages and passes each to handle until the
// connection fails or goes quiet past the pong timeout.
func ReadPump(conn *websocket.Conn, handle func(Message)) error {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
		handle(msg)
	}
}

// Conn is the subset of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one websocket connection of a user, showing the state of one
// workspace.
type Client struct {
	UserID      uuid.UUID
	WorkspaceID uuid.UUID
	conn        Conn
	send        chan []byte
	once        sync.Once
}

// NewClient wraps conn for the user's workspace.
func NewClient(userID, workspaceID uuid.UUID, conn Conn) *Client {
	return &Client{UserID: userID, WorkspaceID: workspaceID, conn: conn, send: make(chan []byte, sendBuffer)}
}

// Send queues an event for this client only. Events are dropped when the
// client is not keeping up.
func (c *Client) Send(e Event) bool {
	msg, err := json.Marshal(e)
	if err != nil {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.once.Do(func() { close(c.send) })
}

// WritePump delivers queued events and keepalive pings until the client is
// unregistered or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub tracks connected clients per user.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}
	log     logrus.FieldLogger
}

var _ store.Notifier = (*Hub)(nil)

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{clients: make(map[uuid.UUID]map[*Client]struct{}), log: log}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*Client]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
	h.log.WithField("user_id", c.UserID).Debug("realtime client connected")
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	c.close()
	h.log.WithField("user_id", c.UserID).Debug("realtime client disconnected")
}

// Connected returns the number of open connections for userID.
func (h *Hub) Connected(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Broadcast sends e to every connection of userID.
func (h *Hub) Broadcast(userID uuid.UUID, e Event) {
	h.deliver(userID, e, func(*Client) bool { return true })
}

// Publish sends e to the connections of userID that show workspaceID.
func (h *Hub) Publish(userID, workspaceID uuid.UUID, e Event) {
	h.deliver(userID, e, func(c *Client) bool { return c.WorkspaceID == workspaceID })
}

func (h *Hub) deliver(userID uuid.UUID, e Event, match func(*Client) bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		if !match(c) {
			continue
		}
		if !c.Send(e) {
			h.log.WithField("user_id", userID).Warn("realtime client too slow, event dropped")
		}
	}
}

// Notify forwards a store notification to the user's connections.
func (h *Hub) Notify(n store.Notification) {
	if n.UserID == uuid.Nil {
		return
	}
	h.Broadcast(n.UserID, Event{Type: EventNotification, Data: n})
}
