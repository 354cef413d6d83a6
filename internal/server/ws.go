package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = time.Second

	// sendBuffer is how many updates a client may fall behind before it is
	// dropped.
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// wsClient is one websocket connection. Only writePump writes to conn.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts per-frame classifications to websocket clients.
type Hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*wsClient]struct{})}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.add(c) {
		conn.Close()
		return
	}
	go c.writePump()

	defer h.remove(c)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) add(c *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

// remove unregisters c and stops its writer. Callers must not hold h.mu.
func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(c)
}

// drop requires h.mu.
func (h *Hub) drop(c *wsClient) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// writePump writes queued messages until send is closed or a write fails.
func (c *wsClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			slog.Debug("websocket write failed", "error", err)
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Broadcast queues v as JSON for every client without waiting on the network.
// A client whose queue is full is dropped.
func (h *Hub) Broadcast(v any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) == 0 {
		return
	}
	msg, err := json.Marshal(v)
	if err != nil {
		slog.Warn("failed to encode broadcast", "error", err)
		return
	}

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slog.Debug("dropping slow websocket client")
			h.drop(c)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.drop(c)
	}
}
