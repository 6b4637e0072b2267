// Package spectate exposes a WebSocket feed that tails a match's replay
// journal as it is written and re-broadcasts each tick to connected
// viewers. It ships no rendering of its own — that is the out-of-scope
// replay viewer's job — only the transport.
package spectate

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Hub fans a stream of journal records out to every connected viewer. One
// Hub serves one match's feed.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]bool
	register chan *client

	unregister chan *client
	broadcast  chan []byte

	log *slog.Logger
}

// NewHub builds an idle Hub. Call Run in its own goroutine before serving
// any connections.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 16),
		log:        log,
	}
}

// Run drives the hub's registration and broadcast loop. It never returns.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			var dead []*client
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					dead = append(dead, c)
				}
			}
			h.mu.RUnlock()

			if len(dead) > 0 {
				h.mu.Lock()
				for _, c := range dead {
					if _, ok := h.clients[c]; ok {
						delete(h.clients, c)
						close(c.send)
					}
				}
				h.mu.Unlock()
			}
		}
	}
}

// Broadcast re-sends one journaled tick (already-encoded JSON) to every
// connected viewer. Non-blocking: a slow viewer is dropped rather than
// stalling the feed for everyone else.
func (h *Hub) Broadcast(line []byte) {
	cp := make([]byte, len(line))
	copy(cp, line)
	select {
	case h.broadcast <- cp:
	default:
		h.log.Warn("spectate: broadcast channel full, dropping tick")
	}
}

// ServeHTTP upgrades the connection to a WebSocket and registers it as a
// viewer. Viewers are read-only: anything they send is discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("spectate: websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 64)}
	h.register <- c

	go c.writePump()
	go c.readPump(h)
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
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
