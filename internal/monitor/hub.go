package monitor

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dairyDispatch/internal/logger"
	"dairyDispatch/internal/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The feed is read-only and served on a local port.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans map snapshots out to connected websocket clients. A new client
// gets the latest snapshot first, then every broadcast.
type Hub struct {
	log     *slog.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	clients map[*client]struct{}
	latest  []byte
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(l *slog.Logger, m *metrics.Metrics) *Hub {
	return &Hub{log: logger.OrDiscard(l), metrics: m, clients: map[*client]struct{}{}}
}

// Broadcast stores snap as the latest frame and queues it for every client.
// Slow clients whose buffer is full are dropped.
func (h *Hub) Broadcast(snap MapSnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = b
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			h.dropLocked(c)
		}
	}
	return nil
}

// Latest returns the last broadcast frame, or nil.
func (h *Hub) Latest() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.dropLocked(c)
	}
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.metrics.MapClientDelta(-1)
}

// add registers c and queues the latest frame. The gauge moves under the
// same lock as dropLocked so it never goes below zero.
func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	h.metrics.MapClientDelta(1)
	if h.latest != nil {
		c.send <- h.latest
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.dropLocked(c)
	h.mu.Unlock()
}

// ServeWS upgrades the request and starts the client's pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", logger.Action("map_feed"), logger.Err(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.add(c)
	h.log.Debug("map client connected", logger.Action("map_feed"), slog.String("remote", r.RemoteAddr))

	go h.writePump(c)
	go h.readPump(c)
}

// readPump only watches for the client going away; the feed is one-way.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug("map client read error", logger.Action("map_feed"), logger.Err(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
