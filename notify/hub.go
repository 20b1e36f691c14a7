package notify

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/synanno/maskdraw"
)

const (
	defaultQueueSize = 16
	writeWait        = 10 * time.Second
)

// Option configures a Hub.
type Option func(*Hub)

// WithQueueSize sets how many signals are buffered per client.
func WithQueueSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.queueSize = n
		}
	}
}

// WithCheckOrigin sets the origin check of the websocket upgrade.
// By default only same-origin requests are accepted.
func WithCheckOrigin(f func(*http.Request) bool) Option {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = f
	}
}

// Hub broadcasts JSON-encoded signals to every connected websocket client.
// The most recent signal is replayed to clients as they connect.
type Hub struct {
	upgrader  websocket.Upgrader
	queueSize int

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
	dropped uint64
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub with no clients.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		queueSize: defaultQueueSize,
		clients:   make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Notify implements maskdraw.Notifier. It never blocks.
func (h *Hub) Notify(s maskdraw.Signal) {
	msg, err := json.Marshal(s)
	if err != nil {
		maskdraw.Logger().Warn("encode signal", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.last = msg
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.dropped++
			maskdraw.Logger().Debug("signal dropped", "kind", s.Kind.String(), "remote", c.conn.RemoteAddr().String())
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns how many signals were discarded for slow clients.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// ServeHTTP upgrades the request and streams signals until the client
// disconnects or the hub is closed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		maskdraw.Logger().Debug("websocket upgrade", "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, h.queueSize)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	if h.last != nil {
		c.send <- h.last
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	maskdraw.Logger().Info("websocket client connected", "remote", conn.RemoteAddr().String())

	go c.writeLoop()
	c.readLoop()

	h.remove(c)
	maskdraw.Logger().Info("websocket client disconnected", "remote", conn.RemoteAddr().String())
}

// Close disconnects every client. Later signals are discarded.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	return nil
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// readLoop discards incoming messages; it returns when the connection
// fails or is closed.
func (c *client) readLoop() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Verify Hub implements maskdraw.Notifier.
var _ maskdraw.Notifier = (*Hub)(nil)
