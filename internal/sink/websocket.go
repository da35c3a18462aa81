package sink

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"codeberg.org/mutker/camvitals/internal/errors"
	"codeberg.org/mutker/camvitals/internal/logger"
	"github.com/gorilla/websocket"
)

const (
	writeDeadline   = 200 * time.Millisecond
	shutdownTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// Hub broadcasts envelopes to every connected WebSocket client. A client
// that cannot take a message within the write deadline is dropped.
type Hub struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]bool
	server *http.Server
}

func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]bool)}
}

// Listen serves the hub on addr at /ws in the background.
func (h *Hub) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.New().Wrap(errors.ErrSinkInit, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	h.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info().Str("addr", ln.Addr().String()).Msg("WebSocket hub listening")
		if err := h.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("WebSocket hub stopped")
		}
	}()

	return nil
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.add(conn)
	defer func() {
		h.remove(conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.conns[c] = true
	h.mu.Unlock()
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

func (h *Hub) snapshot() []*websocket.Conn {
	h.mu.Lock()
	clients := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	return clients
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Hub) Name() string {
	return "websocket"
}

func (h *Hub) Publish(_ context.Context, _ string, payload []byte) error {
	for _, c := range h.snapshot() {
		_ = c.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			_ = c.Close()
			h.remove(c)
		}
	}
	return nil
}

func (h *Hub) Close() error {
	for _, c := range h.snapshot() {
		_ = c.Close()
		h.remove(c)
	}
	if h.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := h.server.Shutdown(ctx); err != nil {
		return errors.New().Wrap(errors.ErrSinkClose, err)
	}
	return nil
}
