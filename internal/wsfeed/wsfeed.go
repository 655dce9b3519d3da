// Package wsfeed provides a WebSocket broadcast hub for streaming
// engine events to subscribers.
package wsfeed

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/fd1az/nftswap-engine/internal/apperror"
	"github.com/fd1az/nftswap-engine/internal/logger"
	"github.com/fd1az/nftswap-engine/internal/ratelimit"
)

// Config holds the feed server configuration.
type Config struct {
	Port int

	// EventsPerMinute rate-limits messages sent to each client;
	// messages over the limit are dropped, not queued.
	EventsPerMinute int

	// ClientBufferSize is the per-client send queue; a slow client
	// whose queue fills starts losing messages rather than stalling
	// the broadcaster.
	ClientBufferSize int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(port int) Config {
	return Config{
		Port:             port,
		EventsPerMinute:  600,
		ClientBufferSize: 64,
	}
}

// Hub accepts WebSocket subscribers on /ws and fans broadcast messages
// out to them. Delivery is best-effort: slow or rate-limited clients
// lose messages, they are never allowed to block the engine.
type Hub struct {
	cfg Config
	log logger.LoggerInterface

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool

	server *http.Server
}

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	limiter *ratelimit.Limiter
}

// NewHub creates a feed hub.
func NewHub(cfg Config, log logger.LoggerInterface) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.ClientBufferSize <= 0 {
		cfg.ClientBufferSize = 64
	}
	if cfg.EventsPerMinute <= 0 {
		cfg.EventsPerMinute = 600
	}
	return &Hub{
		cfg:     cfg,
		log:     log,
		clients: make(map[*client]struct{}),
	}
}

// Start begins serving /ws.
func (h *Hub) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleSubscribe)

	h.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", h.cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.log.Error(context.Background(), "feed server stopped", "error", err)
		}
	}()

	return nil
}

// Stop disconnects all clients and shuts the server down.
func (h *Hub) Stop(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()

	if h.server != nil {
		return h.server.Shutdown(ctx)
	}
	return nil
}

// Broadcast queues a message for every connected client. Fails with
// FEED_CLOSED after Stop.
func (h *Hub) Broadcast(msg []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return apperror.New(apperror.CodeFeedClosed)
	}
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// Slow client, drop the message.
		}
	}
	return nil
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket accept failed", "error", err)
		return
	}

	c := &client{
		conn:    conn,
		send:    make(chan []byte, h.cfg.ClientBufferSize),
		limiter: ratelimit.New(h.cfg.EventsPerMinute),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close(websocket.StatusGoingAway, "feed closed")
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.log.Debug(r.Context(), "feed client connected", "clients", h.ClientCount())

	go h.writePump(c)
	go h.readPump(c)
}

// writePump drains the client queue onto the wire, enforcing the
// per-client rate limit by dropping over-limit messages.
func (h *Hub) writePump(c *client) {
	ctx := context.Background()
	for msg := range c.send {
		if !c.limiter.Allow() {
			continue
		}
		writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := c.conn.Write(writeCtx, websocket.MessageText, msg)
		cancel()
		if err != nil {
			h.drop(c)
			return
		}
	}
	c.conn.Close(websocket.StatusNormalClosure, "")
}

// readPump discards inbound frames; the feed is one-way. It exists to
// notice the client hanging up.
func (h *Hub) readPump(c *client) {
	ctx := context.Background()
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			h.drop(c)
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close(websocket.StatusNormalClosure, "")
}
