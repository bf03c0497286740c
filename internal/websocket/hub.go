// Package websocket broadcasts batch progress events to connected
// presentation clients.
package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Message type constants used on the wire.
const (
	TypeBatchStarted  = "batch_started"
	TypeFileProcessed = "file_processed"
	TypeBatchFinished = "batch_finished"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 16
)

// Hub maintains the set of connected clients and fans broadcast
// messages out to them. Clients are write-only; inbound frames are
// drained and discarded.
type Hub struct {
	logger *slog.Logger

	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	quit       chan struct{}

	clients     map[*client]struct{}
	clientCount atomic.Int64

	upgrader websocket.Upgrader
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a progress hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:     logger.With(slog.String("component", "websocket_hub")),
		broadcast:  make(chan []byte),
		register:   make(chan *client),
		unregister: make(chan *client),
		quit:       make(chan struct{}),
		clients:    make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The hub only pushes progress; any origin may listen.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start launches the hub loop.
func (h *Hub) Start() {
	go h.run()
}

// Stop terminates the hub loop and disconnects every client.
func (h *Hub) Stop() {
	close(h.quit)
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.clientCount.Store(int64(len(h.clients)))
			h.logger.Debug("client connected", slog.Int("clients", len(h.clients)))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.clientCount.Store(int64(len(h.clients)))
		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					// Slow consumer, drop it.
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.clientCount.Store(int64(len(h.clients)))
		case <-h.quit:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.clientCount.Store(0)
			return
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.clientCount.Load())
}

// ServeWS upgrades an HTTP request to a WebSocket subscription.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}
	h.register <- c

	go c.writePump()
	go c.readPump(h)
}

// writePump forwards hub broadcasts to the connection.
func (c *client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump drains inbound frames so close handshakes are noticed.
func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// broadcastJSON serializes and fans out one event.
func (h *Hub) broadcastJSON(message map[string]interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal broadcast message",
			slog.String("error", err.Error()))
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.quit:
	}
}

// BatchStarted implements services.ProgressNotifier.
func (h *Hub) BatchStarted(batchID string, fileCount int) {
	h.broadcastJSON(map[string]interface{}{
		"type":       TypeBatchStarted,
		"batch_id":   batchID,
		"file_count": fileCount,
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}

// FileProcessed implements services.ProgressNotifier.
func (h *Hub) FileProcessed(batchID, filename string, blocks int, err error) {
	message := map[string]interface{}{
		"type":      TypeFileProcessed,
		"batch_id":  batchID,
		"filename":  filename,
		"blocks":    blocks,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if err != nil {
		message["error"] = err.Error()
	}
	h.broadcastJSON(message)
}

// BatchFinished implements services.ProgressNotifier.
func (h *Hub) BatchFinished(batchID string) {
	h.broadcastJSON(map[string]interface{}{
		"type":      TypeBatchFinished,
		"batch_id":  batchID,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
