package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"NetSentra/internal/model"

	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is same-origin behind the operator's reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub streams live alerts to connected WebSocket clients. It is a
// distributor subscriber: Deliver runs on the distributor's delivery
// goroutine, and a client that cannot keep up within the write timeout is
// disconnected rather than allowed to stall the others.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{})}
}

// Name identifies this subscriber in logs and drop counters.
func (h *Hub) Name() string {
	return "websocket"
}

// Deliver broadcasts one alert to every connected client.
func (h *Hub) Deliver(a *model.Alert) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("WebSocket client dropped: %v", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
	return nil
}

// HandleWS upgrades the request and registers the client for the alert stream.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	total := len(h.conns)
	h.mu.Unlock()
	log.Printf("WebSocket client connected (%d total)", total)

	// Reader loop: we expect no client messages, but reading is what detects
	// a closed connection.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.mu.Lock()
				if _, ok := h.conns[conn]; ok {
					conn.Close()
					delete(h.conns, conn)
				}
				remaining := len(h.conns)
				h.mu.Unlock()
				log.Printf("WebSocket client disconnected (%d remaining)", remaining)
				return
			}
		}
	}()
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Close()
		delete(h.conns, conn)
	}
}
