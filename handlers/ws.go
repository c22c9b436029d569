package handlers

import (
	"log"
	"net/http"
	"sync"

	"github.com/Athena-GenAI/api-testing/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Same permissive policy as the CORS middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub pushes refreshed token stats to connected websocket subscribers.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

// Broadcast sends stats to every subscriber, dropping connections that fail.
func (h *Hub) Broadcast(stats service.TokenStats) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(stats); err != nil {
			log.Printf("[ws] dropping subscriber: %v", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
}

// StreamUpdates upgrades the connection and keeps it subscribed to refresh
// broadcasts until the peer goes away.
func (h *Handler) StreamUpdates(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}

	h.hub.add(conn)
	defer h.hub.remove(conn)

	// Drain control frames; exit on close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			return
		}
	}
}
