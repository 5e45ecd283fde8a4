// Package statusapi exposes a read-only websocket feed of toolhead
// status snapshots: clients connect and then receive a push on every
// Broadcast call; nothing is sent on connect.
//
// Grounded on goeland86-snapmaker_moonraker/moonraker/websocket.go's
// WSHub/WSClient pattern (upgrade, register/unregister under a mutex,
// best-effort WriteJSON per client), trimmed down from its full
// JSON-RPC method dispatch table to the narrow read-only status push
// this core's Non-goals ("operator UI") call for: no subscribe
// filtering, no gcode/file/history RPC surface.
package statusapi

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"motionhost/motion/toolhead"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub tracks connected status-feed clients and pushes snapshots to
// all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*sync.Mutex)}
}

func (h *Hub) register(c *websocket.Conn) *sync.Mutex {
	m := &sync.Mutex{}
	h.mu.Lock()
	h.clients[c] = m
	h.mu.Unlock()
	return m
}

func (h *Hub) unregister(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// ServeHTTP upgrades the connection and holds it open, discarding any
// client-sent frames (this feed is push-only); the read loop only
// exists to detect disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("statusapi: upgrade error: %v", err)
		return
	}
	writeMu := h.register(conn)
	defer func() {
		h.unregister(conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("statusapi: read error: %v", err)
			}
			return
		}
		_ = writeMu
	}
}

// Broadcast pushes a status snapshot to every connected client,
// logging any client that errors; such a client stays registered until
// its own read loop sees the disconnect.
func (h *Hub) Broadcast(status toolhead.Status) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn, mu := range h.clients {
		mu.Lock()
		err := conn.WriteJSON(status)
		mu.Unlock()
		if err != nil {
			log.Printf("statusapi: send error: %v", err)
		}
	}
}
