package sync

import (
	"bufio"
	"net"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"streamhub/internal/logging"
	"streamhub/internal/metrics"
)

const writeTimeout = 2 * time.Second

// Hub fans events out to every connected TCP and WebSocket client.
// WebSocket clients may subscribe to a single profile.
type Hub struct {
	mu        sync.Mutex
	clients   map[net.Conn]struct{}
	wsClients map[*websocket.Conn]string
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[net.Conn]struct{}),
		wsClients: make(map[*websocket.Conn]string),
	}
}

func (h *Hub) Add(conn net.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	metrics.SyncClients.WithLabelValues("tcp").Inc()
}

func (h *Hub) Remove(conn net.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		metrics.SyncClients.WithLabelValues("tcp").Dec()
	}
	_ = conn.Close()
}

// AddWS registers ws. An empty profileID receives every event.
func (h *Hub) AddWS(ws *websocket.Conn, profileID string) {
	h.mu.Lock()
	h.wsClients[ws] = profileID
	h.mu.Unlock()
	metrics.SyncClients.WithLabelValues("ws").Inc()
}

func (h *Hub) RemoveWS(ws *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.wsClients[ws]
	delete(h.wsClients, ws)
	h.mu.Unlock()
	if ok {
		metrics.SyncClients.WithLabelValues("ws").Dec()
	}
	_ = ws.Close()
}

// Publish broadcasts ev, delivering it to WebSocket clients subscribed to
// ev.ProfileID or to all profiles.
func (h *Hub) Publish(ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		logging.Warn().Err(err).Str("type", ev.Type).Msg("encode sync event failed")
		return
	}
	h.broadcast(append(b, '\n'), ev.ProfileID)
}

func (h *Hub) broadcast(b []byte, profileID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// TCP clients
	for c := range h.clients {
		_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
		w := bufio.NewWriter(c)
		if _, err := w.Write(b); err != nil {
			h.dropTCP(c)
			continue
		}
		if err := w.Flush(); err != nil {
			h.dropTCP(c)
		}
	}

	// WebSocket clients
	for ws, only := range h.wsClients {
		if only != "" && only != profileID {
			continue
		}
		_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			delete(h.wsClients, ws)
			metrics.SyncClients.WithLabelValues("ws").Dec()
		}
	}
}

// dropTCP must be called with h.mu held.
func (h *Hub) dropTCP(c net.Conn) {
	_ = c.Close()
	delete(h.clients, c)
	metrics.SyncClients.WithLabelValues("tcp").Dec()
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		TCPClients: len(h.clients),
		WSClients:  len(h.wsClients),
	}
}

type welcome struct {
	Type      string `json:"type"`
	Transport string `json:"transport"`
	Clients   int    `json:"clients"`
}

func (h *Hub) welcome(transport string) []byte {
	s := h.Stats()
	b, _ := json.Marshal(welcome{Type: "welcome", Transport: transport, Clients: s.TCPClients + s.WSClients})
	return append(b, '\n')
}
