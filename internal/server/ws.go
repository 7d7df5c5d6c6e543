package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// ProgressEvent is one scan progress update pushed to dashboard clients
type ProgressEvent struct {
	Done   int    `json:"done"`
	Total  int    `json:"total"`
	Symbol string `json:"symbol"`
}

// ProgressHub fans scan progress out to connected websocket clients.
// Clients that fail a write are dropped.
type ProgressHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
	log   zerolog.Logger
}

// NewProgressHub creates a progress hub
func NewProgressHub(log zerolog.Logger) *ProgressHub {
	return &ProgressHub{
		conns: make(map[*websocket.Conn]struct{}),
		log:   log.With().Str("component", "progress-ws").Logger(),
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the client goes away
func (h *ProgressHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // same-origin enforcement happens in CORS middleware
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket accept failed")
		return
	}

	h.add(conn)
	defer h.remove(conn)

	h.log.Debug().Msg("Progress client connected")

	// The feed is one-way; reads only serve to detect disconnects
	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}

// Broadcast pushes an event to every connected client
func (h *ProgressHub) Broadcast(event ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := wsjson.Write(ctx, conn, event)
		cancel()

		if err != nil {
			conn.Close(websocket.StatusGoingAway, "write failed")
			delete(h.conns, conn)
		}
	}
}

func (h *ProgressHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *ProgressHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[conn]; ok {
		conn.Close(websocket.StatusNormalClosure, "")
		delete(h.conns, conn)
	}
}
