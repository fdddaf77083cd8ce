package live

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/coder/websocket"

	"github.com/openhoops/shotchart/internal/domain/model"
	"github.com/openhoops/shotchart/pkg/logger"
	"github.com/openhoops/shotchart/pkg/metrics"
)

// Spectators only listen; frames from them are control traffic.
const readLimitBytes = 1024

// shotFrame is the wire envelope pushed to subscribers.
type shotFrame struct {
	Type string          `json:"type"`
	Shot *model.LiveShot `json:"shot"`
}

// Hub tracks spectator connections per game and fans classified shots out
// to them. Publish never blocks the calling worker.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*Conn]struct{}

	nextID     atomic.Uint64
	sendBuffer int

	logger logger.Logger
}

// NewHub creates an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subs:       make(map[string]map[*Conn]struct{}),
		sendBuffer: defaultSendBuffer,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get().Named("live")
	}
	return h
}

// Subscribe upgrades the request and streams the game's classified shots
// until the client goes away. It blocks for the connection lifetime.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, gameID string) error {
	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		return fmt.Errorf("accepting websocket: %w", err)
	}
	ws.SetReadLimit(readLimitBytes)

	id := fmt.Sprintf("spectator-%d", h.nextID.Add(1))
	conn := newConn(ws, id, h.sendBuffer, h.logger)

	h.add(gameID, conn)
	defer h.remove(gameID, conn)

	h.logger.Info(r.Context(), "spectator joined",
		logger.String("conn", id),
		logger.String("game_id", gameID),
	)

	// CloseRead keeps control frames serviced and cancels the context
	// when the peer goes away.
	readCtx := ws.CloseRead(context.Background())
	conn.writeLoop(readCtx)

	h.logger.Info(r.Context(), "spectator left",
		logger.String("conn", id),
		logger.String("game_id", gameID),
	)
	return nil
}

// Publish fans a classified shot out to the game's subscribers.
func (h *Hub) Publish(gameID string, s model.LiveShot) {
	data, err := json.Marshal(shotFrame{Type: "shot", Shot: &s})
	if err != nil {
		h.logger.Error(context.Background(), "encoding live shot", logger.Error(err))
		return
	}

	h.mu.Lock()
	conns := make([]*Conn, 0, len(h.subs[gameID]))
	for c := range h.subs[gameID] {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.send(data)
	}
	if len(conns) > 0 {
		metrics.RecordLiveBroadcast()
	}
}

// Subscribers returns the number of connected spectators for a game.
func (h *Hub) Subscribers(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[gameID])
}

// Close disconnects every subscriber. Used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*Conn, 0)
	for _, set := range h.subs {
		for c := range set {
			conns = append(conns, c)
		}
	}
	h.subs = make(map[string]map[*Conn]struct{})
	h.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
	metrics.UpdateLiveSubscribers(0)
}

func (h *Hub) add(gameID string, c *Conn) {
	h.mu.Lock()
	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[*Conn]struct{})
	}
	h.subs[gameID][c] = struct{}{}
	n := h.count()
	h.mu.Unlock()
	metrics.UpdateLiveSubscribers(n)
}

func (h *Hub) remove(gameID string, c *Conn) {
	c.close()
	h.mu.Lock()
	delete(h.subs[gameID], c)
	if len(h.subs[gameID]) == 0 {
		delete(h.subs, gameID)
	}
	n := h.count()
	h.mu.Unlock()
	metrics.UpdateLiveSubscribers(n)
}

// count sums subscribers across games. Callers hold mu.
func (h *Hub) count() int {
	n := 0
	for _, set := range h.subs {
		n += len(set)
	}
	return n
}
