// Package realtime pushes record-change notifications to connected clients
// so an open logbook view can refresh without polling.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event describes a change to the backup logbook.
type Event struct {
	Type   string `json:"type"`
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
}

// RecordEvent builds the event broadcast after a record mutation.
// Action is one of "created", "updated", "deleted".
func RecordEvent(action, id string) Event {
	return Event{
		Type:   "backup_" + action,
		Entity: "backup",
		Action: action,
		ID:     id,
	}
}

// Hub maintains the set of active connections and fans events out to them.
type Hub struct {
	mu     sync.RWMutex
	conns  map[*conn]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		conns:  make(map[*conn]struct{}),
		logger: logger,
	}
}

func (h *Hub) register(c *conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *conn) {
	h.mu.Lock()
	if _, ok := h.conns[c]; ok {
		delete(h.conns, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends an event to every connected client. A client whose send
// buffer is full misses the event instead of blocking the mutation path.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.conns {
		select {
		case c.send <- data:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
