// Package dispatch delivers lifecycle and bid events to connected
// subscribers. Delivery is best-effort: a disconnected recipient misses the
// event and reconciles via a subsequent read.
package dispatch

import (
	"log/slog"
	"sync"
)

// Envelope is the wire format pushed to websocket subscribers.
type Envelope struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

// wsConn is the subset of *websocket.Conn the hub needs. Kept narrow so
// tests can substitute a recording connection.
type wsConn interface {
	WriteJSON(v any) error
	Close() error
}

// Session is one open websocket connection belonging to a user. Writes are
// serialized per session; gorilla connections allow only one concurrent writer.
type Session struct {
	UserID string

	conn wsConn
	mu   sync.Mutex
}

// Send writes one envelope to the session.
func (s *Session) Send(env Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(env)
}

// Close closes the underlying connection.
func (s *Session) Close() error {
	return s.conn.Close()
}

// Hub tracks the open sessions of every connected user. A user may hold
// several sessions (multiple devices); an event addressed to the user goes
// to all of them.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Session]struct{}
	log      *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]map[*Session]struct{}),
		log:      log,
	}
}

// Add registers a connection for a user and returns its session.
func (h *Hub) Add(userID string, conn wsConn) *Session {
	s := &Session{UserID: userID, conn: conn}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[userID] == nil {
		h.sessions[userID] = make(map[*Session]struct{})
	}
	h.sessions[userID][s] = struct{}{}
	return s
}

// Remove unregisters a session. Safe to call more than once.
func (h *Hub) Remove(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[s.UserID]
	if !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.sessions, s.UserID)
	}
}

// Send pushes an envelope to every open session of the user and returns the
// number of successful writes. A write failure closes that session only.
func (h *Hub) Send(userID string, env Envelope) int {
	h.mu.RLock()
	targets := make([]*Session, 0, len(h.sessions[userID]))
	for s := range h.sessions[userID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range targets {
		if err := s.Send(env); err != nil {
			h.log.Warn("ws send failed, dropping session",
				"user_id", userID, "event", env.Event, "err", err)
			_ = s.Close()
			h.Remove(s)
			continue
		}
		delivered++
	}
	return delivered
}

// Connected reports whether the user has at least one open session.
func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID]) > 0
}

// SessionCount returns the total number of open sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.sessions {
		n += len(set)
	}
	return n
}
