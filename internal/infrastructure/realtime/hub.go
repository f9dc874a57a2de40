package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub is the registry of live authenticated channels: one connection per user
// identity. It is injectable and lifecycle-scoped so tests can create and
// destroy one per run.
//
// Semantics:
//   - Bind is last-writer-wins. A re-authentication on a new channel replaces
//     the registry entry; the previous channel is not closed, it simply stops
//     receiving pushes. Re-authenticating a channel under a different identity
//     releases the mapping it held before.
//   - Remove evicts the entry only if it still points at that exact channel
//     (matched by Connection.ID), so a late close of a replaced channel cannot
//     evict a newer, valid registration.
//   - Push is best-effort: it reports whether a live channel accepted the
//     payload and never retries.
type Hub struct {
	mu     sync.RWMutex
	byUser map[string]*Connection
	log    *zap.Logger
}

// NewHub constructs an empty registry. A nil logger is replaced by a no-op.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		byUser: make(map[string]*Connection),
		log:    log,
	}
}

// Bind registers conn as the live channel for userID. A channel that
// re-authenticates under a different identity releases its previous mapping,
// so pushes for the old user never land on a socket the new user owns.
func (h *Hub) Bind(userID string, conn *Connection) {
	prevUser := conn.setUserID(userID)

	h.mu.Lock()
	if prevUser != "" && prevUser != userID {
		if cur, ok := h.byUser[prevUser]; ok && cur.ID == conn.ID {
			delete(h.byUser, prevUser)
		}
	}
	prev := h.byUser[userID]
	h.byUser[userID] = conn
	h.mu.Unlock()

	if prev != nil && prev.ID != conn.ID {
		h.log.Info("channel replaced",
			zap.String("user_id", userID),
			zap.String("old_conn", prev.ID),
			zap.String("new_conn", conn.ID))
	}
}

// Remove drops conn from the registry if it is still the current channel for
// its user. Safe to call for connections that never authenticated.
func (h *Hub) Remove(conn *Connection) {
	userID := conn.UserID()
	if userID == "" {
		return
	}
	h.mu.Lock()
	if cur, ok := h.byUser[userID]; ok && cur.ID == conn.ID {
		delete(h.byUser, userID)
	}
	h.mu.Unlock()
}

// Push delivers payload to the current channel of userID, reporting whether a
// live channel accepted it.
func (h *Hub) Push(userID string, payload []byte) bool {
	h.mu.RLock()
	conn := h.byUser[userID]
	h.mu.RUnlock()
	if conn == nil {
		return false
	}
	if err := conn.Send(payload); err != nil {
		h.log.Debug("push failed", zap.String("user_id", userID), zap.Error(err))
		return false
	}
	return true
}

// Online reports whether userID currently has a registered channel.
func (h *Hub) Online(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.byUser[userID] != nil
}

// Close terminates all tracked connections and clears the registry.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*Connection, 0, len(h.byUser))
	for _, conn := range h.byUser {
		conns = append(conns, conn)
	}
	h.byUser = make(map[string]*Connection)
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close(websocket.CloseGoingAway, "hub shutdown")
	}
}
