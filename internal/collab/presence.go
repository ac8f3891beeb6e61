package collab

import (
	"encoding/json"
	"log/slog"
	"maps"
	"sync"
)

// PresenceManager tracks, per user, where their cursor is and which stroke
// they are drawing. Clients own the cursor; the stroke is set by the hub from
// applied operations.
type PresenceManager struct {
	mu    sync.RWMutex
	users map[string]PresencePayload // userID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{users: make(map[string]PresencePayload)}
}

// Update merges a client-sent presence and returns the stored entry.
func (pm *PresenceManager) Update(userID string, p PresencePayload) PresencePayload {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	p.Drawing = pm.users[userID].Drawing
	pm.users[userID] = p
	return p
}

// SetDrawing records the stroke the user is drawing, "" once finished. It
// reports whether anything changed.
func (pm *PresenceManager) SetDrawing(userID, strokeID string) (PresencePayload, bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	p := pm.users[userID]
	if p.Drawing == strokeID {
		return p, false
	}
	p.Drawing = strokeID
	pm.users[userID] = p
	return p, true
}

// Drawing returns the stroke the user is drawing, if any.
func (pm *PresenceManager) Drawing(userID string) string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.users[userID].Drawing
}

func (pm *PresenceManager) Remove(userID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.users, userID)
}

func (pm *PresenceManager) GetAll() map[string]PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return maps.Clone(pm.users)
}

// StateMessage is the presence.state sent to a joining client.
func (pm *PresenceManager) StateMessage() *Message {
	payload, err := json.Marshal(PresenceStatePayload{Presences: pm.GetAll()})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return &Message{Type: TypePresenceState, Payload: payload}
}
