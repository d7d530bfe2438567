package session

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Emitter delivers an already-encoded event to a single connection. The
// WebSocket gateway implements this; delivery is best-effort and a closed
// or lagging connection is simply skipped.
type Emitter interface {
	SendDirect(connID string, payload []byte)
}

// Relay fans events out to every connection currently bound to a room. It
// owns the roomID to connection-set index; the tracker keeps it in sync as
// sessions join and leave.
type Relay struct {
	emitter Emitter

	mu    sync.RWMutex
	rooms map[string]map[string]struct{}
}

// NewRelay creates a relay that delivers through the given emitter.
func NewRelay(emitter Emitter) *Relay {
	return &Relay{
		emitter: emitter,
		rooms:   make(map[string]map[string]struct{}),
	}
}

// Bind adds a connection to a room's fan-out set.
func (r *Relay) Bind(roomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.rooms[roomID]
	if !ok {
		conns = make(map[string]struct{})
		r.rooms[roomID] = conns
	}
	conns[connID] = struct{}{}
}

// Unbind removes a connection from a room's fan-out set.
func (r *Relay) Unbind(roomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conns, ok := r.rooms[roomID]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(r.rooms, roomID)
		}
	}
}

// Members returns the number of connections bound to a room.
func (r *Relay) Members(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms[roomID])
}

// EmitToRoom delivers an event to every connection bound to the room.
// An excluding id may be passed to skip one connection; typing signals use
// this so the typist never sees their own indicator echoed back.
func (r *Relay) EmitToRoom(roomID, event string, data any, excluding string) {
	payload, err := encode(event, data)
	if err != nil {
		slog.Error("Failed to encode room event", "event", event, "roomID", roomID, "error", err)
		return
	}

	r.mu.RLock()
	conns := make([]string, 0, len(r.rooms[roomID]))
	for connID := range r.rooms[roomID] {
		if connID == excluding {
			continue
		}
		conns = append(conns, connID)
	}
	r.mu.RUnlock()

	for _, connID := range conns {
		r.emitter.SendDirect(connID, payload)
	}
}

// EmitToConnection delivers an event to a single connection, bound or not.
// Used for room-not-found errors and the post-join welcome payload.
func (r *Relay) EmitToConnection(connID, event string, data any) {
	payload, err := encode(event, data)
	if err != nil {
		slog.Error("Failed to encode direct event", "event", event, "connID", connID, "error", err)
		return
	}
	r.emitter.SendDirect(connID, payload)
}

func encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
