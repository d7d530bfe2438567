package session

import (
	"log/slog"
	"sync"

	"github.com/M-Abdul-RAFAY/anonymous-chat-app/internal/room"
)

// Tracker binds each live connection to at most one room. It exclusively
// owns the connection-to-room mapping; the store only carries the aggregate
// member count. All mutating methods are invoked from the coordinator's
// single event loop, so each one runs to completion before the next.
type Tracker struct {
	store     *room.Store
	lifecycle *room.Lifecycle
	relay     *Relay

	mu       sync.RWMutex
	sessions map[string]string // connID -> roomID
}

// NewTracker creates a session tracker wired to the given store, lifecycle
// manager and relay.
func NewTracker(store *room.Store, lifecycle *room.Lifecycle, relay *Relay) *Tracker {
	return &Tracker{
		store:     store,
		lifecycle: lifecycle,
		relay:     relay,
		sessions:  make(map[string]string),
	}
}

// Join moves a session into a room. An unknown room id yields an error
// event to the requester and no state change. A session that is already
// bound implicitly leaves its previous room first, so member counts are
// never leaked by a double join.
func (t *Tracker) Join(connID string, p JoinRoomPayload) {
	if prev, ok := t.binding(connID); ok {
		t.leaveRoom(connID, prev)
	}

	if _, err := t.store.Get(p.RoomID); err != nil {
		t.relay.EmitToConnection(connID, EventError, ErrorPayload{Message: "Room not found"})
		return
	}

	count, err := t.store.IncrementMembers(p.RoomID)
	if err != nil {
		// Deleted between the lookup and the increment; same answer as an
		// unknown room.
		t.relay.EmitToConnection(connID, EventError, ErrorPayload{Message: "Room not found"})
		return
	}
	if count == 1 {
		t.lifecycle.Cancel(p.RoomID)
	}

	t.mu.Lock()
	t.sessions[connID] = p.RoomID
	t.mu.Unlock()
	t.relay.Bind(p.RoomID, connID)

	t.relay.EmitToRoom(p.RoomID, EventUserJoined, UserJoinedPayload{
		UserID:    p.UserID,
		UserCount: count,
	}, "")

	snap, err := t.store.Get(p.RoomID)
	if err != nil {
		return
	}
	t.relay.EmitToConnection(connID, EventRoomJoined, RoomJoinedPayload{
		RoomID:    p.RoomID,
		UserID:    p.UserID,
		Messages:  snap.Messages,
		UserCount: snap.MemberCount,
	})

	slog.Info("User joined room", "userID", p.UserID, "roomID", p.RoomID, "userCount", count)
}

// SendMessage appends the message to the sender's room and broadcasts it to
// the full membership, sender included. Messages from unbound sessions, or
// racing a room deletion, are silently dropped.
func (t *Tracker) SendMessage(connID string, msg room.Message) {
	roomID, ok := t.binding(connID)
	if !ok {
		return
	}

	if err := t.store.AppendMessage(roomID, msg); err != nil {
		return
	}

	t.relay.EmitToRoom(roomID, EventReceiveMessage, msg, "")
	slog.Debug("Message relayed", "roomID", roomID, "sender", msg.Sender)
}

// SetTyping broadcasts the typing flag to the rest of the sender's room,
// sender excluded. Nothing is persisted.
func (t *Tracker) SetTyping(connID string, p TypingPayload) {
	roomID, ok := t.binding(connID)
	if !ok {
		return
	}

	t.relay.EmitToRoom(roomID, EventUserTyping, UserTypingPayload{
		UserID:   p.UserID,
		IsTyping: p.IsTyping,
	}, connID)
}

// Leave detaches the session from its current room, notifying the remaining
// members. Leaving while unbound is a no-op.
func (t *Tracker) Leave(connID string) {
	roomID, ok := t.binding(connID)
	if !ok {
		return
	}
	t.leaveRoom(connID, roomID)
}

// Disconnect handles a transport-initiated close: an implicit leave when
// bound, then the session is destroyed.
func (t *Tracker) Disconnect(connID string) {
	if roomID, ok := t.binding(connID); ok {
		t.leaveRoom(connID, roomID)
	}

	t.mu.Lock()
	delete(t.sessions, connID)
	t.mu.Unlock()
}

// Bound reports the room a connection is currently a member of.
func (t *Tracker) Bound(connID string) (string, bool) {
	return t.binding(connID)
}

// BoundCount returns the number of sessions currently bound to a room.
func (t *Tracker) BoundCount(roomID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, id := range t.sessions {
		if id == roomID {
			n++
		}
	}
	return n
}

func (t *Tracker) binding(connID string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	roomID, ok := t.sessions[connID]
	return roomID, ok
}

// leaveRoom performs the shared leave/disconnect bookkeeping: unbind,
// decrement, notify, and arm the expiry timer when the room empties. A room
// that vanished under us (raced with expiry) needs nothing beyond the
// unbind.
func (t *Tracker) leaveRoom(connID, roomID string) {
	t.mu.Lock()
	delete(t.sessions, connID)
	t.mu.Unlock()
	t.relay.Unbind(roomID, connID)

	count, err := t.store.DecrementMembers(roomID)
	if err != nil {
		return
	}

	t.relay.EmitToRoom(roomID, EventUserLeft, UserLeftPayload{UserCount: count}, "")
	slog.Info("User left room", "roomID", roomID, "userCount", count)

	if count == 0 {
		t.lifecycle.Schedule(roomID)
	}
}
