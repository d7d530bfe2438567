package room

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ErrRoomNotFound is returned for any operation against a room id that is
// unknown or has already been reclaimed.
var ErrRoomNotFound = errors.New("room not found")

// Store holds all active rooms. It is the only shared mutable resource in
// the coordinator; every accessor takes the store lock, so each call
// observes and leaves the map in a consistent state.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*record
}

// NewStore creates an empty room store.
func NewStore() *Store {
	return &Store{
		rooms: make(map[string]*record),
	}
}

// CreateRoom allocates a fresh room with no members and no history and
// returns its id. It never fails.
func (s *Store) CreateRoom() string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rooms[id] = &record{}
	return id
}

// Get returns a copy of the room's observable state.
func (s *Store) Get(id string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[id]
	if !ok {
		return Snapshot{}, ErrRoomNotFound
	}

	messages := make([]Message, len(r.messages))
	copy(messages, r.messages)

	return Snapshot{
		ID:          id,
		MemberCount: r.memberCount,
		Messages:    messages,
	}, nil
}

// Delete removes the room and its message history unconditionally.
// Deleting an absent room is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rooms, id)
}

// DeleteIfEmpty removes the room only if it still has no members. The check
// and the delete happen under one lock acquisition, which is what makes the
// expiry timer's fire-time re-check safe against a concurrent rejoin.
// It reports whether the room was deleted.
func (s *Store) DeleteIfEmpty(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[id]
	if !ok {
		// Already handled elsewhere; not an error.
		return false
	}
	if r.memberCount != 0 {
		return false
	}

	delete(s.rooms, id)
	return true
}

// AppendMessage appends a message to the room's history. Messages are
// immutable once appended and the insertion order is the replay order for
// late joiners.
func (s *Store) AppendMessage(id string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[id]
	if !ok {
		return ErrRoomNotFound
	}

	r.messages = append(r.messages, msg)
	return nil
}

// IncrementMembers bumps the room's member count and returns the new count.
func (s *Store) IncrementMembers(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[id]
	if !ok {
		return 0, ErrRoomNotFound
	}

	r.memberCount++
	return r.memberCount, nil
}

// DecrementMembers drops the room's member count and returns the new count.
// The count clamps at zero: decrementing an empty room means the session
// tracker's join/leave pairing invariant was violated, so it is logged
// loudly instead of going negative.
func (s *Store) DecrementMembers(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[id]
	if !ok {
		return 0, ErrRoomNotFound
	}

	if r.memberCount == 0 {
		slog.Error("Decrement on empty room, join/leave pairing broken", "roomID", id)
		return 0, nil
	}

	r.memberCount--
	return r.memberCount, nil
}

// Len returns the number of active rooms.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.rooms)
}
