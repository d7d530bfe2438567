package room

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultGracePeriod is how long an empty room survives before it is
// reclaimed. A room that is merely between connections (everyone closed the
// tab, someone re-opens the link) stays reachable for this long.
const DefaultGracePeriod = time.Hour

// Lifecycle enforces the deferred-deletion policy for empty rooms. When a
// room's membership drops to zero a timer is scheduled; when membership
// becomes positive again the timer is cancelled. Cancellation alone is
// race-prone (the timer may already be firing on its own goroutine), so the
// firing path always re-checks the count through Store.DeleteIfEmpty before
// deleting anything.
type Lifecycle struct {
	store *Store
	grace time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewLifecycle creates a lifecycle manager for the given store. A
// non-positive grace duration falls back to DefaultGracePeriod.
func NewLifecycle(store *Store, grace time.Duration) *Lifecycle {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	return &Lifecycle{
		store:  store,
		grace:  grace,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arms the deletion timer for a room that just became empty.
// Scheduling twice for the same room resets the timer.
func (l *Lifecycle) Schedule(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if t, ok := l.timers[id]; ok {
		t.Stop()
	}
	l.timers[id] = time.AfterFunc(l.grace, func() {
		l.expire(id)
	})
	slog.Debug("Scheduled room expiry", "roomID", id, "grace", l.grace)
}

// Cancel disarms any pending deletion for a room that was rejoined.
// Cancelling a room with no pending timer is a no-op.
func (l *Lifecycle) Cancel(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if t, ok := l.timers[id]; ok {
		t.Stop()
		delete(l.timers, id)
		slog.Debug("Cancelled room expiry", "roomID", id)
	}
}

// Pending reports whether a deletion timer is currently armed for the room.
func (l *Lifecycle) Pending(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.timers[id]
	return ok
}

// Shutdown stops all outstanding timers. Rooms are not deleted; the whole
// store is volatile anyway.
func (l *Lifecycle) Shutdown() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, t := range l.timers {
		t.Stop()
		delete(l.timers, id)
	}
}

// expire runs on the timer goroutine. The membership re-check and the
// delete are one atomic store operation; a rejoin that raced the timer
// leaves the room untouched.
func (l *Lifecycle) expire(id string) {
	l.mu.Lock()
	delete(l.timers, id)
	l.mu.Unlock()

	if l.store.DeleteIfEmpty(id) {
		slog.Info("Room removed due to inactivity", "roomID", id)
	}
}
