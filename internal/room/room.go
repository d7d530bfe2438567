package room

import "time"

// Message is a single chat message. The id and timestamp are assigned by the
// sending client before transmission, not by the server; the Encrypted flag
// is carried for clients that opt into end-to-end encryption and is opaque
// to the coordinator.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Encrypted bool      `json:"encrypted,omitempty"`
}

// record is the store's internal state for one room. It is never handed out
// directly; callers get a Snapshot instead.
type record struct {
	memberCount int
	messages    []Message
}

// Snapshot is a point-in-time copy of a room's observable state.
type Snapshot struct {
	ID          string
	MemberCount int
	Messages    []Message
}
