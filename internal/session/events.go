package session

import (
	"encoding/json"

	"github.com/M-Abdul-RAFAY/anonymous-chat-app/internal/room"
)

// TopicInbound is the bus topic carrying every connection event the gateway
// receives, in arrival order. The coordinator is its single subscriber.
const TopicInbound = "room.events.inbound"

// Inbound event names, matching the client protocol.
const (
	EventJoinRoom    = "join-room"
	EventSendMessage = "send-message"
	EventTyping      = "typing"
	EventLeaveRoom   = "leave-room"

	// EventConnectionClosed is synthesized by the gateway when the transport
	// closes. It is published on the same topic as the connection's own
	// events so it is processed after anything the client sent.
	EventConnectionClosed = "connection-closed"
)

// Outbound event names.
const (
	EventError          = "error"
	EventRoomJoined     = "room-joined"
	EventUserJoined     = "user-joined"
	EventReceiveMessage = "receive-message"
	EventUserTyping     = "user-typing"
	EventUserLeft       = "user-left"
)

// Envelope is the wire framing for both directions: an event name plus its
// JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinRoomPayload asks to join an existing room.
type JoinRoomPayload struct {
	RoomID string `json:"roomId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
}

// TypingPayload signals a transient typing-state change. No state is kept;
// last write wins on the receiving side.
type TypingPayload struct {
	RoomID   string `json:"roomId" validate:"required"`
	UserID   string `json:"userId" validate:"required"`
	IsTyping bool   `json:"isTyping"`
}

// LeaveRoomPayload asks to leave the sender's current room. The roomId is
// advisory: the server detaches the session from whichever room it is
// actually bound to and never trusts the field, so a stale or wrong id
// cannot touch another room.
type LeaveRoomPayload struct {
	RoomID string `json:"roomId"`
}

// ErrorPayload is unicast to a requester whose request could not be served.
type ErrorPayload struct {
	Message string `json:"message"`
}

// RoomJoinedPayload is the welcome reply unicast to a joiner: the room's
// full message history for chronological replay, plus the current count.
type RoomJoinedPayload struct {
	RoomID    string         `json:"roomId"`
	UserID    string         `json:"userId"`
	Messages  []room.Message `json:"messages"`
	UserCount int            `json:"userCount"`
}

// UserJoinedPayload is broadcast to the whole room, joiner included, so
// every client's member count is driven by the same event stream.
type UserJoinedPayload struct {
	UserID    string `json:"userId"`
	UserCount int    `json:"userCount"`
}

// UserTypingPayload is broadcast to everyone in the room except the typist.
type UserTypingPayload struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// UserLeftPayload is broadcast to the remaining members after a leave or
// disconnect.
type UserLeftPayload struct {
	UserCount int `json:"userCount"`
}
