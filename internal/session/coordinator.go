package session

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/M-Abdul-RAFAY/anonymous-chat-app/internal/pubsub"
	"github.com/M-Abdul-RAFAY/anonymous-chat-app/internal/room"
)

// Coordinator is the single consumer of the inbound event topic. Because the
// bus delivers one message at a time, every handler below runs to completion
// before the next event is looked at; the room store is never observed
// mid-mutation. The expiry timers are the only other writers and they go
// through the store's own lock.
type Coordinator struct {
	tracker  *Tracker
	validate *validator.Validate
}

// NewCoordinator creates a coordinator dispatching into the given tracker.
func NewCoordinator(tracker *Tracker) *Coordinator {
	return &Coordinator{
		tracker:  tracker,
		validate: validator.New(),
	}
}

// Start subscribes the coordinator to the inbound topic. It returns once the
// subscription is registered; processing happens on the bus's delivery
// goroutine.
func (c *Coordinator) Start(ctx context.Context, sub pubsub.Subscriber) error {
	return sub.Subscribe(ctx, TopicInbound, c.Handle)
}

// Handle processes one connection event. A malformed or mistimed event is
// logged and dropped; it must never crash the coordinator or touch another
// room's state. The returned error is always nil so the bus never retries.
func (c *Coordinator) Handle(ctx context.Context, msg pubsub.Message) error {
	var env Envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		slog.Warn("Dropping undecodable event", "connID", msg.ConnID, "error", err)
		return nil
	}

	switch env.Event {
	case EventJoinRoom:
		var p JoinRoomPayload
		if !c.decode(env, &p, msg.ConnID) {
			return nil
		}
		c.tracker.Join(msg.ConnID, p)

	case EventSendMessage:
		var m room.Message
		if err := json.Unmarshal(env.Data, &m); err != nil {
			slog.Warn("Dropping undecodable message payload", "connID", msg.ConnID, "error", err)
			return nil
		}
		c.tracker.SendMessage(msg.ConnID, m)

	case EventTyping:
		var p TypingPayload
		if !c.decode(env, &p, msg.ConnID) {
			return nil
		}
		c.tracker.SetTyping(msg.ConnID, p)

	case EventLeaveRoom:
		// The payload's roomId is advisory; the session's own binding is
		// authoritative.
		c.tracker.Leave(msg.ConnID)

	case EventConnectionClosed:
		c.tracker.Disconnect(msg.ConnID)

	default:
		slog.Debug("Ignoring unknown event", "event", env.Event, "connID", msg.ConnID)
	}

	return nil
}

// decode unmarshals and validates an inbound payload, logging and rejecting
// anything structurally invalid.
func (c *Coordinator) decode(env Envelope, out any, connID string) bool {
	if err := json.Unmarshal(env.Data, out); err != nil {
		slog.Warn("Dropping undecodable payload", "event", env.Event, "connID", connID, "error", err)
		return false
	}
	if err := c.validate.Struct(out); err != nil {
		slog.Warn("Dropping invalid payload", "event", env.Event, "connID", connID, "error", err)
		return false
	}
	return true
}
