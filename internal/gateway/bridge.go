package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/M-Abdul-RAFAY/anonymous-chat-app/internal/pubsub"
	"github.com/M-Abdul-RAFAY/anonymous-chat-app/internal/session"
)

// Bridge is the connection gateway: it owns every live WebSocket connection
// and routes frames between those connections and the pub/sub bus. Inbound
// frames go onto the coordinator's topic in arrival order; outbound events
// come back through SendDirect.
type Bridge struct {
	publisher pubsub.Publisher

	mu      sync.RWMutex
	clients map[string]*Client
}

// NewBridge initializes a new Bridge, ready to handle connections.
func NewBridge(pub pubsub.Publisher) *Bridge {
	return &Bridge{
		publisher: pub,
		clients:   make(map[string]*Client),
	}
}

// Handler returns the echo handler that upgrades requests to WebSocket
// connections. Participants are anonymous, so the connection id is minted
// here rather than taken from any credential.
func (b *Bridge) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			InsecureSkipVerify: true, // Rooms are link-shared; any origin may connect.
		})
		if err != nil {
			slog.Error("Failed to upgrade connection to WebSocket", "error", err)
			return err
		}

		client := &Client{
			ID:     uuid.NewString(),
			conn:   conn,
			send:   make(chan []byte, 256),
			bridge: b,
		}

		b.mu.Lock()
		b.clients[client.ID] = client
		b.mu.Unlock()
		slog.Info("New client connected", "connID", client.ID)

		go client.writePump()
		go client.readPump()

		return nil
	}
}

// SendDirect queues a message for a single connection. A connection that
// has already closed, or whose send buffer is full, is skipped; delivery is
// best-effort and never retried.
func (b *Bridge) SendDirect(connID string, payload []byte) {
	// The read lock is held across the send. disconnected closes the send
	// channel under the write lock, so the channel cannot close mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()

	client, ok := b.clients[connID]
	if !ok {
		slog.Debug("Attempted to write to closed connection", "connID", connID)
		return
	}

	select {
	case client.send <- payload:
	default:
		slog.Warn("Client send channel full, dropping message", "connID", connID)
	}
}

// ClientCount returns the number of live connections.
func (b *Bridge) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.clients)
}

// inbound publishes one client frame to the coordinator's topic.
func (b *Bridge) inbound(c *Client, frame []byte) {
	msg := pubsub.Message{
		Topic:   session.TopicInbound,
		ConnID:  c.ID,
		Payload: frame,
		Metadata: map[string]string{
			"received_at": time.Now().UTC().Format(time.RFC3339),
		},
	}
	if err := b.publisher.Publish(context.Background(), msg); err != nil {
		slog.Error("Failed to publish inbound frame", "connID", c.ID, "error", err)
	}
}

// disconnected unregisters the client and tells the coordinator the
// transport closed. Published from the read pump, so it lands on the topic
// after the connection's final frame.
func (b *Bridge) disconnected(c *Client) {
	b.mu.Lock()
	if _, ok := b.clients[c.ID]; ok {
		delete(b.clients, c.ID)
		close(c.send)
	}
	b.mu.Unlock()
	slog.Info("Client disconnected", "connID", c.ID)

	payload, _ := json.Marshal(session.Envelope{Event: session.EventConnectionClosed})
	msg := pubsub.Message{
		Topic:   session.TopicInbound,
		ConnID:  c.ID,
		Payload: payload,
	}
	if err := b.publisher.Publish(context.Background(), msg); err != nil {
		slog.Error("Failed to publish disconnect event", "connID", c.ID, "error", err)
	}
}
