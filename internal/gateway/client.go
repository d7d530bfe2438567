package gateway

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

// writeWait is the time allowed to write one message to the peer.
const writeWait = 10 * time.Second

// Client represents a single connected WebSocket client.
type Client struct {
	// ID is the opaque connection identifier, assigned at accept time.
	ID string
	// conn is the underlying WebSocket connection.
	conn *websocket.Conn
	// send is a buffered channel of outbound messages for this client.
	send chan []byte
	// bridge is a reference back to the bridge that manages this client.
	bridge *Bridge
}

// readPump pumps frames from the WebSocket connection into the bridge. It
// runs until the connection closes, then reports the disconnect so the
// coordinator sees it strictly after everything this client sent.
func (c *Client) readPump() {
	defer func() {
		c.bridge.disconnected(c)
		c.conn.Close(websocket.StatusNormalClosure, "Client disconnected")
	}()

	for {
		_, message, err := c.conn.Read(context.Background())
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || websocket.CloseStatus(err) == websocket.StatusGoingAway {
				slog.Info("WebSocket closed normally by client", "connID", c.ID)
			} else if err != io.EOF {
				slog.Error("WebSocket read error", "connID", c.ID, "error", err)
			}
			break
		}

		c.bridge.inbound(c, message)
	}
}

// writePump pumps messages from the client's send channel to the WebSocket
// connection.
func (c *Client) writePump() {
	defer func() {
		c.conn.Close(websocket.StatusNormalClosure, "Server-side cleanup")
	}()

	for {
		message, ok := <-c.send
		if !ok {
			// The bridge closed the channel.
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		err := c.conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			slog.Error("WebSocket write error", "connID", c.ID, "error", err)
			return
		}
	}
}
