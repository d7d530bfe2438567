package session

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// captureEmitter implements Emitter for testing, recording every delivery
// per connection in order.
type captureEmitter struct {
	mu     sync.Mutex
	events map[string][]Envelope
}

func newCaptureEmitter() *captureEmitter {
	return &captureEmitter{events: make(map[string][]Envelope)}
}

func (e *captureEmitter) SendDirect(connID string, payload []byte) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		panic("captureEmitter: bad envelope: " + err.Error())
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.events[connID] = append(e.events[connID], env)
}

// eventsFor returns the events delivered to one connection so far.
func (e *captureEmitter) eventsFor(connID string) []Envelope {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Envelope, len(e.events[connID]))
	copy(out, e.events[connID])
	return out
}

// names returns just the event names delivered to one connection.
func (e *captureEmitter) names(connID string) []string {
	events := e.eventsFor(connID)
	out := make([]string, len(events))
	for i, env := range events {
		out[i] = env.Event
	}
	return out
}

// decodeLast unmarshals the most recent event for a connection into out and
// returns its name.
func (e *captureEmitter) decodeLast(t *testing.T, connID string, out any) string {
	t.Helper()

	events := e.eventsFor(connID)
	require.NotEmpty(t, events, "no events delivered to %s", connID)
	last := events[len(events)-1]
	require.NoError(t, json.Unmarshal(last.Data, out))
	return last.Event
}
