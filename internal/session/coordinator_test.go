package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M-Abdul-RAFAY/anonymous-chat-app/internal/pubsub"
	"github.com/M-Abdul-RAFAY/anonymous-chat-app/internal/room"
)

func newCoordinatorFixture(t *testing.T) (*fixture, *Coordinator) {
	t.Helper()
	f := newFixture(t)
	return f, NewCoordinator(f.tracker)
}

func inbound(t *testing.T, connID, event string, data any) pubsub.Message {
	t.Helper()

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	payload, err := json.Marshal(Envelope{Event: event, Data: raw})
	require.NoError(t, err)

	return pubsub.Message{Topic: TopicInbound, ConnID: connID, Payload: payload}
}

func TestCoordinator_DispatchesJoin(t *testing.T) {
	f, c := newCoordinatorFixture(t)
	roomID := f.store.CreateRoom()

	err := c.Handle(context.Background(), inbound(t, "conn-a", EventJoinRoom,
		JoinRoomPayload{RoomID: roomID, UserID: "alice"}))
	require.NoError(t, err)

	bound, ok := f.tracker.Bound("conn-a")
	require.True(t, ok)
	assert.Equal(t, roomID, bound)
}

func TestCoordinator_DispatchesMessageAndTyping(t *testing.T) {
	f, c := newCoordinatorFixture(t)
	roomID := f.store.CreateRoom()
	ctx := context.Background()

	require.NoError(t, c.Handle(ctx, inbound(t, "conn-a", EventJoinRoom,
		JoinRoomPayload{RoomID: roomID, UserID: "alice"})))
	require.NoError(t, c.Handle(ctx, inbound(t, "conn-b", EventJoinRoom,
		JoinRoomPayload{RoomID: roomID, UserID: "bob"})))

	require.NoError(t, c.Handle(ctx, inbound(t, "conn-a", EventSendMessage,
		room.Message{ID: "m1", Text: "hi", Sender: "alice"})))

	snap, err := f.store.Get(roomID)
	require.NoError(t, err)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "hi", snap.Messages[0].Text)

	require.NoError(t, c.Handle(ctx, inbound(t, "conn-a", EventTyping,
		TypingPayload{RoomID: roomID, UserID: "alice", IsTyping: true})))

	var p UserTypingPayload
	name := f.emitter.decodeLast(t, "conn-b", &p)
	assert.Equal(t, EventUserTyping, name)
}

func TestCoordinator_DispatchesLeaveAndDisconnect(t *testing.T) {
	f, c := newCoordinatorFixture(t)
	roomID := f.store.CreateRoom()
	ctx := context.Background()

	require.NoError(t, c.Handle(ctx, inbound(t, "conn-a", EventJoinRoom,
		JoinRoomPayload{RoomID: roomID, UserID: "alice"})))
	require.NoError(t, c.Handle(ctx, inbound(t, "conn-a", EventLeaveRoom,
		LeaveRoomPayload{RoomID: roomID})))

	_, bound := f.tracker.Bound("conn-a")
	assert.False(t, bound)

	require.NoError(t, c.Handle(ctx, inbound(t, "conn-b", EventJoinRoom,
		JoinRoomPayload{RoomID: roomID, UserID: "bob"})))
	require.NoError(t, c.Handle(ctx, inbound(t, "conn-b", EventConnectionClosed, nil)))

	_, bound = f.tracker.Bound("conn-b")
	assert.False(t, bound)
	f.assertCountInvariant(t, roomID)
}

func TestCoordinator_LeaveIgnoresPayloadRoomID(t *testing.T) {
	f, c := newCoordinatorFixture(t)
	bound := f.store.CreateRoom()
	other := f.store.CreateRoom()
	ctx := context.Background()

	require.NoError(t, c.Handle(ctx, inbound(t, "conn-a", EventJoinRoom,
		JoinRoomPayload{RoomID: bound, UserID: "alice"})))
	require.NoError(t, c.Handle(ctx, inbound(t, "conn-b", EventJoinRoom,
		JoinRoomPayload{RoomID: other, UserID: "bob"})))

	// A leave naming the wrong room still detaches from the bound one and
	// leaves the named room untouched.
	require.NoError(t, c.Handle(ctx, inbound(t, "conn-a", EventLeaveRoom,
		LeaveRoomPayload{RoomID: other})))

	_, stillBound := f.tracker.Bound("conn-a")
	assert.False(t, stillBound)

	boundSnap, err := f.store.Get(bound)
	require.NoError(t, err)
	assert.Equal(t, 0, boundSnap.MemberCount)

	otherSnap, err := f.store.Get(other)
	require.NoError(t, err)
	assert.Equal(t, 1, otherSnap.MemberCount)
	f.assertCountInvariant(t, other)
}

func TestCoordinator_MalformedEventsNeverError(t *testing.T) {
	f, c := newCoordinatorFixture(t)
	roomID := f.store.CreateRoom()
	ctx := context.Background()

	cases := map[string]pubsub.Message{
		"garbage frame":    {Topic: TopicInbound, ConnID: "conn-x", Payload: []byte("{not json")},
		"unknown event":    inbound(t, "conn-x", "self-destruct", nil),
		"join no payload":  {Topic: TopicInbound, ConnID: "conn-x", Payload: []byte(`{"event":"join-room"}`)},
		"join bad payload": inbound(t, "conn-x", EventJoinRoom, map[string]any{"roomId": 42}),
		"join missing ids": inbound(t, "conn-x", EventJoinRoom, JoinRoomPayload{RoomID: roomID}),
		"typing bad":       inbound(t, "conn-x", EventTyping, TypingPayload{}),
	}

	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, c.Handle(ctx, msg), "handler must swallow malformed input")
		})
	}

	// Nothing leaked into the room state.
	snap, err := f.store.Get(roomID)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.MemberCount)
	assert.Empty(t, snap.Messages)
	_, bound := f.tracker.Bound("conn-x")
	assert.False(t, bound)
}

func TestCoordinator_MistimedEventDoesNotCorruptOtherRooms(t *testing.T) {
	f, c := newCoordinatorFixture(t)
	stable := f.store.CreateRoom()
	doomed := f.store.CreateRoom()
	ctx := context.Background()

	require.NoError(t, c.Handle(ctx, inbound(t, "conn-a", EventJoinRoom,
		JoinRoomPayload{RoomID: stable, UserID: "alice"})))
	require.NoError(t, c.Handle(ctx, inbound(t, "conn-b", EventJoinRoom,
		JoinRoomPayload{RoomID: doomed, UserID: "bob"})))

	// The doomed room vanishes under its member, e.g. expiry raced the tab.
	f.store.Delete(doomed)
	require.NoError(t, c.Handle(ctx, inbound(t, "conn-b", EventSendMessage,
		room.Message{ID: "m1", Text: "void", Sender: "bob"})))
	require.NoError(t, c.Handle(ctx, inbound(t, "conn-b", EventLeaveRoom,
		LeaveRoomPayload{RoomID: doomed})))

	snap, err := f.store.Get(stable)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.MemberCount)
	assert.Empty(t, snap.Messages)
}
