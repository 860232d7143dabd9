package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishFansOutToRoomAndReceiver(t *testing.T) {
	p := NewPresence()
	r := NewRooms(p)
	key := MakeKey("alice", "bob", "prod_1")

	// bob has the app open but not this conversation
	bobConn := newFakeConn("bob_conn")
	p.Join("bob", bobConn)

	// a third party (bob's second tab) is viewing the room
	tab := newFakeConn("bob_tab")
	p.Join("bob", tab)
	r.JoinRoom(key, tab)

	// alice is viewing her own room
	aliceConn := newFakeConn("alice_conn")
	p.Join("alice", aliceConn)
	r.JoinRoom(key, aliceConn)

	delivered := r.Publish(key, "bob", EventMessageReceived, "hi")

	// room members (alice, bob's tab) plus bob's personal connection,
	// with the tab counted once
	assert.Equal(t, 3, delivered)
	assert.Len(t, bobConn.eventsNamed(EventMessageReceived), 1)
	assert.Len(t, tab.eventsNamed(EventMessageReceived), 1)
	assert.Len(t, aliceConn.eventsNamed(EventMessageReceived), 1)
}

func TestPublishToEmptyRoomOfflineReceiver(t *testing.T) {
	r := NewRooms(NewPresence())
	delivered := r.Publish(MakeKey("alice", "bob", ""), "bob", EventMessageReceived, "hi")
	// Not an error, just nobody there
	assert.Equal(t, 0, delivered)
}

func TestRoomsGarbageCollectedWhenEmpty(t *testing.T) {
	r := NewRooms(NewPresence())
	key := MakeKey("alice", "bob", "")
	c := newFakeConn("c1")

	r.JoinRoom(key, c)
	assert.Equal(t, 1, r.Members(key))

	r.LeaveRoom(key, c)
	assert.Equal(t, 0, r.Members(key))

	r.mu.RLock()
	_, exists := r.rooms[key]
	r.mu.RUnlock()
	assert.False(t, exists)
}

func TestLeaveAllRemovesConnectionEverywhere(t *testing.T) {
	r := NewRooms(NewPresence())
	c := newFakeConn("c1")
	keyA := MakeKey("alice", "bob", "prod_1")
	keyB := MakeKey("alice", "bob", "prod_2")

	r.JoinRoom(keyA, c)
	r.JoinRoom(keyB, c)
	r.LeaveAll(c)

	assert.Equal(t, 0, r.Members(keyA))
	assert.Equal(t, 0, r.Members(keyB))
}
