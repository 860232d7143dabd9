package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresenceJoinLeave(t *testing.T) {
	p := NewPresence()
	c1 := newFakeConn("c1")
	c2 := newFakeConn("c2")

	assert.False(t, p.IsOnline("alice"))

	p.Join("alice", c1)
	p.Join("alice", c2) // second device
	assert.True(t, p.IsOnline("alice"))
	assert.Len(t, p.ConnectionsFor("alice"), 2)

	p.Leave(c1)
	assert.True(t, p.IsOnline("alice"))

	user, offline := p.Leave(c2)
	assert.Equal(t, "alice", user)
	assert.True(t, offline)
	assert.False(t, p.IsOnline("alice"))
	assert.Empty(t, p.ConnectionsFor("alice"))
}

func TestPresenceJoinIdempotentPerConnection(t *testing.T) {
	p := NewPresence()
	c1 := newFakeConn("c1")

	p.Join("alice", c1)
	p.Join("alice", c1)
	assert.Len(t, p.ConnectionsFor("alice"), 1)
}

func TestPresenceUnknownConnectionIsNoop(t *testing.T) {
	p := NewPresence()
	user, offline := p.Leave(newFakeConn("ghost"))
	assert.Empty(t, user)
	assert.False(t, offline)
}

func TestPresenceBroadcastsChanges(t *testing.T) {
	p := NewPresence()
	c1 := newFakeConn("c1")
	p.Join("alice", c1)

	c2 := newFakeConn("c2")
	p.Join("bob", c2)

	// alice's connection saw bob come online
	events := c1.eventsNamed(EventPresenceChanged)
	if assert.Len(t, events, 1) {
		payload := events[0].payload.(map[string]interface{})
		assert.Equal(t, "bob", payload["userId"])
		assert.Equal(t, true, payload["isOnline"])
	}

	p.Leave(c2)
	events = c1.eventsNamed(EventPresenceChanged)
	if assert.Len(t, events, 2) {
		payload := events[1].payload.(map[string]interface{})
		assert.Equal(t, "bob", payload["userId"])
		assert.Equal(t, false, payload["isOnline"])
	}
}

func TestPresenceOnlineUsers(t *testing.T) {
	p := NewPresence()
	p.Join("alice", newFakeConn("c1"))
	p.Join("bob", newFakeConn("c2"))

	assert.ElementsMatch(t, []string{"alice", "bob"}, p.OnlineUsers())
}
