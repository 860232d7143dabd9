package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeKeyOrdersParticipants(t *testing.T) {
	assert.Equal(t, MakeKey("alice", "bob", ""), MakeKey("bob", "alice", ""))
	assert.Equal(t, "alice:bob", MakeKey("bob", "alice", ""))
}

func TestMakeKeyContextPartitionsConversations(t *testing.T) {
	plain := MakeKey("alice", "bob", "")
	productA := MakeKey("alice", "bob", "prod_a")
	productB := MakeKey("alice", "bob", "prod_b")

	assert.NotEqual(t, plain, productA)
	assert.NotEqual(t, productA, productB)
	assert.Equal(t, "alice:bob:prod_a", productA)
}

func TestParseKey(t *testing.T) {
	a, b, ctx, ok := ParseKey("alice:bob:prod_a")
	assert.True(t, ok)
	assert.Equal(t, "alice", a)
	assert.Equal(t, "bob", b)
	assert.Equal(t, "prod_a", ctx)

	a, b, ctx, ok = ParseKey("alice:bob")
	assert.True(t, ok)
	assert.Equal(t, "alice", a)
	assert.Equal(t, "bob", b)
	assert.Empty(t, ctx)
}

func TestParseKeyRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"alice",
		"alice:bob:ctx:extra",
		"bob:alice",   // out of order
		"alice:alice", // self-conversation
		":bob",
		"alice::ctx",
	}
	for _, key := range cases {
		_, _, _, ok := ParseKey(key)
		assert.False(t, ok, "expected %q to be rejected", key)
	}
}

func TestKeyHasParticipant(t *testing.T) {
	key := MakeKey("alice", "bob", "prod_a")
	assert.True(t, KeyHasParticipant(key, "alice"))
	assert.True(t, KeyHasParticipant(key, "bob"))
	assert.False(t, KeyHasParticipant(key, "mallory"))
	assert.False(t, KeyHasParticipant(key, "prod_a"))
}
