package chat

import "strings"

// Conversation keys partition messages by participant pair and optional
// context entity (product or deal). The pair is ordered lexicographically so
// both sides derive the same key. User and context ids must not contain the
// separator; uuids and the marketplace's legacy ids never do.
const keySeparator = ":"

// MakeKey derives the conversation key for two participants and an optional
// context entity id. MakeKey(a, b, ctx) == MakeKey(b, a, ctx).
func MakeKey(userA, userB, contextID string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	if contextID == "" {
		return userA + keySeparator + userB
	}
	return userA + keySeparator + userB + keySeparator + contextID
}

// ParseKey splits a key into its participants and context id (empty when the
// conversation is context-free). ok is false for malformed keys.
func ParseKey(key string) (userA, userB, contextID string, ok bool) {
	parts := strings.Split(key, keySeparator)
	if len(parts) != 2 && len(parts) != 3 {
		return "", "", "", false
	}
	for _, p := range parts {
		if p == "" {
			return "", "", "", false
		}
	}
	userA, userB = parts[0], parts[1]
	if userA >= userB {
		// Pair must be ordered; equal participants are not a conversation
		return "", "", "", false
	}
	if len(parts) == 3 {
		contextID = parts[2]
	}
	return userA, userB, contextID, true
}

// KeyHasParticipant reports whether userID is one of the key's two parties.
func KeyHasParticipant(key, userID string) bool {
	a, b, _, ok := ParseKey(key)
	return ok && (a == userID || b == userID)
}
