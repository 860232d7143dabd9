package chat

// Push event names. Fire-and-forget: no acks, no retries at the push layer.
// Clients that miss events while disconnected fall back to history.
const (
	EventMessageReceived = "message.received"
	EventPresenceChanged = "presence.changed"
	EventTypingChanged   = "typing.changed"
	EventOnlineUsers     = "online_users"
	EventNotification    = "notification"
)
