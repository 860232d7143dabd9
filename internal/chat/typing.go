package chat

import (
	"sync"
	"time"
)

// Minimum interval between typing events per sender, to stop keystroke spam
const typingThrottleInterval = 3 * time.Second

type typingThrottle struct {
	mu    sync.Mutex
	last  map[string]time.Time // senderID -> last emit
	clock func() time.Time
}

func newTypingThrottle(clock func() time.Time) *typingThrottle {
	return &typingThrottle{
		last:  make(map[string]time.Time),
		clock: clock,
	}
}

// allow reports whether a typing event from senderID may be emitted now.
func (t *typingThrottle) allow(senderID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock()
	if last, ok := t.last[senderID]; ok && now.Sub(last) < typingThrottleInterval {
		return false
	}
	t.last[senderID] = now
	return true
}
