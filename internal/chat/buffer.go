package chat

import (
	"sync"

	"github.com/shabeebkaip/polymerhub-backend/internal/models"
)

// Buffer is the write-behind queue of not-yet-persisted messages. Enqueue
// never blocks on I/O; the flusher drains it in batches. The buffer owns its
// entries exclusively until a swap hands them to the flusher.
type Buffer struct {
	mu      sync.Mutex
	entries []*models.Message
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// Enqueue appends a message. An enqueue racing a Swap lands in exactly one of
// the two buffers; the mutex makes the swap atomic with respect to appends.
func (b *Buffer) Enqueue(m *models.Message) {
	b.mu.Lock()
	b.entries = append(b.entries, m)
	b.mu.Unlock()
}

// Swap atomically replaces the buffer with an empty one and returns the old
// contents.
func (b *Buffer) Swap() []*models.Message {
	b.mu.Lock()
	out := b.entries
	b.entries = nil
	b.mu.Unlock()
	return out
}

// Requeue prepends a failed batch ahead of anything enqueued since the
// swap. Read-time ordering is by createdAt, so position here does not
// matter for correctness.
func (b *Buffer) Requeue(batch []*models.Message) {
	if len(batch) == 0 {
		return
	}
	b.mu.Lock()
	b.entries = append(batch[:len(batch):len(batch)], b.entries...)
	b.mu.Unlock()
}

// Snapshot returns copies of the buffered messages for one conversation.
// The history reader merges these over the durable page; copies keep it from
// observing later IsRead mutations mid-merge.
func (b *Buffer) Snapshot(key string) []*models.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*models.Message
	for _, m := range b.entries {
		if m.ConversationKey == key {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out
}

// Len reports how many messages are awaiting flush.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
