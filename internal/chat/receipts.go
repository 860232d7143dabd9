package chat

import (
	"context"
	"sync"
	"time"

	"github.com/shabeebkaip/polymerhub-backend/internal/models"
	"gorm.io/gorm"
)

type pendKey struct {
	conversationKey string
	readerID        string
}

// pendingReads remembers mark-read actions that happened while messages for
// that reader were still sitting in the buffer. The flusher applies a mark to
// buffered messages created at or before the mark time, so a message sent
// after the reader marked the thread is not swallowed as read.
type pendingReads struct {
	mu    sync.Mutex
	marks map[pendKey]time.Time
}

func newPendingReads() *pendingReads {
	return &pendingReads{marks: make(map[pendKey]time.Time)}
}

func (p *pendingReads) mark(conversationKey, readerID string, at time.Time) {
	p.mu.Lock()
	k := pendKey{conversationKey, readerID}
	if prev, ok := p.marks[k]; !ok || at.After(prev) {
		p.marks[k] = at
	}
	p.mu.Unlock()
}

// applyAndClear flips IsRead on batch entries covered by a mark, then drops
// every mark at or before swapTime. Any message created before a mark was
// already enqueued when the mark landed, so by this swap it is either in the
// batch (handled here) or already durable (handled by the batched update in
// MarkRead). Marks recorded after the swap survive for the next tick.
func (p *pendingReads) applyAndClear(batch []*models.Message, swapTime time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range batch {
		at, ok := p.marks[pendKey{m.ConversationKey, m.ReceiverID}]
		if ok && !m.CreatedAt.After(at) && !m.IsRead {
			readAt := at
			m.IsRead = true
			m.ReadAt = &readAt
		}
	}
	for k, at := range p.marks {
		if !at.After(swapTime) {
			delete(p.marks, k)
		}
	}
}

// Receipts marks messages addressed to a reader as read when the reader
// actively views the conversation.
type Receipts struct {
	db      *gorm.DB
	pending *pendingReads
	clock   func() time.Time
}

// MarkRead sets every durable unread message in the conversation addressed
// to readerID to read, in one batched update, and records a pending mark so
// still-buffered messages are caught on their flush. The mark goes in first:
// a flush landing between the two steps would otherwise insert the buffered
// rows unread and then clear the mark before it ever applied. The mark is
// idempotent against rows the update also covers. Idempotent overall: a
// second call reports zero updated rows.
func (r *Receipts) MarkRead(ctx context.Context, conversationKey, readerID string) (int64, error) {
	now := r.clock()
	r.pending.mark(conversationKey, readerID, now)

	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_key = ? AND receiver_id = ? AND is_read = ?", conversationKey, readerID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
