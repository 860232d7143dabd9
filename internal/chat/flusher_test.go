package chat

import (
	"context"
	"testing"
	"time"

	"github.com/shabeebkaip/polymerhub-backend/internal/models"
	"github.com/shabeebkaip/polymerhub-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore fails the first failures inserts, then delegates.
type failingStore struct {
	inner    MessageStore
	failures int
	calls    int
}

func (s *failingStore) InsertBatch(ctx context.Context, batch []*models.Message) error {
	s.calls++
	if s.calls <= s.failures {
		return assert.AnError
	}
	return s.inner.InsertBatch(ctx, batch)
}

func flushMsg(id, key, receiver string, at time.Time) *models.Message {
	return &models.Message{
		ID:              id,
		ConversationKey: key,
		SenderID:        "sender",
		ReceiverID:      receiver,
		Body:            "body " + id,
		Type:            models.MessageTypeText,
		CreatedAt:       at,
	}
}

func TestFlushPersistsBatchOnce(t *testing.T) {
	db := setupChatTestDB(t)
	buffer := NewBuffer()
	pending := newPendingReads()
	f := NewFlusher(&GormStore{DB: db}, buffer, pending, time.Minute, logger.With("test"))

	now := time.Now()
	buffer.Enqueue(flushMsg("m1", "a:b", "b", now))
	buffer.Enqueue(flushMsg("m2", "a:b", "b", now.Add(time.Millisecond)))

	require.NoError(t, f.Flush(context.Background()))
	assert.Equal(t, 0, buffer.Len())

	var count int64
	db.Model(&models.Message{}).Count(&count)
	assert.EqualValues(t, 2, count)

	// A second pass over an empty buffer writes nothing
	require.NoError(t, f.Flush(context.Background()))
	db.Model(&models.Message{}).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestFlushRequeuesFailedBatchThenSucceeds(t *testing.T) {
	db := setupChatTestDB(t)
	buffer := NewBuffer()
	pending := newPendingReads()
	store := &failingStore{inner: &GormStore{DB: db}, failures: 1}
	f := NewFlusher(store, buffer, pending, time.Minute, logger.With("test"))

	base := time.Now()
	buffer.Enqueue(flushMsg("m1", "a:b", "b", base))
	buffer.Enqueue(flushMsg("m2", "a:b", "b", base.Add(time.Millisecond)))

	// First attempt fails; nothing durable, nothing lost
	assert.Error(t, f.Flush(context.Background()))
	assert.Equal(t, 2, buffer.Len())
	var count int64
	db.Model(&models.Message{}).Count(&count)
	assert.EqualValues(t, 0, count)

	// Traffic enqueued after the failure flushes with the retried batch
	buffer.Enqueue(flushMsg("m3", "a:b", "b", base.Add(2*time.Millisecond)))
	require.NoError(t, f.Flush(context.Background()))

	var stored []models.Message
	db.Order("created_at ASC").Find(&stored)
	require.Len(t, stored, 3)
	assert.Equal(t, "m1", stored[0].ID)
	assert.Equal(t, "m2", stored[1].ID)
	assert.Equal(t, "m3", stored[2].ID)
}

func TestFlushAppliesPendingReadMarks(t *testing.T) {
	db := setupChatTestDB(t)
	buffer := NewBuffer()
	pending := newPendingReads()
	f := NewFlusher(&GormStore{DB: db}, buffer, pending, time.Minute, logger.With("test"))

	base := time.Now()
	buffer.Enqueue(flushMsg("m1", "a:b", "b", base))

	// b marks the conversation read while m1 is still buffered; a message
	// sent after the mark must stay unread
	markAt := base.Add(time.Second)
	pending.mark("a:b", "b", markAt)
	buffer.Enqueue(flushMsg("m2", "a:b", "b", markAt.Add(time.Second)))

	require.NoError(t, f.Flush(context.Background()))

	var m1, m2 models.Message
	require.NoError(t, db.First(&m1, "id = ?", "m1").Error)
	require.NoError(t, db.First(&m2, "id = ?", "m2").Error)
	assert.True(t, m1.IsRead)
	assert.NotNil(t, m1.ReadAt)
	assert.False(t, m2.IsRead)
}

func TestPendingMarksClearedAfterApply(t *testing.T) {
	buffer := NewBuffer()
	pending := newPendingReads()

	pending.mark("a:b", "b", time.Now())
	pending.applyAndClear(buffer.Swap(), time.Now())

	pending.mu.Lock()
	defer pending.mu.Unlock()
	assert.Empty(t, pending.marks)
}

func TestFlusherCloseRunsFinalFlush(t *testing.T) {
	db := setupChatTestDB(t)
	buffer := NewBuffer()
	f := NewFlusher(&GormStore{DB: db}, buffer, newPendingReads(), time.Hour, logger.With("test"))
	f.Start()

	// Interval is an hour: only the shutdown flush can persist these
	base := time.Now()
	for i := 0; i < 5; i++ {
		buffer.Enqueue(flushMsg(string(rune('a'+i)), "a:b", "b", base.Add(time.Duration(i)*time.Millisecond)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.Close(ctx))

	var count int64
	db.Model(&models.Message{}).Count(&count)
	assert.EqualValues(t, 5, count)
}
