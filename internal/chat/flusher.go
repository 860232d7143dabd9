package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shabeebkaip/polymerhub-backend/internal/models"
	"gorm.io/gorm"
)

// MessageStore is the durable sink the flusher drains into. Kept as an
// interface so tests can inject failing stores.
type MessageStore interface {
	InsertBatch(ctx context.Context, batch []*models.Message) error
}

// GormStore persists message batches through gorm.
type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) InsertBatch(ctx context.Context, batch []*models.Message) error {
	return s.DB.WithContext(ctx).Create(&batch).Error
}

// Flusher drains the write-behind buffer into durable storage on a fixed
// interval and once more on graceful shutdown. A failed batch is requeued
// whole: at-least-once, with read-time dedup by id absorbing the rare
// duplicate from a partially applied batch.
type Flusher struct {
	store    MessageStore
	buffer   *Buffer
	pending  *pendingReads
	interval time.Duration
	clock    func() time.Time
	log      zerolog.Logger

	stop chan struct{}
	done chan struct{}
}

func NewFlusher(store MessageStore, buffer *Buffer, pending *pendingReads, interval time.Duration, log zerolog.Logger) *Flusher {
	return &Flusher{
		store:    store,
		buffer:   buffer,
		pending:  pending,
		interval: interval,
		clock:    time.Now,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background flush loop.
func (f *Flusher) Start() {
	go func() {
		defer close(f.done)
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := f.Flush(context.Background()); err != nil {
					f.log.Error().Err(err).Msg("flush failed, batch requeued")
				}
			case <-f.stop:
				return
			}
		}
	}()
}

// Flush performs one drain pass: swap the buffer, apply pending read marks,
// attempt a single batched insert, requeue the whole batch on failure.
func (f *Flusher) Flush(ctx context.Context) error {
	swapTime := f.clock()
	batch := f.buffer.Swap()
	f.pending.applyAndClear(batch, swapTime)
	if len(batch) == 0 {
		return nil
	}

	if err := f.store.InsertBatch(ctx, batch); err != nil {
		f.buffer.Requeue(batch)
		return err
	}
	f.log.Debug().Int("count", len(batch)).Msg("flushed message batch")
	return nil
}

// Close stops the loop and makes a final synchronous flush attempt bounded
// by ctx. Whatever is still buffered after that is the documented crash-loss
// window; the caller exits regardless.
func (f *Flusher) Close(ctx context.Context) error {
	close(f.stop)
	<-f.done
	return f.Flush(ctx)
}
