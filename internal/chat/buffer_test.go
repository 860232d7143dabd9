package chat

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shabeebkaip/polymerhub-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func bufMsg(id, key string) *models.Message {
	return &models.Message{ID: id, ConversationKey: key, CreatedAt: time.Now()}
}

func TestBufferEnqueueAndSwap(t *testing.T) {
	b := NewBuffer()
	b.Enqueue(bufMsg("m1", "a:b"))
	b.Enqueue(bufMsg("m2", "a:b"))
	assert.Equal(t, 2, b.Len())

	batch := b.Swap()
	assert.Len(t, batch, 2)
	assert.Equal(t, "m1", batch[0].ID)
	assert.Equal(t, 0, b.Len())

	assert.Empty(t, b.Swap())
}

func TestBufferRequeuePrependsFailedBatch(t *testing.T) {
	b := NewBuffer()
	b.Enqueue(bufMsg("m1", "a:b"))
	failed := b.Swap()

	// Newer traffic arrives while the failed batch is out
	b.Enqueue(bufMsg("m2", "a:b"))
	b.Requeue(failed)

	batch := b.Swap()
	assert.Len(t, batch, 2)
	assert.Equal(t, "m1", batch[0].ID)
	assert.Equal(t, "m2", batch[1].ID)
}

func TestBufferSnapshotFiltersByKeyAndCopies(t *testing.T) {
	b := NewBuffer()
	b.Enqueue(bufMsg("m1", "a:b"))
	b.Enqueue(bufMsg("m2", "a:c"))
	b.Enqueue(bufMsg("m3", "a:b"))

	snap := b.Snapshot("a:b")
	assert.Len(t, snap, 2)
	assert.Equal(t, "m1", snap[0].ID)
	assert.Equal(t, "m3", snap[1].ID)

	// Mutating the snapshot must not touch the buffered original
	snap[0].IsRead = true
	batch := b.Swap()
	assert.False(t, batch[0].IsRead)
}

// An enqueue racing a swap must land in exactly one of the two buffers.
func TestBufferSwapAtomicUnderConcurrentEnqueue(t *testing.T) {
	b := NewBuffer()

	const producers = 8
	const perProducer = 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				b.Enqueue(bufMsg(fmt.Sprintf("p%d_m%d", p, i), "a:b"))
			}
		}(p)
	}

	seen := make(map[string]int)
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	collect := func(batch []*models.Message) {
		for _, m := range batch {
			seen[m.ID]++
		}
	}

	for {
		select {
		case <-done:
			collect(b.Swap())
			assert.Len(t, seen, producers*perProducer)
			for id, n := range seen {
				assert.Equal(t, 1, n, "message %s seen %d times", id, n)
			}
			return
		default:
			collect(b.Swap())
		}
	}
}
