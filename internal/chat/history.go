package chat

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shabeebkaip/polymerhub-backend/internal/models"
	"gorm.io/gorm"
)

// History answers "messages for conversation X before cursor Y" by merging
// the durable store with the still-buffered tail for the same key. Buffered
// entries have no durable offset yet, so cursors are (createdAt, id) pairs,
// never row offsets.
type History struct {
	db       *gorm.DB
	buffer   *Buffer
	pageSize int
}

// EncodeCursor renders a pagination cursor from a message.
func EncodeCursor(m *models.Message) string {
	return fmt.Sprintf("%d_%s", m.CreatedAt.UnixNano(), m.ID)
}

// ParseCursor is the inverse of EncodeCursor.
func ParseCursor(cursor string) (time.Time, string, error) {
	nanos, id, found := strings.Cut(cursor, "_")
	if !found || id == "" {
		return time.Time{}, "", fmt.Errorf("malformed cursor %q", cursor)
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("malformed cursor %q", cursor)
	}
	return time.Unix(0, n), id, nil
}

// Read returns up to limit messages strictly older than the cursor (newest
// page when the cursor is empty), sorted by createdAt ascending. Durable and
// buffered copies can briefly overlap in the window between a flush landing
// and the swap completing; duplicates are dropped by id with the durable copy
// kept as canonical. nextCursor is set when a further page may exist.
func (h *History) Read(ctx context.Context, conversationKey, cursor string, limit int) ([]models.Message, string, error) {
	if limit <= 0 || limit > 200 {
		limit = h.pageSize
	}

	var before time.Time
	var beforeID string
	if cursor != "" {
		var err error
		before, beforeID, err = ParseCursor(cursor)
		if err != nil {
			return nil, "", err
		}
	}

	q := h.db.WithContext(ctx).
		Where("conversation_key = ?", conversationKey)
	if cursor != "" {
		q = q.Where("created_at < ? OR (created_at = ? AND id < ?)", before, before, beforeID)
	}

	var durable []models.Message
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&durable).Error; err != nil {
		return nil, "", err
	}

	merged := make([]models.Message, 0, len(durable))
	seen := make(map[string]bool, len(durable))
	for _, m := range durable {
		merged = append(merged, m)
		seen[m.ID] = true
	}

	for _, m := range h.buffer.Snapshot(conversationKey) {
		if seen[m.ID] {
			continue
		}
		if cursor != "" && !olderThan(m, before, beforeID) {
			continue
		}
		merged = append(merged, *m)
		seen[m.ID] = true
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].ID < merged[j].ID
		}
		return merged[i].CreatedAt.Before(merged[j].CreatedAt)
	})

	// Keep the newest `limit` of the merged window
	if len(merged) > limit {
		merged = merged[len(merged)-limit:]
	}

	nextCursor := ""
	if len(merged) == limit && limit > 0 {
		nextCursor = EncodeCursor(&merged[0])
	}
	return merged, nextCursor, nil
}

func olderThan(m *models.Message, before time.Time, beforeID string) bool {
	if m.CreatedAt.Before(before) {
		return true
	}
	return m.CreatedAt.Equal(before) && m.ID < beforeID
}
