// Package chat is the real-time conversation relay: presence, conversation
// rooms, the write-behind buffer with its background flusher, history reads
// that overlay the unflushed tail, and read receipts.
//
// Live delivery is at-most-once (fire-and-forget push, no acks); durable
// delivery is at-least-once (failed batches are requeued and retried whole).
// The two guarantees are independent: a recipient gets the push before the
// message is durable, and a crash before flush loses at most one flush
// interval of messages. That loss window is deliberate and should be watched
// operationally, not papered over.
package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shabeebkaip/polymerhub-backend/internal/models"
	"github.com/shabeebkaip/polymerhub-backend/pkg/errors"
	"github.com/shabeebkaip/polymerhub-backend/pkg/logger"
	"gorm.io/gorm"
)

const DefaultFlushInterval = 10 * time.Second

// Options tune a Relay. Zero values fall back to defaults; Store and Clock
// exist for tests.
type Options struct {
	FlushInterval   time.Duration
	HistoryPageSize int
	Store           MessageStore
	Clock           func() time.Time
}

// Relay owns every relay component. It is constructed explicitly and injected
// where needed, with no package-level state, so tests can spin up isolated
// instances and tear them down.
type Relay struct {
	presence *Presence
	rooms    *Rooms
	buffer   *Buffer
	pending  *pendingReads
	flusher  *Flusher
	history  *History
	receipts *Receipts
	typing   *typingThrottle
	clock    func() time.Time
	log      zerolog.Logger
}

// New wires a relay against a database handle.
func New(db *gorm.DB, opts Options) *Relay {
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}
	if opts.HistoryPageSize <= 0 {
		opts.HistoryPageSize = 50
	}
	if opts.Store == nil {
		opts.Store = &GormStore{DB: db}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	log := logger.With("relay")
	presence := NewPresence()
	buffer := NewBuffer()
	pending := newPendingReads()

	r := &Relay{
		presence: presence,
		rooms:    NewRooms(presence),
		buffer:   buffer,
		pending:  pending,
		flusher:  NewFlusher(opts.Store, buffer, pending, opts.FlushInterval, log),
		history:  &History{db: db, buffer: buffer, pageSize: opts.HistoryPageSize},
		receipts: &Receipts{db: db, pending: pending, clock: opts.Clock},
		typing:   newTypingThrottle(opts.Clock),
		clock:    opts.Clock,
		log:      log,
	}
	r.flusher.clock = opts.Clock
	return r
}

// Start launches the background flusher.
func (r *Relay) Start() {
	r.flusher.Start()
}

// Close stops the flusher and makes the final synchronous flush attempt,
// bounded by ctx. After Close returns the process may exit; anything the
// final flush could not persist is gone.
func (r *Relay) Close(ctx context.Context) error {
	return r.flusher.Close(ctx)
}

// Connect registers a live connection for a user.
func (r *Relay) Connect(userID string, conn Conn) {
	r.presence.Join(userID, conn)
}

// Disconnect removes a connection from presence and every room. A connection
// leaving mid-flush has no effect on the in-flight flush.
func (r *Relay) Disconnect(conn Conn) {
	r.rooms.LeaveAll(conn)
	r.presence.Leave(conn)
}

// JoinConversation subscribes a connection to a conversation's room.
func (r *Relay) JoinConversation(conversationKey string, conn Conn) {
	r.rooms.JoinRoom(conversationKey, conn)
}

// LeaveConversation unsubscribes a connection from a room.
func (r *Relay) LeaveConversation(conversationKey string, conn Conn) {
	r.rooms.LeaveRoom(conversationKey, conn)
}

// Presence exposes the registry for read-side consumers (socket handlers,
// notification fan-out).
func (r *Relay) Presence() *Presence {
	return r.presence
}

// SendInput is a send request as handed over by the API layer, which has
// already established identity and authorization for the conversation.
type SendInput struct {
	SenderID        string
	ReceiverID      string
	ConversationKey string
	Body            string
	Type            string
	ProductID       *string
	ClientMessageID *string
}

// Send validates the request, creates the message, appends it to the
// write-behind buffer and pushes it to live subscribers, in that order, so
// an online peer sees the message before it is durable. Validation failures
// surface synchronously; nothing after the enqueue can fail the sender.
func (r *Relay) Send(in SendInput) (*models.Message, error) {
	if in.Type == "" {
		in.Type = models.MessageTypeText
	}
	if in.SenderID == "" || in.ReceiverID == "" {
		return nil, errors.BadRequest("sender and receiver are required")
	}
	if in.SenderID == in.ReceiverID {
		return nil, errors.BadRequest("cannot message yourself")
	}

	_, _, contextID, ok := ParseKey(in.ConversationKey)
	if !ok {
		return nil, errors.BadRequest("malformed conversation key")
	}
	if MakeKey(in.SenderID, in.ReceiverID, contextID) != in.ConversationKey {
		return nil, errors.BadRequest("conversation key does not match participants")
	}

	body, err := SanitizeBody(in.Body, in.Type)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:              uuid.New().String(),
		ConversationKey: in.ConversationKey,
		SenderID:        in.SenderID,
		ReceiverID:      in.ReceiverID,
		ProductID:       in.ProductID,
		Body:            body,
		Type:            in.Type,
		CreatedAt:       r.clock(),
		ClientMessageID: in.ClientMessageID,
	}

	r.buffer.Enqueue(msg)

	// Everything handed out past this point is a detached copy. The buffer
	// owns msg exclusively until flush; the flusher mutates IsRead on it and
	// must not race the caller's serializer or the emit.
	out := *msg
	delivered := r.rooms.Publish(in.ConversationKey, in.ReceiverID, EventMessageReceived, map[string]interface{}{
		"message": out,
	})
	r.log.Debug().
		Str("conversation", in.ConversationKey).
		Int("delivered", delivered).
		Msg("message relayed")

	return &out, nil
}

// History reads a page of the conversation, durable rows overlaid with the
// buffered tail.
func (r *Relay) History(ctx context.Context, conversationKey, cursor string, limit int) ([]models.Message, string, error) {
	if _, _, _, ok := ParseKey(conversationKey); !ok {
		return nil, "", errors.BadRequest("malformed conversation key")
	}
	return r.history.Read(ctx, conversationKey, cursor, limit)
}

// MarkRead marks every message addressed to readerID in the conversation as
// read and notifies the counterpart's live connections.
func (r *Relay) MarkRead(ctx context.Context, conversationKey, readerID string) (int64, error) {
	if !KeyHasParticipant(conversationKey, readerID) {
		return 0, errors.BadRequest("reader is not part of this conversation")
	}
	updated, err := r.receipts.MarkRead(ctx, conversationKey, readerID)
	if err != nil {
		return 0, err
	}

	// Notify even when zero durable rows changed: the unread messages may
	// all still be buffered, covered by the pending mark at flush.
	a, b, _, _ := ParseKey(conversationKey)
	counterpart := a
	if counterpart == readerID {
		counterpart = b
	}
	for _, c := range r.presence.ConnectionsFor(counterpart) {
		c.Emit("message_read", map[string]interface{}{
			"conversationKey": conversationKey,
			"readerId":        readerID,
		})
	}
	return updated, nil
}

// Typing relays a throttled typing.changed event to the receiver's
// connections. Not an error when the receiver is offline.
func (r *Relay) Typing(senderID, receiverID, conversationKey string) {
	if !r.typing.allow(senderID) {
		return
	}
	payload := map[string]interface{}{
		"userId":          senderID,
		"conversationKey": conversationKey,
		"expiresAt":       r.clock().Add(4 * time.Second).Unix(), // auto-expire on client
	}
	for _, c := range r.presence.ConnectionsFor(receiverID) {
		c.Emit(EventTypingChanged, payload)
	}
}

// Notify pushes an arbitrary notification to a user's live connections.
// Used by the surrounding marketplace (deal updates etc.) to piggyback on
// the relay's presence.
func (r *Relay) Notify(userID string, payload map[string]interface{}) {
	for _, c := range r.presence.ConnectionsFor(userID) {
		c.Emit(EventNotification, payload)
	}
}

// Buffered reports how many messages await flush, for health reporting.
func (r *Relay) Buffered() int {
	return r.buffer.Len()
}

// Flush forces one drain pass. Exposed for the health endpoint's debug mode
// and tests.
func (r *Relay) Flush(ctx context.Context) error {
	return r.flusher.Flush(ctx)
}
