package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message types
const (
	MessageTypeText  = "text"
	MessageTypeFile  = "file"
	MessageTypeImage = "image"
)

// Message is the atomic unit of a conversation. A message is immutable once
// created except for IsRead/ReadAt, which flip exactly once.
//
// Freshly sent messages live in the relay's write-behind buffer before they
// reach this table; a crash forfeits at most one flush interval of them.
type Message struct {
	// UUID stored as text, assigned at creation, never reused
	ID string `gorm:"primaryKey;type:text" json:"id"`

	// Derived from the ordered participant pair plus the optional context
	// entity. Every durable query on this table goes through this column.
	ConversationKey string `gorm:"index;type:text;not null" json:"conversationKey"`

	SenderID   string `gorm:"index;type:text;not null" json:"senderId"`
	ReceiverID string `gorm:"index;type:text;not null" json:"receiverId"`

	// Context entity (product or deal) this thread is scoped to, nil for a
	// context-free direct conversation
	ProductID *string `gorm:"index;type:text" json:"productId"`

	Body string `gorm:"type:text;not null" json:"body"`

	// text, file, image
	Type string `gorm:"type:text;default:'text';not null" json:"type"`

	// Read tracking
	IsRead bool       `gorm:"default:false" json:"isRead"`
	ReadAt *time.Time `json:"readAt"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	// Client-generated id for duplicate collapsing on the client. The relay
	// itself dedupes at read time by ID, not at insert time.
	ClientMessageID *string `gorm:"index;type:text" json:"clientMessageId"`

	// Relations
	Sender   User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver User `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}
