package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/shabeebkaip/polymerhub-backend/internal/chat"
	"github.com/shabeebkaip/polymerhub-backend/internal/database"
	"github.com/shabeebkaip/polymerhub-backend/internal/models"
	"github.com/shabeebkaip/polymerhub-backend/internal/services"
	"github.com/shabeebkaip/polymerhub-backend/pkg/errors"
)

// ChatHandler exposes the relay over REST. It holds its collaborators
// explicitly so tests can wire isolated instances.
type ChatHandler struct {
	Relay   *chat.Relay
	Catalog *services.Catalog
}

func NewChatHandler(relay *chat.Relay, catalog *services.Catalog) *ChatHandler {
	return &ChatHandler{Relay: relay, Catalog: catalog}
}

// SendMessage handles POST /chat/messages. The push to online recipients
// happens inside the relay before the message is durable.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	senderID := c.MustGet("userId").(string)

	var req struct {
		ReceiverID      string  `json:"receiverId" binding:"required"`
		Body            string  `json:"body" binding:"required"`
		Type            string  `json:"type"`
		ProductID       *string `json:"productId"`
		ConversationKey string  `json:"conversationKey"`
		ClientMessageID *string `json:"clientMessageId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	key := req.ConversationKey
	if key == "" {
		contextID := ""
		if req.ProductID != nil {
			contextID = *req.ProductID
		}
		key = chat.MakeKey(senderID, req.ReceiverID, contextID)
	}

	msg, err := h.Relay.Send(chat.SendInput{
		SenderID:        senderID,
		ReceiverID:      req.ReceiverID,
		ConversationKey: key,
		Body:            req.Body,
		Type:            req.Type,
		ProductID:       req.ProductID,
		ClientMessageID: req.ClientMessageID,
	})
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			c.JSON(appErr.Code, gin.H{"error": appErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	if database.Redis != nil {
		database.CacheInvalidate("conversations:" + senderID)
		database.CacheInvalidate("conversations:" + req.ReceiverID)
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// GetMessages handles GET /chat/messages?userId=&productId=&cursor=&limit=.
// History merges durable rows with the relay's unflushed tail.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	currentUserID := c.MustGet("userId").(string)
	otherUserID := c.Query("userId")

	if otherUserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId required"})
		return
	}

	key := chat.MakeKey(currentUserID, otherUserID, c.Query("productId"))

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	messages, nextCursor, err := h.Relay.History(c.Request.Context(), key, c.Query("cursor"), limit)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			c.JSON(appErr.Code, gin.H{"error": appErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":   messages,
		"nextCursor": nextCursor,
	})
}

// conversationSummary is one row of the conversation list.
type conversationSummary struct {
	ConversationKey string         `json:"conversationKey"`
	Partner         models.User    `json:"partner"`
	LastMessage     models.Message `json:"lastMessage"`
	UnreadCount     int64          `json:"unreadCount"`
}

// GetConversations handles GET /chat/conversations: recent threads with
// unread counts. Durable rows only; a thread whose very first message is
// still buffered shows up after the next flush. Cached briefly in Redis.
func (h *ChatHandler) GetConversations(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	cacheKey := "conversations:" + userID

	var cached []conversationSummary
	if database.Redis != nil && database.CacheGet(cacheKey, &cached) == nil {
		c.JSON(http.StatusOK, gin.H{"conversations": cached})
		return
	}

	// The aggregate only drives the ORDER BY; scanning it would trip over
	// driver-dependent column affinity, so fetch the keys alone.
	var keys []string
	err := database.DB.Model(&models.Message{}).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Group("conversation_key").
		Order("MAX(created_at) DESC").
		Limit(50).
		Pluck("conversation_key", &keys).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}

	conversations := lo.FilterMap(keys, func(key string, _ int) (conversationSummary, bool) {
		var last models.Message
		if err := database.DB.
			Where("conversation_key = ?", key).
			Order("created_at DESC, id DESC").
			Preload("Sender").Preload("Receiver").
			First(&last).Error; err != nil {
			return conversationSummary{}, false
		}

		var unread int64
		database.DB.Model(&models.Message{}).
			Where("conversation_key = ? AND receiver_id = ? AND is_read = ?", key, userID, false).
			Count(&unread)

		partner := last.Sender
		if last.SenderID == userID {
			partner = last.Receiver
		}

		return conversationSummary{
			ConversationKey: key,
			Partner:         partner,
			LastMessage:     last,
			UnreadCount:     unread,
		}, true
	})

	if database.Redis != nil {
		database.CacheSet(cacheKey, conversations, 30*time.Second)
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// MarkRead handles POST /chat/read: marks everything addressed to the caller
// in the conversation as read.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	currentUserID := c.MustGet("userId").(string)

	var req struct {
		UserID    string `json:"userId" binding:"required"` // counterpart
		ProductID string `json:"productId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	key := chat.MakeKey(currentUserID, req.UserID, req.ProductID)
	updated, err := h.Relay.MarkRead(c.Request.Context(), key, currentUserID)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			c.JSON(appErr.Code, gin.H{"error": appErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark read"})
		return
	}

	if database.Redis != nil {
		database.CacheInvalidate("conversations:" + currentUserID)
	}

	c.JSON(http.StatusOK, gin.H{"markedRead": updated})
}

// GetCounterpart handles GET /chat/counterpart?productId=|dealId=: asks the
// catalog collaborator who sits on the other side before opening a room.
func (h *ChatHandler) GetCounterpart(c *gin.Context) {
	requesterID := c.MustGet("userId").(string)

	var (
		counterpart *services.Counterpart
		err         error
	)
	switch {
	case c.Query("productId") != "":
		counterpart, err = h.Catalog.ResolveCounterpartByProduct(c.Request.Context(), c.Query("productId"), requesterID)
	case c.Query("dealId") != "":
		counterpart, err = h.Catalog.ResolveCounterpartByDeal(c.Request.Context(), c.Query("dealId"), requesterID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId or dealId required"})
		return
	}
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			c.JSON(appErr.Code, gin.H{"error": appErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve counterpart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"counterpart":     counterpart,
		"conversationKey": chat.MakeKey(requesterID, counterpart.CounterpartID, counterpart.ContextID),
		"online":          h.Relay.Presence().IsOnline(counterpart.CounterpartID),
	})
}

// GetOnlineUsers handles GET /chat/online: which of the given users are
// connected right now. Advisory only.
func (h *ChatHandler) GetOnlineUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"online": h.Relay.Presence().OnlineUsers(),
	})
}
