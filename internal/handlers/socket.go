package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/shabeebkaip/polymerhub-backend/internal/chat"
	"github.com/shabeebkaip/polymerhub-backend/pkg/logger"
	"github.com/shabeebkaip/polymerhub-backend/pkg/utils"
)

// NewSocketServer wires the socket.io surface to the relay. All connection
// events (connect, join, send, typing, disconnect) flow through the single
// socket.io dispatch path into the injected relay; nothing here touches
// package-level state.
func NewSocketServer(relay *chat.Relay) *socketio.Server {
	log := logger.With("socket")

	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&websocket.Transport{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
			&polling.Transport{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
		},
	})

	server.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext("")
		url := s.URL()

		// Token from query param (most reliable for the ws handshake)
		token := url.Query().Get("token")
		if token == "" {
			token = url.Query().Get("auth_token") // Fallback
		}
		if token == "" {
			log.Warn().Str("socket", s.ID()).Msg("connection rejected: no token")
			return fmt.Errorf("authentication required")
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			log.Warn().Str("socket", s.ID()).Msg("connection rejected: invalid token")
			return fmt.Errorf("invalid token")
		}

		userId := claims.UserID
		// Store userId in socket context for O(1) lookup on later events
		s.SetContext(userId)

		relay.Connect(userId, s)
		s.Emit(chat.EventOnlineUsers, relay.Presence().OnlineUsers())

		log.Info().Str("socket", s.ID()).Str("user", userId).Msg("socket authenticated")
		return nil
	})

	// Client opened a conversation view. The key is derived server-side from
	// the authenticated user, the counterpart and the optional context.
	server.OnEvent("/", "join_conversation", func(s socketio.Conn, data map[string]interface{}) {
		userId, _ := s.Context().(string)
		otherId, _ := data["userId"].(string)
		contextId, _ := data["productId"].(string)
		if userId == "" || otherId == "" {
			return
		}
		relay.JoinConversation(chat.MakeKey(userId, otherId, contextId), s)
	})

	server.OnEvent("/", "leave_conversation", func(s socketio.Conn, data map[string]interface{}) {
		userId, _ := s.Context().(string)
		otherId, _ := data["userId"].(string)
		contextId, _ := data["productId"].(string)
		if userId == "" || otherId == "" {
			return
		}
		relay.LeaveConversation(chat.MakeKey(userId, otherId, contextId), s)
	})

	// Socket send path. Same relay entry point as the REST handler: the push
	// to online peers happens before the message is durable.
	server.OnEvent("/", "send_message", func(s socketio.Conn, data map[string]interface{}) {
		senderId, _ := s.Context().(string)
		receiverId, _ := data["receiverId"].(string)
		body, _ := data["body"].(string)
		msgType, _ := data["type"].(string)
		if senderId == "" || receiverId == "" {
			return
		}

		var productID *string
		if pid, ok := data["productId"].(string); ok && pid != "" {
			productID = &pid
		}
		var clientMessageID *string
		if cid, ok := data["clientMessageId"].(string); ok && cid != "" {
			clientMessageID = &cid
		}

		contextId := ""
		if productID != nil {
			contextId = *productID
		}

		msg, err := relay.Send(chat.SendInput{
			SenderID:        senderId,
			ReceiverID:      receiverId,
			ConversationKey: chat.MakeKey(senderId, receiverId, contextId),
			Body:            body,
			Type:            msgType,
			ProductID:       productID,
			ClientMessageID: clientMessageID,
		})
		if err != nil {
			s.Emit("send_error", map[string]interface{}{
				"error":           err.Error(),
				"clientMessageId": clientMessageID,
			})
			return
		}

		// Echo to the sender's own connection for multi-device sync
		s.Emit(chat.EventMessageReceived, map[string]interface{}{"message": *msg})
	})

	server.OnEvent("/", "typing", func(s socketio.Conn, data map[string]interface{}) {
		senderId, _ := s.Context().(string)
		receiverId, _ := data["receiverId"].(string)
		contextId, _ := data["productId"].(string)
		if senderId == "" || receiverId == "" {
			return
		}
		relay.Typing(senderId, receiverId, chat.MakeKey(senderId, receiverId, contextId))
	})

	server.OnEvent("/", "get_online_users", func(s socketio.Conn, msg string) {
		s.Emit(chat.EventOnlineUsers, relay.Presence().OnlineUsers())
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		relay.Disconnect(s)
		log.Info().Str("socket", s.ID()).Str("reason", reason).Msg("socket closed")
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		log.Error().Err(e).Msg("socket error")
	})

	return server
}

// SocketHandler wraps the socket.io server for gin
func SocketHandler(server *socketio.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		server.ServeHTTP(c.Writer, c.Request)
	}
}
