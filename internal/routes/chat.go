package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/shabeebkaip/polymerhub-backend/internal/handlers"
	"github.com/shabeebkaip/polymerhub-backend/internal/middleware"
)

func RegisterChatRoutes(r gin.IRouter, h *handlers.ChatHandler) {
	chat := r.Group("/chat")
	chat.Use(middleware.AuthMiddleware())
	{
		chat.GET("/conversations", h.GetConversations)
		chat.GET("/messages", h.GetMessages) // ?userId=&productId=&cursor=&limit=
		chat.POST("/messages", middleware.ChatRateLimit(), h.SendMessage)
		chat.POST("/read", h.MarkRead)
		chat.GET("/counterpart", h.GetCounterpart) // ?productId= | ?dealId=
		chat.GET("/online", h.GetOnlineUsers)
	}
}
