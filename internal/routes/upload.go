package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/shabeebkaip/polymerhub-backend/internal/handlers"
	"github.com/shabeebkaip/polymerhub-backend/internal/middleware"
)

func RegisterUploadRoutes(r gin.IRouter) {
	upload := r.Group("/upload")
	upload.Use(middleware.AuthMiddleware())
	{
		upload.POST("", handlers.UploadAttachment)
	}
}
