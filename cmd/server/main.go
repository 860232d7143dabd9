package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shabeebkaip/polymerhub-backend/internal/chat"
	"github.com/shabeebkaip/polymerhub-backend/internal/config"
	"github.com/shabeebkaip/polymerhub-backend/internal/database"
	"github.com/shabeebkaip/polymerhub-backend/internal/handlers"
	"github.com/shabeebkaip/polymerhub-backend/internal/middleware"
	"github.com/shabeebkaip/polymerhub-backend/internal/migrations"
	"github.com/shabeebkaip/polymerhub-backend/internal/models"
	"github.com/shabeebkaip/polymerhub-backend/internal/routes"
	"github.com/shabeebkaip/polymerhub-backend/internal/services"
	"github.com/shabeebkaip/polymerhub-backend/pkg/logger"
)

func main() {
	// 0. Load Config & Initialize Logger
	config.LoadConfig()

	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env)

	logger.Info().Str("environment", env).Msg("Starting PolymerHub Backend...")

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. Connect Database & Redis
	database.Connect()
	database.InitRedis()

	// 2. Migrations: tables first, then versioned index/extension migrations
	logger.Info().Msg("Running database migrations...")
	tableModels := []interface{}{
		&models.User{},
		&models.Product{},
		&models.Deal{},
		&models.Message{},
	}
	for _, m := range tableModels {
		if err := database.DB.AutoMigrate(m); err != nil {
			logger.Fatal().Err(err).Msgf("Failed to migrate table for %T", m)
		}
	}
	if err := migrations.NewMigrator(database.DB).Run(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
	logger.Info().Msg("Database migrations complete")

	// 3. Construct the relay and its collaborators. Explicit construction,
	// no singletons: the socket server and REST handlers share this instance.
	relay := chat.New(database.DB, chat.Options{
		FlushInterval:   time.Duration(config.AppConfig.ChatFlushSeconds) * time.Second,
		HistoryPageSize: config.AppConfig.ChatHistoryPageSize,
	})
	relay.Start()

	catalog := &services.Catalog{DB: database.DB}
	chatHandler := handlers.NewChatHandler(relay, catalog)

	// 4. Setup Router
	r := gin.New()
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	// Exempt /socket.io from rate limiting
	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/socket.io/") {
			c.Next()
			return
		}
		middleware.GeneralRateLimit()(c)
	})

	// 5. Register Routes
	api := r.Group("/api")
	{
		routes.RegisterChatRoutes(api, chatHandler)
		routes.RegisterUploadRoutes(api)
	}

	// Health check with DB, Redis and relay status
	r.GET("/health", func(c *gin.Context) {
		dbStatus := "ok"
		redisStatus := "ok"

		sqlDB, err := database.DB.DB()
		if err != nil || sqlDB.Ping() != nil {
			dbStatus = "error"
		}

		if database.Redis != nil {
			if _, err := database.Redis.Ping(context.Background()).Result(); err != nil {
				redisStatus = "error"
			}
		} else {
			redisStatus = "not configured"
		}

		status := "ok"
		if dbStatus != "ok" {
			status = "degraded"
		}

		c.JSON(200, gin.H{
			"status": status,
			"checks": gin.H{
				"database": dbStatus,
				"redis":    redisStatus,
				// nonzero across many probes means the flusher is falling behind
				"bufferedMessages": relay.Buffered(),
			},
		})
	})

	// Socket.io surface
	socketServer := handlers.NewSocketServer(relay)
	go func() {
		if err := socketServer.Serve(); err != nil {
			logger.Error().Err(err).Msg("socket.io serve failed")
		}
	}()
	defer socketServer.Close()

	r.GET("/socket.io/*any", handlers.SocketHandler(socketServer))
	r.POST("/socket.io/*any", handlers.SocketHandler(socketServer))

	// 6. Start Server with graceful shutdown
	port := config.AppConfig.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", port).Str("env", env).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server gracefully...")

	// Give outstanding requests 10 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server forced to shutdown")
	}

	// Final synchronous flush of the write-behind buffer, bounded. Whatever
	// this cannot persist is the accepted crash-loss window.
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := relay.Close(flushCtx); err != nil {
		logger.Error().Err(err).Int("lost", relay.Buffered()).Msg("Final flush incomplete")
	}

	logger.Info().Msg("Server exited gracefully")
}
