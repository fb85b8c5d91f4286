package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emanuuele/girls-chat-api/internal/config"
	"github.com/emanuuele/girls-chat-api/internal/events"
	"github.com/emanuuele/girls-chat-api/internal/handler"
	"github.com/emanuuele/girls-chat-api/internal/middleware"
	"github.com/emanuuele/girls-chat-api/internal/proxy"
	"github.com/emanuuele/girls-chat-api/internal/push"
	appredis "github.com/emanuuele/girls-chat-api/internal/redis"
	"github.com/emanuuele/girls-chat-api/internal/repository"
	"github.com/emanuuele/girls-chat-api/internal/services"
	"github.com/emanuuele/girls-chat-api/internal/storage"
	appws "github.com/emanuuele/girls-chat-api/internal/websocket"
	"github.com/emanuuele/girls-chat-api/pkg/database"
	"github.com/emanuuele/girls-chat-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	log := logger.New(cfg.AppMode)
	logger.SetGlobalLogger(log)
	defer log.Logger.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Errorf("database connection failed: %v", err)
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Errorf("migration failed: %v", err)
		os.Exit(1)
	}

	redisClient := appredis.NewClient(appredis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	deviceTokenRepo := repository.NewDeviceTokenRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	// Redis-backed infrastructure
	publisher := appredis.NewPublisher(redisClient)
	subscriber := appredis.NewSubscriber(redisClient)
	presence := appredis.NewPresenceStore(redisClient, 5*time.Minute)
	limiter := appredis.NewRateLimiter(redisClient, cfg.MessageRateLimit, time.Minute)

	// Optional avatar storage; profile picture uploads are rejected without it.
	var blobs services.BlobStore
	if cfg.S3Bucket != "" {
		s3Client, err := storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
		})
		if err != nil {
			log.Errorf("s3 client init failed: %v", err)
			os.Exit(1)
		}
		blobs = s3Client
	}

	// Services
	access := proxy.NewAccessControl(chatRepo)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, time.Duration(cfg.JWTExpiryMin)*time.Minute)
	userService := services.NewUserService(userRepo, blobs)
	chatService := services.NewChatService(db, chatRepo, userRepo, messageRepo, nil)
	messageService := services.NewMessageService(db, messageRepo, chatRepo, outboxRepo, notificationRepo, chatService, access, limiter, chatService.Bus(), log)
	notificationService := services.NewNotificationService(notificationRepo)
	pushClient := push.NewClient(cfg.ExpoPushURL, cfg.ExpoAccessToken)
	pushService := services.NewPushService(deviceTokenRepo, pushClient, log)

	// WebSocket hub and its Redis bridge
	hub := appws.NewHub()
	go hub.Run(ctx)

	bridge := appws.NewRedisBridge(subscriber, hub)
	go func() {
		if err := bridge.Run(ctx, []string{events.ChannelPattern}); err != nil && ctx.Err() == nil {
			log.Errorf("redis bridge stopped: %v", err)
		}
	}()

	// Outbox dispatcher
	worker := services.NewOutboxWorker(outboxRepo, publisher, presence, pushService, userRepo, log, 200*time.Millisecond, 100)
	worker.Start(ctx)
	defer worker.Stop()

	// HTTP layer
	if cfg.AppMode == logger.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.ErrorHandler(log))

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	chatHandler := handler.NewChatHandler(chatService)
	messageHandler := handler.NewMessageHandler(messageService)
	deviceHandler := handler.NewDeviceHandler(pushService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	wsHandler := appws.NewHandler(authService, messageService, hub, presence, log)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(authService))
		authed.Use(middleware.ExpoTokenMiddleware(pushService, log))
		{
			authed.GET("/users/me", userHandler.Me)
			authed.PATCH("/users/me", userHandler.UpdateProfile)
			authed.POST("/users/me/avatar", userHandler.UploadAvatar)
			authed.GET("/users", userHandler.List)

			authed.POST("/chats", chatHandler.Create)
			authed.GET("/chats", chatHandler.List)
			authed.GET("/chats/:chatId", chatHandler.Show)
			authed.GET("/chats/with/:userId", chatHandler.Resolve)
			authed.GET("/chats/:chatId/messages", messageHandler.ListByChat)
			authed.POST("/chats/:chatId/seen", messageHandler.MarkSeen)

			// Rate limiting happens inside MessageService so HTTP and
			// WebSocket sends share one window.
			authed.POST("/messages", messageHandler.Send)

			authed.POST("/devices", deviceHandler.Register)
			authed.DELETE("/devices", deviceHandler.Revoke)

			authed.GET("/notifications", notificationHandler.List)
			authed.POST("/notifications/:id/seen", notificationHandler.MarkSeen)
		}
	}

	router.GET("/ws", wsHandler.Connect)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.AppPort),
		Handler: router,
	}

	go func() {
		log.Infof("starting server on port %s", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("server stopped: %v", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Infof("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown error: %v", err)
	}
}
