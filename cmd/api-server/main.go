package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"esporthub/database"
	"esporthub/internal/config"
	"esporthub/internal/microservices/http-api/handler"
	"esporthub/internal/microservices/http-api/middleware"
	"esporthub/internal/microservices/http-api/repository"
	"esporthub/internal/microservices/http-api/service"
	"esporthub/internal/microservices/websocket"
	"esporthub/internal/notify"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("could not load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("could not connect to database", "error", err)
		os.Exit(1)
	}

	cache, err := repository.NewUnreadCacheRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.CacheTTL)
	if err != nil {
		// cache is an optimization: run degraded rather than refuse to start
		logger.Warn("redis unavailable, unread counts served from the database", "error", err)
	}
	defer cache.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	postRepo := repository.NewForumPostRepository(db)
	replyRepo := repository.NewForumReplyRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// Realtime hub and async notification pipeline
	hub := websocket.NewHub()
	go hub.Run()

	dispatcher := notify.NewDispatcher(notificationRepo, cache, hub, cfg.NotifyWorkers, cfg.NotifyQueueSize)

	// Services
	authService := service.NewAuthService(userRepo, profileRepo, refreshTokenRepo, cfg)
	forumService := service.NewForumService(postRepo, replyRepo, categoryRepo, profileRepo, likeRepo, activityRepo, userRepo, dispatcher)
	commentService := service.NewCommentService(commentRepo, profileRepo, userRepo, likeRepo, dispatcher, cfg.CommentMaxDepth)
	notificationService := service.NewNotificationService(notificationRepo, cache, hub)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	forumHandler := handler.NewForumHandler(forumService)
	commentHandler := handler.NewCommentHandler(commentService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"connections": hub.TotalConnections(),
		})
	})

	authMW := middleware.AuthMiddleware(authService)

	api := r.Group("/api")
	authHandler.RegisterRoutes(api.Group("/auth"))
	forumHandler.RegisterRoutes(api.Group("/forum"), authMW)
	commentHandler.RegisterRoutes(api.Group("/comments"), authMW)
	notificationHandler.RegisterRoutes(api.Group("/notifications", authMW))
	api.GET("/ws/notifications", authMW, websocket.WSHandler(hub))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		logger.Info("http server listening", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}

	// stop accepting new notifications, drain the queue, then drop sockets
	dispatcher.Shutdown()
	hub.Shutdown()

	logger.Info("bye")
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
