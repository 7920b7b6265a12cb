package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"servespot/database"
	"servespot/internal/cache"
	"servespot/internal/config"
	"servespot/internal/http-api/handler"
	"servespot/internal/http-api/middleware"
	"servespot/internal/http-api/repository"
	"servespot/internal/http-api/service"
	"servespot/internal/websocket"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	unreadCache, err := cache.NewUnreadCache(cfg.RedisAddr, cfg.RedisPassword, cfg.UnreadCacheTTL)
	if err != nil {
		// degrade to uncached counts rather than refuse to start
		logger.Warn("Redis unavailable, unread counts will be uncached", "error", err)
		unreadCache = nil
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	opportunityRepo := repository.NewOpportunityRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Real-time delivery
	registry := websocket.NewRegistry()
	publisher := websocket.NewPublisher(registry, notificationRepo, unreadCache)

	// Services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg)
	opportunityService := service.NewOpportunityService(opportunityRepo)
	applicationService := service.NewApplicationService(applicationRepo, opportunityRepo, publisher)
	notificationService := service.NewNotificationService(notificationRepo, unreadCache)

	// Router: debug mode only on a developer machine
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.GET("/check-conn", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API is alive and database connected"})
	})

	api := r.Group("/api")

	authLimiter := middleware.NewRateLimiter(cfg.AuthRatePerSecond, cfg.AuthRateBurst)
	authGroup := api.Group("/auth", authLimiter.Middleware())
	handler.NewAuthHandler(authService).RegisterRoutes(authGroup)

	protected := api.Group("", middleware.AuthMiddleware(authService))
	handler.NewProfileHandler(userRepo).RegisterRoutes(protected.Group("/profile"))
	handler.NewOpportunityHandler(opportunityService).RegisterRoutes(protected.Group("/opportunities"))
	handler.NewApplicationHandler(applicationService).RegisterRoutes(protected.Group("/applications"))
	handler.NewNotificationHandler(notificationService).RegisterRoutes(protected.Group("/notifications"))

	r.GET("/ws", middleware.AuthMiddleware(authService), websocket.WSHandler(registry))

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("Server starting", "addr", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelDebug
	switch cfg.LogLevel {
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
