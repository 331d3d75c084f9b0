package main

import (
	"context"   // Redis ping and shutdown deadline
	"errors"    // Server close detection
	"net/http"  // HTTP server
	"os"        // Stdout for logs
	"os/signal" // Graceful shutdown
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"github.com/getsentry/sentry-go" // Error reporting
	"github.com/gin-gonic/gin"       // Gin web framework
	"github.com/redis/go-redis/v9"   // Redis client
	"github.com/sirupsen/logrus"     // Logrus for structured logging

	"social_network/internal/api"     // HTTP handlers and router
	"social_network/internal/config"  // Configuration
	"social_network/internal/db"      // Database connection
	"social_network/internal/service" // Application operations
	"social_network/internal/storage" // Image stores
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	setupLogger(cfg)

	// Error reporting is optional
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, AttachStacktrace: true}); err != nil {
			logrus.Fatalf("failed to init sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	conn, err := db.Open(cfg) // Connect to the database
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	rdb := setupRedis(cfg) // nil when caching is disabled
	images, err := setupImages(cfg)
	if err != nil {
		logrus.Fatalf("failed to set up image store: %v", err)
	}

	cache := service.NewCache(rdb, cfg.CacheTTL)
	notifications := service.NewNotificationService(conn)
	posts := service.NewPostService(conn, images, notifications, cache)
	svc := api.Services{
		Auth:          service.NewAuthService(conn, cfg.JWTSecret, cfg.JWTTTL),
		Posts:         posts,
		Users:         service.NewUserService(conn, images, notifications, cache),
		Search:        service.NewSearchService(conn, posts),
		Notifications: notifications,
		Admin:         service.NewAdminService(conn, posts, images, cache),
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := api.NewRouter(cfg, svc)
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.WithField("port", cfg.AppPort).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	// Wait for SIGINT/SIGTERM, then drain in-flight requests
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logrus.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("forced shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func setupLogger(cfg *config.Config) {
	logrus.SetOutput(os.Stdout)
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// setupRedis connects to Redis; without REDIS_ADDR caching is off
func setupRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		logrus.Warn("REDIS_ADDR not set, caching disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	// Test Redis connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}
	return rdb
}

func setupImages(cfg *config.Config) (storage.ImageStore, error) {
	switch cfg.ImageProvider {
	case "cloudinary":
		return storage.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder, cfg.MaxUploadBytes)
	case "local":
		return storage.NewLocalStore(cfg.UploadDir, "/uploads", cfg.MaxUploadBytes)
	default:
		return nil, errors.New("unknown IMAGE_PROVIDER " + cfg.ImageProvider)
	}
}
