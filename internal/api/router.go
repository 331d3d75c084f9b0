package api

import (
	"net/http" // HTTP status codes
	"time"     // CORS max age

	sentrygin "github.com/getsentry/sentry-go/gin" // Error reporting
	"github.com/gin-contrib/cors"                  // Cross-origin requests
	"github.com/gin-contrib/gzip"                  // Response compression
	"github.com/gin-gonic/gin"                     // Gin web framework
	"github.com/sirupsen/logrus"                   // Structured logging

	"social_network/internal/config"     // Application configuration
	"social_network/internal/middleware" // Auth, roles, logging, rate limiting
	"social_network/internal/service"    // Application operations
)

// Services bundles everything the handlers call
type Services struct {
	Auth          *service.AuthService
	Posts         *service.PostService
	Users         *service.UserService
	Search        *service.SearchService
	Notifications *service.NotificationService
	Admin         *service.AdminService
}

// NewRouter wires middleware and routes
func NewRouter(cfg *config.Config, svc Services) *gin.Engine {
	r := gin.New()

	// Panics become a logged 500
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logrus.WithFields(logrus.Fields{
			"request_id": middleware.RequestID(c),
			"path":       c.Request.URL.Path,
			"panic":      recovered,
		}).Error("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}))
	r.Use(middleware.RequestLogger())
	if cfg.SentryDSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true})) // Recovery above still answers
	}
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/uploads"})))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.ImageProvider == "local" {
		r.Static("/uploads", cfg.UploadDir) // Local image store
	}

	auth := middleware.JWTAuthMiddleware(svc.Auth)
	maxUpload := cfg.MaxUploadBytes
	api := r.Group("/api")

	// Auth routes
	authGroup := api.Group("/auth")
	limited := middleware.RateLimit(middleware.NewIPRateLimiter(cfg.AuthRatePerMinute))
	authGroup.POST("/register", limited, RegisterHandler(svc.Auth)) // Registration endpoint
	authGroup.POST("/login", limited, LoginHandler(svc.Auth))       // Login endpoint
	authGroup.GET("/me", auth, MeHandler())                         // Current user

	// Post routes (protected by JWT)
	posts := api.Group("/posts", auth)
	posts.GET("", FeedHandler(svc.Posts))
	posts.POST("", CreatePostHandler(svc.Posts, maxUpload))
	posts.GET("/user/:username", UserPostsHandler(svc.Posts))
	posts.GET("/:id", GetPostHandler(svc.Posts))
	posts.PUT("/:id", UpdatePostHandler(svc.Posts, maxUpload))
	posts.DELETE("/:id", DeletePostHandler(svc.Posts))
	posts.POST("/:id/like", LikeHandler(svc.Posts))
	posts.DELETE("/:id/like", UnlikeHandler(svc.Posts))
	posts.POST("/:id/comment", AddCommentHandler(svc.Posts))
	posts.GET("/:id/comments", ListCommentsHandler(svc.Posts))
	posts.DELETE("/:id/comments/:commentId", DeleteCommentHandler(svc.Posts))

	// Notification routes
	notifications := api.Group("/notifications", auth)
	notifications.GET("", ListNotificationsHandler(svc.Notifications))
	notifications.PUT("/read-all", MarkAllReadHandler(svc.Notifications))
	notifications.PUT("/:id/read", MarkReadHandler(svc.Notifications))
	notifications.GET("/:id/comment", NotificationCommentHandler(svc.Notifications))

	// User routes
	users := api.Group("/users", auth)
	users.PUT("/me", UpdateProfileHandler(svc.Users, maxUpload))
	users.GET("/:username", ProfileHandler(svc.Users))
	users.GET("/:username/followers", FollowersHandler(svc.Users))
	users.GET("/:username/following", FollowingHandler(svc.Users))
	users.POST("/:username/follow", FollowHandler(svc.Users))
	users.DELETE("/:username/unfollow", UnfollowHandler(svc.Users))

	// Search routes
	search := api.Group("/search", auth)
	search.GET("/users", SearchUsersHandler(svc.Search))
	search.GET("/posts", SearchPostsHandler(svc.Search))

	// Admin routes (protected, staff only; user deletion admin only)
	admin := api.Group("/admin", auth, middleware.StaffOnly())
	admin.GET("/dashboard/stats", DashboardStatsHandler(svc.Admin))
	admin.GET("/users", ListUsersHandler(svc.Admin))
	admin.DELETE("/users/:id", middleware.AdminOnly(), DeleteUserHandler(svc.Admin))
	admin.GET("/posts", ListAllPostsHandler(svc.Admin))
	admin.DELETE("/posts/:id", AdminDeletePostHandler(svc.Admin))
	admin.GET("/comments", ListAllCommentsHandler(svc.Admin))
	admin.DELETE("/comments/:id", AdminDeleteCommentHandler(svc.Admin))

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true // Development default
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
