package middleware

import (
	"context"  // Request context
	"errors"   // Error classification
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging

	"social_network/internal/domain" // Importing domain models
)

// Context keys set by JWTAuthMiddleware
const (
	userIDKey = "userID"
	userKey   = "user"
)

// UserResolver turns a bearer token into the user it belongs to
type UserResolver interface {
	CurrentUser(ctx context.Context, token string) (domain.User, error)
}

// JWTAuthMiddleware validates the bearer token and loads the current user
func JWTAuthMiddleware(users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")) // Extract the token string
		user, err := users.CurrentUser(c.Request.Context(), tokenStr)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrUnauthorized):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		case errors.Is(err, domain.ErrNotFound):
			// Token is valid but the account is gone
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		default:
			logrus.WithFields(logrus.Fields{"path": c.FullPath(), "error": err.Error()}).Error("resolve current user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		c.Set(userIDKey, user.ID) // Store userID in context
		c.Set(userKey, user)      // Store the full user for role checks
		c.Next()                  // Proceed to the next handler
	}
}

// CurrentUser returns the user stored by JWTAuthMiddleware
func CurrentUser(c *gin.Context) (domain.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := v.(domain.User)
	return user, ok
}

// CurrentUserID returns the id stored by JWTAuthMiddleware, or 0
func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(userIDKey)
}
