package middleware

import (
	"net/http" // HTTP status codes
	"slices"   // Role lookup

	"github.com/gin-gonic/gin" // Gin web framework

	"social_network/internal/domain" // Importing domain models
)

// StaffOnly admits admins and moderators
func StaffOnly() gin.HandlerFunc { return RequireRole(domain.RoleAdmin, domain.RoleModerator) }

// AdminOnly admits admins
func AdminOnly() gin.HandlerFunc { return RequireRole(domain.RoleAdmin) }

// RequireRole checks the role of the user loaded by JWTAuthMiddleware.
// The role is read from the database on each request, never from the token.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := CurrentUser(c) // Get user from context
		// Check if user exists in context
		if !exists {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		// Check if the user holds one of the roles
		if !slices.Contains(roles, user.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Insufficient permissions"})
			return
		}
		c.Next() // Proceed to the next handler
	}
}
