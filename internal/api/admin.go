package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"social_network/internal/middleware" // Current user
	"social_network/internal/service"    // Moderation
	"social_network/internal/utils"      // Pagination
)

// Admin lists use bigger pages
const (
	adminPageSize    = 20
	adminMaxPageSize = 100
)

// DashboardStatsHandler returns platform totals
func DashboardStatsHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := admin.Stats(c.Request.Context()) // Served from cache when fresh
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// ListUsersHandler returns all users, newest first
func ListUsersHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := utils.ParsePage(c, adminPageSize, adminMaxPageSize) // ?page and ?limit
		res, err := admin.ListUsers(c.Request.Context(), p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// ListAllPostsHandler returns all posts, newest first
func ListAllPostsHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := utils.ParsePage(c, adminPageSize, adminMaxPageSize)
		res, err := admin.ListPosts(c.Request.Context(), p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// ListAllCommentsHandler returns all comments, newest first
func ListAllCommentsHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := utils.ParsePage(c, adminPageSize, adminMaxPageSize)
		res, err := admin.ListComments(c.Request.Context(), p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// DeleteUserHandler deletes a user and everything attached to it
func DeleteUserHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		// Admins cannot delete themselves
		if err := admin.DeleteUser(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
	}
}

// AdminDeletePostHandler deletes any post
func AdminDeletePostHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := admin.DeletePost(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
	}
}

// AdminDeleteCommentHandler deletes any comment
func AdminDeleteCommentHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := admin.DeleteComment(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
	}
}
