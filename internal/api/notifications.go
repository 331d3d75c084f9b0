package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"social_network/internal/middleware" // Current user
	"social_network/internal/service"    // Notifications
	"social_network/internal/utils"      // Limit parsing
)

// ListNotificationsHandler returns the newest notifications and the unread count
func ListNotificationsHandler(notifications *service.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := utils.ParsePage(c, defaultPageSize, maxPageSize) // Only ?limit is used
		feed, err := notifications.List(c.Request.Context(), middleware.CurrentUserID(c), p.Limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, feed)
	}
}

// MarkReadHandler marks one notification as read
func MarkReadHandler(notifications *service.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := notifications.MarkRead(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
	}
}

// MarkAllReadHandler marks every notification of the current user as read
func MarkAllReadHandler(notifications *service.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := notifications.MarkAllRead(c.Request.Context(), middleware.CurrentUserID(c)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
	}
}

// NotificationCommentHandler returns the comment behind a comment notification
func NotificationCommentHandler(notifications *service.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		comment, err := notifications.Comment(c.Request.Context(), middleware.CurrentUserID(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"comment": comment})
	}
}
