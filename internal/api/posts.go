package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"social_network/internal/middleware" // Current user
	"social_network/internal/service"    // Posts, likes and comments
	"social_network/internal/utils"      // Pagination
)

// Page size bounds for post and comment lists
const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// CommentRequest is the body of POST /api/posts/:id/comment
type CommentRequest struct {
	Content string `json:"content"` // Checked for blank text by the service
}

// FeedHandler returns the paginated feed of the current user
func FeedHandler(posts *service.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := utils.ParsePage(c, defaultPageSize, maxPageSize) // ?page and ?limit
		feed, err := posts.ListFeed(c.Request.Context(), middleware.CurrentUserID(c), p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, feed)
	}
}

// CreatePostHandler stores a post with optional text and image
func CreatePostHandler(posts *service.PostService, maxUpload int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, err := postInput(c, maxUpload)
		if err != nil {
			respondError(c, err)
			return
		}
		post, err := posts.CreatePost(c.Request.Context(), middleware.CurrentUserID(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, post)
	}
}

// GetPostHandler returns one post with all comments
func GetPostHandler(posts *service.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		post, err := posts.GetPost(c.Request.Context(), middleware.CurrentUserID(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, post)
	}
}

// UserPostsHandler returns every post of one user, or one page with ?page / ?limit
func UserPostsHandler(posts *service.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := utils.OptionalPage(c, defaultPageSize, maxPageSize)
		res, err := posts.ListUserPosts(c.Request.Context(), middleware.CurrentUserID(c), c.Param("username"), p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// UpdatePostHandler edits a post owned by the current user
func UpdatePostHandler(posts *service.PostService, maxUpload int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		in, err := postInput(c, maxUpload)
		if err != nil {
			respondError(c, err)
			return
		}
		post, err := posts.UpdatePost(c.Request.Context(), middleware.CurrentUserID(c), id, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, post)
	}
}

// DeletePostHandler deletes a post owned by the current user
func DeletePostHandler(posts *service.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := posts.DeletePost(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
	}
}

// LikeHandler likes a post
func LikeHandler(posts *service.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := posts.LikePost(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Post liked"})
	}
}

// UnlikeHandler removes the current user's like
func UnlikeHandler(posts *service.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := posts.UnlikePost(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Post unliked"})
	}
}

// AddCommentHandler comments on a post
func AddCommentHandler(posts *service.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req CommentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		comment, err := posts.AddComment(c.Request.Context(), middleware.CurrentUserID(c), id, req.Content)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, comment)
	}
}

// ListCommentsHandler pages through the comments of a post
func ListCommentsHandler(posts *service.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		p := utils.ParsePage(c, defaultPageSize, maxPageSize)
		res, err := posts.ListComments(c.Request.Context(), id, p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// DeleteCommentHandler deletes a comment written by, or posted under a post of, the current user
func DeleteCommentHandler(posts *service.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		postID, ok := idParam(c, "id")
		if !ok {
			return
		}
		commentID, ok := idParam(c, "commentId")
		if !ok {
			return
		}
		if err := posts.DeleteComment(c.Request.Context(), middleware.CurrentUserID(c), postID, commentID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
	}
}
