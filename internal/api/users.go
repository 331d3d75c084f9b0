package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"social_network/internal/middleware" // Current user
	"social_network/internal/service"    // Profiles and follows
	"social_network/internal/utils"      // Pagination
)

// ProfileHandler returns the public profile of :username
func ProfileHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := users.GetProfile(c.Request.Context(), middleware.CurrentUserID(c), c.Param("username"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// FollowersHandler pages through the followers of :username
func FollowersHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := utils.ParsePage(c, defaultPageSize, maxPageSize)
		res, err := users.ListFollowers(c.Request.Context(), middleware.CurrentUserID(c), c.Param("username"), p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// FollowingHandler pages through the users :username follows
func FollowingHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := utils.ParsePage(c, defaultPageSize, maxPageSize)
		res, err := users.ListFollowing(c.Request.Context(), middleware.CurrentUserID(c), c.Param("username"), p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// UpdateProfileHandler edits the bio and profile image of the current user
func UpdateProfileHandler(users *service.UserService, maxUpload int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in service.ProfileInput
		if c.ContentType() == gin.MIMEJSON {
			if err := c.ShouldBindJSON(&in); err != nil {
				bindError(c, err)
				return
			}
		} else {
			if bio, ok := c.GetPostForm("bio"); ok {
				in.Bio = &bio
			}
			img, err := readImage(c, "profileImage", maxUpload)
			if err != nil {
				respondError(c, err)
				return
			}
			in.Image = img
		}
		user, err := users.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// FollowHandler makes the current user follow :id
func FollowHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "username") // Shares the :username segment; holds a user id here
		if !ok {
			return
		}
		if err := users.Follow(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User followed"})
	}
}

// UnfollowHandler makes the current user stop following :id
func UnfollowHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "username") // Shares the :username segment; holds a user id here
		if !ok {
			return
		}
		if err := users.Unfollow(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User unfollowed"})
	}
}

// SearchUsersHandler finds users by username
func SearchUsersHandler(search *service.SearchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := search.Users(c.Request.Context(), middleware.CurrentUserID(c), c.Query("q"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": users})
	}
}

// SearchPostsHandler finds posts by content
func SearchPostsHandler(search *service.SearchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		posts, err := search.Posts(c.Request.Context(), middleware.CurrentUserID(c), c.Query("q"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"posts": posts})
	}
}
