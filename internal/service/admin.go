package service

import (
	"context" // Request-scoped queries
	"fmt"     // Cache keys
	"time"    // Dashboard window

	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/gorm"               // GORM ORM library

	"social_network/internal/domain"  // Models and error classes
	"social_network/internal/storage" // Image store
	"social_network/internal/utils"   // Pagination
)

const adminCachePrefix = "admin:"

// DashboardStats are the totals shown on the admin dashboard
type DashboardStats struct {
	Users         int64 `json:"users"`
	Posts         int64 `json:"posts"`
	Comments      int64 `json:"comments"`
	Likes         int64 `json:"likes"`
	PostsLastWeek int64 `json:"postsLastWeek"`
}

// AdminUser is a user row as listed to staff
type AdminUser struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	ProfileImage string    `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AdminUserPage is a page of AdminUser
type AdminUserPage struct {
	Users      []AdminUser      `json:"users"`
	Pagination utils.Pagination `json:"pagination"`
}

// AdminService serves the moderation endpoints
type AdminService struct {
	db     *gorm.DB
	posts  *PostService
	images storage.ImageStore
	cache  *Cache
}

// NewAdminService wires the moderation endpoints to the post service and the cache
func NewAdminService(db *gorm.DB, posts *PostService, images storage.ImageStore, cache *Cache) *AdminService {
	return &AdminService{db: db, posts: posts, images: images, cache: cache}
}

// Stats returns platform totals and the number of posts created in the last 7 days
func (s *AdminService) Stats(ctx context.Context) (DashboardStats, error) {
	var st DashboardStats
	key := adminCachePrefix + "stats"
	if s.cache.get(ctx, key, &st) {
		return st, nil
	}
	db := s.db.WithContext(ctx)
	weekAgo := time.Now().AddDate(0, 0, -7)
	counts := []struct {
		q    *gorm.DB
		dest *int64
	}{
		{db.Model(&domain.User{}), &st.Users},
		{db.Model(&domain.Post{}), &st.Posts},
		{db.Model(&domain.Comment{}), &st.Comments},
		{db.Model(&domain.Like{}), &st.Likes},
		{db.Model(&domain.Post{}).Where("created_at >= ?", weekAgo), &st.PostsLastWeek},
	}
	for _, c := range counts {
		if err := c.q.Count(c.dest).Error; err != nil {
			return DashboardStats{}, err
		}
	}
	s.cache.set(ctx, key, st)
	return st, nil
}

// ListUsers pages through all users, newest first
func (s *AdminService) ListUsers(ctx context.Context, p utils.Page) (AdminUserPage, error) {
	var out AdminUserPage
	key := fmt.Sprintf("%susers:page=%d:limit=%d", adminCachePrefix, p.Page, p.Limit)
	if s.cache.get(ctx, key, &out) {
		return out, nil
	}
	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
		return AdminUserPage{}, err
	}
	var users []domain.User
	if err := db.Order("created_at DESC").Order("id DESC").Offset(p.Offset()).Limit(p.Limit).Find(&users).Error; err != nil {
		return AdminUserPage{}, err
	}
	out.Users = make([]AdminUser, len(users))
	for i, u := range users {
		out.Users[i] = AdminUser{
			ID:           u.ID,
			Username:     u.Username,
			Email:        u.Email,
			Role:         u.Role,
			ProfileImage: u.ProfileImage,
			CreatedAt:    u.CreatedAt,
		}
	}
	out.Pagination = utils.NewPagination(p, total)
	s.cache.set(ctx, key, out)
	return out, nil
}

// ListPosts pages through all posts, newest first, with counts but no comments
func (s *AdminService) ListPosts(ctx context.Context, p utils.Page) (PostPage, error) {
	var out PostPage
	key := fmt.Sprintf("%sposts:page=%d:limit=%d", adminCachePrefix, p.Page, p.Limit)
	if s.cache.get(ctx, key, &out) {
		return out, nil
	}
	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&domain.Post{}).Count(&total).Error; err != nil {
		return PostPage{}, err
	}
	var posts []domain.Post
	if err := db.Order("created_at DESC").Order("id DESC").Offset(p.Offset()).Limit(p.Limit).Find(&posts).Error; err != nil {
		return PostPage{}, err
	}
	views, err := s.posts.decorate(ctx, s.db, 0, posts, noComments)
	if err != nil {
		return PostPage{}, err
	}
	out = PostPage{Posts: views, Pagination: utils.NewPagination(p, total)}
	s.cache.set(ctx, key, out)
	return out, nil
}

// ListComments pages through all comments, newest first
func (s *AdminService) ListComments(ctx context.Context, p utils.Page) (CommentPage, error) {
	var out CommentPage
	key := fmt.Sprintf("%scomments:page=%d:limit=%d", adminCachePrefix, p.Page, p.Limit)
	if s.cache.get(ctx, key, &out) {
		return out, nil
	}
	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&domain.Comment{}).Count(&total).Error; err != nil {
		return CommentPage{}, err
	}
	var rows []domain.Comment
	if err := db.Order("created_at DESC").Order("id DESC").Offset(p.Offset()).Limit(p.Limit).Find(&rows).Error; err != nil {
		return CommentPage{}, err
	}
	userIDs := make([]uint, len(rows))
	for i, c := range rows {
		userIDs[i] = c.UserID
	}
	authors, err := loadAuthors(ctx, s.db, userIDs)
	if err != nil {
		return CommentPage{}, err
	}
	out.Comments = make([]CommentView, len(rows))
	for i, c := range rows {
		out.Comments[i] = commentView(c, authors)
	}
	out.Pagination = utils.NewPagination(p, total)
	s.cache.set(ctx, key, out)
	return out, nil
}

// DeleteUser removes a user and everything they own or received in one transaction.
// Stored images are deleted after commit.
func (s *AdminService) DeleteUser(ctx context.Context, actorID, userID uint) error {
	if actorID == userID {
		return domain.Invalid("you cannot delete your own account")
	}
	user, err := findUser(ctx, s.db, userID)
	if err != nil {
		return err
	}
	var posts []domain.Post
	if err := s.db.WithContext(ctx).Select("id", "image", "image_id").Where("user_id = ?", userID).Find(&posts).Error; err != nil {
		return err
	}
	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			model any
			where string
			args  []any
		}{
			{&domain.Notification{}, "recipient_id = ? OR sender_id = ? OR post_id IN ?", []any{userID, userID, postIDs}},
			{&domain.Follow{}, "follower_id = ? OR followed_id = ?", []any{userID, userID}},
			{&domain.Like{}, "user_id = ? OR post_id IN ?", []any{userID, postIDs}},
			{&domain.Comment{}, "user_id = ? OR post_id IN ?", []any{userID, postIDs}},
			{&domain.Post{}, "user_id = ?", []any{userID}},
		}
		for _, st := range steps {
			if err := tx.Where(st.where, st.args...).Delete(st.model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&domain.User{}, userID).Error
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "actor_id": actorID, "posts": len(posts)}).Info("user deleted")

	for _, p := range posts {
		dropImage(ctx, s.images, p.ImageID, p.Image)
	}
	dropImage(ctx, s.images, user.ProfileImageID, user.ProfileImage)
	s.cache.forgetPrefix(ctx, adminCachePrefix)
	s.cache.forgetPrefix(ctx, "profile:")
	return nil
}

// DeletePost removes any post
func (s *AdminService) DeletePost(ctx context.Context, postID uint) error {
	post, err := findPost(ctx, s.db, postID)
	if err != nil {
		return err
	}
	if err := s.posts.removePost(ctx, post); err != nil {
		return err
	}
	s.cache.forgetPrefix(ctx, adminCachePrefix)
	return nil
}

// DeleteComment removes any comment
func (s *AdminService) DeleteComment(ctx context.Context, commentID uint) error {
	comment, err := findComment(ctx, s.db, commentID)
	if err != nil {
		return err
	}
	if err := s.posts.removeComment(ctx, comment); err != nil {
		return err
	}
	s.cache.forgetPrefix(ctx, adminCachePrefix)
	return nil
}
