package service

import (
	"context" // Request-scoped queries
	"errors"  // Error classification
	"time"    // Timestamps

	"gorm.io/gorm"        // GORM ORM library
	"gorm.io/gorm/clause" // Association control

	"social_network/internal/domain"  // Models and error classes
	"social_network/internal/storage" // Image store
	"social_network/internal/utils"   // Pagination
)

// ProfileStats are the counters shown on a profile. Cached per user.
type ProfileStats struct {
	Posts     int64 `json:"posts"`
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
	Comments  int64 `json:"comments"`
	Likes     int64 `json:"likes"` // Likes received on the user's posts
}

// Profile is the public view of a user
type Profile struct {
	ID           uint         `json:"id"`
	Username     string       `json:"username"`
	ProfileImage string       `json:"profileImage"`
	Bio          string       `json:"bio"`
	Role         string       `json:"role"`
	CreatedAt    time.Time    `json:"createdAt"`
	Stats        ProfileStats `json:"stats"`
	IsFollowing  bool         `json:"isFollowing"`
}

// UserSummary is a user in follower lists and search results
type UserSummary struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profileImage"`
	Bio          string `json:"bio"`
	IsFollowing  bool   `json:"isFollowing"`
}

// UserPage is a page of users plus pagination metadata
type UserPage struct {
	Users      []UserSummary    `json:"users"`
	Pagination utils.Pagination `json:"pagination"`
}

// ProfileInput carries profile edits. Nil fields are left unchanged.
type ProfileInput struct {
	Bio   *string         `json:"bio" validate:"omitempty,max=500"`
	Image *storage.Upload `json:"-"`
}

// UserService owns profiles and the follow graph
type UserService struct {
	db            *gorm.DB
	images        storage.ImageStore
	notifications *NotificationService
	cache         *Cache
}

// NewUserService creates a UserService. cache may be nil.
func NewUserService(db *gorm.DB, images storage.ImageStore, notifications *NotificationService, cache *Cache) *UserService {
	return &UserService{db: db, images: images, notifications: notifications, cache: cache}
}

// Follow makes followerID follow followedID and notifies the followed user
func (s *UserService) Follow(ctx context.Context, followerID, followedID uint) error {
	if followerID == followedID {
		return domain.Invalid("you cannot follow yourself")
	}
	if _, err := findUser(ctx, s.db, followedID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Follow{}).Where("follower_id = ? AND followed_id = ?", followerID, followedID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return domain.Conflict("already following this user")
		}
		edge := domain.Follow{FollowerID: followerID, FollowedID: followedID}
		if err := tx.Omit(clause.Associations).Create(&edge).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.Conflict("already following this user")
			}
			return err
		}
		return s.notifications.notify(tx, followedID, followerID, domain.NotificationFollow, nil, nil)
	})
	if err != nil {
		return err
	}
	s.cache.forgetProfiles(ctx, followerID, followedID)
	return nil
}

// Unfollow removes the edge followerID -> followedID
func (s *UserService) Unfollow(ctx context.Context, followerID, followedID uint) error {
	res := s.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&domain.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Invalid("you are not following this user")
	}
	s.cache.forgetProfiles(ctx, followerID, followedID)
	return nil
}

// GetProfile returns the public profile of username as seen by viewerID
func (s *UserService) GetProfile(ctx context.Context, viewerID uint, username string) (Profile, error) {
	user, err := findUserByUsername(ctx, s.db, username)
	if err != nil {
		return Profile{}, err
	}
	stats, err := s.stats(ctx, user.ID)
	if err != nil {
		return Profile{}, err
	}
	following, err := s.followingSet(ctx, viewerID, []uint{user.ID})
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		ID:           user.ID,
		Username:     user.Username,
		ProfileImage: user.ProfileImage,
		Bio:          user.Bio,
		Role:         user.Role,
		CreatedAt:    user.CreatedAt,
		Stats:        stats,
		IsFollowing:  following[user.ID],
	}, nil
}

// stats counts a user's activity, served from the cache when possible
func (s *UserService) stats(ctx context.Context, userID uint) (ProfileStats, error) {
	var st ProfileStats
	key := profileKey(userID)
	if s.cache.get(ctx, key, &st) {
		return st, nil
	}
	db := s.db.WithContext(ctx)
	counts := []struct {
		q    *gorm.DB
		dest *int64
	}{
		{db.Model(&domain.Post{}).Where("user_id = ?", userID), &st.Posts},
		{db.Model(&domain.Follow{}).Where("followed_id = ?", userID), &st.Followers},
		{db.Model(&domain.Follow{}).Where("follower_id = ?", userID), &st.Following},
		{db.Model(&domain.Comment{}).Where("user_id = ?", userID), &st.Comments},
		{db.Model(&domain.Like{}).Joins("JOIN posts ON posts.id = likes.post_id").Where("posts.user_id = ?", userID), &st.Likes},
	}
	for _, c := range counts {
		if err := c.q.Count(c.dest).Error; err != nil {
			return ProfileStats{}, err
		}
	}
	s.cache.set(ctx, key, st)
	return st, nil
}

// followingSet reports which of ids viewerID follows
func (s *UserService) followingSet(ctx context.Context, viewerID uint, ids []uint) (map[uint]bool, error) {
	return followingSet(ctx, s.db, viewerID, ids)
}

func followingSet(ctx context.Context, db *gorm.DB, viewerID uint, ids []uint) (map[uint]bool, error) {
	out := map[uint]bool{}
	if viewerID == 0 || len(ids) == 0 {
		return out, nil
	}
	var followed []uint
	if err := db.WithContext(ctx).Model(&domain.Follow{}).
		Where("follower_id = ? AND followed_id IN ?", viewerID, ids).
		Pluck("followed_id", &followed).Error; err != nil {
		return nil, err
	}
	for _, id := range followed {
		out[id] = true
	}
	return out, nil
}

// ListFollowers pages through the users following username, most recent first
func (s *UserService) ListFollowers(ctx context.Context, viewerID uint, username string, p utils.Page) (UserPage, error) {
	return s.listEdges(ctx, viewerID, username, p, "followed_id", "follower_id")
}

// ListFollowing pages through the users username follows, most recent first
func (s *UserService) ListFollowing(ctx context.Context, viewerID uint, username string, p utils.Page) (UserPage, error) {
	return s.listEdges(ctx, viewerID, username, p, "follower_id", "followed_id")
}

// listEdges lists the users on the `other` end of edges whose `self` column is the user
func (s *UserService) listEdges(ctx context.Context, viewerID uint, username string, p utils.Page, self, other string) (UserPage, error) {
	user, err := findUserByUsername(ctx, s.db, username)
	if err != nil {
		return UserPage{}, err
	}
	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&domain.Follow{}).Where(self+" = ?", user.ID).Count(&total).Error; err != nil {
		return UserPage{}, err
	}
	var users []domain.User
	if err := db.Joins("JOIN followers ON followers."+other+" = users.id").
		Where("followers."+self+" = ?", user.ID).
		Order("followers.created_at DESC").Order("users.id DESC").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&users).Error; err != nil {
		return UserPage{}, err
	}
	out, err := s.summaries(ctx, viewerID, users)
	if err != nil {
		return UserPage{}, err
	}
	return UserPage{Users: out, Pagination: utils.NewPagination(p, total)}, nil
}

func (s *UserService) summaries(ctx context.Context, viewerID uint, users []domain.User) ([]UserSummary, error) {
	return summarize(ctx, s.db, viewerID, users)
}

func summarize(ctx context.Context, db *gorm.DB, viewerID uint, users []domain.User) ([]UserSummary, error) {
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	following, err := followingSet(ctx, db, viewerID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]UserSummary, len(users))
	for i, u := range users {
		out[i] = UserSummary{
			ID:           u.ID,
			Username:     u.Username,
			ProfileImage: u.ProfileImage,
			Bio:          u.Bio,
			IsFollowing:  following[u.ID],
		}
	}
	return out, nil
}

// UpdateProfile edits the bio and/or profile image of userID
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (domain.User, error) {
	if err := validateStruct(in); err != nil {
		return domain.User{}, err
	}
	user, err := findUser(ctx, s.db, userID)
	if err != nil {
		return domain.User{}, err
	}
	updates := map[string]any{}
	if in.Bio != nil {
		updates["bio"] = *in.Bio
	}
	oldRef, oldURL := user.ProfileImageID, user.ProfileImage
	if in.Image != nil {
		img, err := s.images.Upload(ctx, *in.Image)
		if err != nil {
			return domain.User{}, err
		}
		updates["profile_image"], updates["profile_image_id"] = img.URL, img.Ref
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return domain.User{}, err
	}
	if in.Image != nil {
		dropImage(ctx, s.images, oldRef, oldURL)
	}
	s.cache.forgetProfiles(ctx, userID)
	return findUser(ctx, s.db, userID)
}
