package service

import (
	"context" // Request-scoped queries
	"time"    // Timestamps

	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/clause"        // Association control

	"social_network/internal/domain"  // Models and error classes
	"social_network/internal/storage" // Image store
	"social_network/internal/utils"   // Pagination
)

// RecentComments is how many comments a feed entry carries
const RecentComments = 5

// Comment modes for decorate
const (
	noComments  = 0
	allComments = -1
)

// CommentView is a comment with its author
type CommentView struct {
	ID        uint              `json:"id"`
	PostID    uint              `json:"postId"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"createdAt"`
	User      domain.PublicUser `json:"user"`
}

// PostView is a post with the aggregates a client renders
type PostView struct {
	ID           uint              `json:"id"`
	Content      string            `json:"content"`
	Image        string            `json:"image,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	Likes        int64             `json:"likes"`
	Liked        bool              `json:"liked"`
	Comments     []CommentView     `json:"comments"`
	CommentCount int64             `json:"commentCount"`
	User         domain.PublicUser `json:"user"`
}

// PostPage is a page of posts plus pagination metadata
type PostPage struct {
	Posts      []PostView       `json:"posts"`
	Pagination utils.Pagination `json:"pagination"`
}

// PostInput carries the fields of a new or edited post. Nil fields are left unchanged on edit.
type PostInput struct {
	Content *string
	Image   *storage.Upload
}

// PostService owns posts, likes and comments
type PostService struct {
	db            *gorm.DB
	images        storage.ImageStore
	notifications *NotificationService
	cache         *Cache
}

// NewPostService creates a PostService. cache may be nil.
func NewPostService(db *gorm.DB, images storage.ImageStore, notifications *NotificationService, cache *Cache) *PostService {
	return &PostService{db: db, images: images, notifications: notifications, cache: cache}
}

// CreatePost stores a post with optional text and image. One of them is required.
func (s *PostService) CreatePost(ctx context.Context, userID uint, in PostInput) (PostView, error) {
	content := ""
	if in.Content != nil {
		content = *in.Content
	}
	if blank(content) && in.Image == nil {
		return PostView{}, domain.Invalid("post content or image is required")
	}

	post := domain.Post{UserID: userID, Content: content}
	if in.Image != nil {
		// Upload first; a failed upload leaves no row behind
		img, err := s.images.Upload(ctx, *in.Image)
		if err != nil {
			return PostView{}, err
		}
		post.Image, post.ImageID = img.URL, img.Ref
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&post).Error; err != nil {
		if post.ImageID != "" {
			// The uploaded image stays on the provider
			logrus.WithFields(logrus.Fields{"ref": post.ImageID, "user_id": userID}).Warn("post insert failed after image upload")
		}
		return PostView{}, err
	}
	logrus.WithFields(logrus.Fields{"post_id": post.ID, "user_id": userID}).Info("post created")
	s.cache.forgetProfiles(ctx, userID)

	views, err := s.decorate(ctx, s.db, userID, []domain.Post{post}, allComments)
	if err != nil {
		return PostView{}, err
	}
	return views[0], nil
}

// ListFeed pages through posts by userID and the users it follows, newest first
func (s *PostService) ListFeed(ctx context.Context, userID uint, p utils.Page) (PostPage, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ? OR user_id IN (SELECT followed_id FROM followers WHERE follower_id = ?)", userID, userID)
	}
	return s.page(ctx, userID, &p, scope, RecentComments)
}

// ListUserPosts returns the posts of one author with every comment attached.
// A nil page returns all of them.
func (s *PostService) ListUserPosts(ctx context.Context, viewerID uint, username string, p *utils.Page) (PostPage, error) {
	author, err := findUserByUsername(ctx, s.db, username)
	if err != nil {
		return PostPage{}, err
	}
	scope := func(db *gorm.DB) *gorm.DB { return db.Where("user_id = ?", author.ID) }
	return s.page(ctx, viewerID, p, scope, allComments)
}

// page counts and fetches the posts matching scope, one page of them unless p is nil
func (s *PostService) page(ctx context.Context, viewerID uint, p *utils.Page, scope func(*gorm.DB) *gorm.DB, comments int) (PostPage, error) {
	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&domain.Post{}).Scopes(scope).Count(&total).Error; err != nil {
		return PostPage{}, err
	}
	q := db.Scopes(scope).Order("created_at DESC").Order("id DESC") // Ties keep a stable order across pages
	if p != nil {
		q = q.Offset(p.Offset()).Limit(p.Limit)
	}
	var posts []domain.Post
	if err := q.Find(&posts).Error; err != nil {
		return PostPage{}, err
	}
	views, err := s.decorate(ctx, s.db, viewerID, posts, comments)
	if err != nil {
		return PostPage{}, err
	}
	whole := utils.Page{Page: 1, Limit: int(total)} // Everything on one page
	if p != nil {
		whole = *p
	}
	return PostPage{Posts: views, Pagination: utils.NewPagination(whole, total)}, nil
}

// GetPost returns one post with all of its comments
func (s *PostService) GetPost(ctx context.Context, viewerID, postID uint) (PostView, error) {
	post, err := findPost(ctx, s.db, postID)
	if err != nil {
		return PostView{}, err
	}
	views, err := s.decorate(ctx, s.db, viewerID, []domain.Post{post}, allComments)
	if err != nil {
		return PostView{}, err
	}
	return views[0], nil
}

// UpdatePost edits the text and/or image of a post owned by userID
func (s *PostService) UpdatePost(ctx context.Context, userID, postID uint, in PostInput) (PostView, error) {
	post, err := findPost(ctx, s.db, postID)
	if err != nil {
		return PostView{}, err
	}
	if post.UserID != userID {
		return PostView{}, domain.Forbidden("you can only edit your own posts")
	}

	content := post.Content
	if in.Content != nil {
		content = *in.Content
	}
	if blank(content) && in.Image == nil && post.Image == "" {
		return PostView{}, domain.Invalid("post content or image is required")
	}

	oldRef, oldURL := post.ImageID, post.Image
	updates := map[string]any{"content": content}
	if in.Image != nil {
		img, err := s.images.Upload(ctx, *in.Image)
		if err != nil {
			return PostView{}, err
		}
		updates["image"], updates["image_id"] = img.URL, img.Ref
	}
	if err := s.db.WithContext(ctx).Model(&post).Updates(updates).Error; err != nil {
		return PostView{}, err
	}
	if in.Image != nil {
		s.dropImage(ctx, oldRef, oldURL) // Replaced image
	}
	return s.GetPost(ctx, userID, postID)
}

// DeletePost removes a post owned by userID together with its comments, likes and notifications
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := findPost(ctx, s.db, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return domain.Forbidden("you can only delete your own posts")
	}
	return s.removePost(ctx, post)
}

// removePost deletes a post and everything hanging off it in one transaction.
// The image goes after commit; failing to delete it is only logged.
func (s *PostService) removePost(ctx context.Context, post domain.Post) error {
	var commenters []uint // Their comment counts drop with the post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Comment{}).Where("post_id = ?", post.ID).Distinct().Pluck("user_id", &commenters).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&domain.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Post{}, post.ID).Error
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"post_id": post.ID, "user_id": post.UserID}).Info("post deleted")
	s.dropImage(ctx, post.ImageID, post.Image)
	s.cache.forgetProfiles(ctx, unique(append(commenters, post.UserID))...)
	return nil
}

// dropImage deletes a stored image, logging instead of failing
func (s *PostService) dropImage(ctx context.Context, ref, url string) {
	dropImage(ctx, s.images, ref, url)
}

func dropImage(ctx context.Context, images storage.ImageStore, ref, url string) {
	ref = storage.Ref(ref, url)
	if ref == "" || images == nil {
		return
	}
	if err := images.Delete(ctx, ref); err != nil {
		logrus.WithFields(logrus.Fields{"ref": ref, "error": err.Error()}).Warn("image delete failed")
	}
}

type postCount struct {
	PostID uint
	N      int64
}

// decorate attaches author, like count, liked flag, comment count and comments to posts.
// Every aggregate is one query over the whole batch. comments is a count of recent
// comments per post, or allComments / noComments.
func (s *PostService) decorate(ctx context.Context, db *gorm.DB, viewerID uint, posts []domain.Post, comments int) ([]PostView, error) {
	views := make([]PostView, len(posts))
	if len(posts) == 0 {
		return views, nil
	}
	db = db.WithContext(ctx)
	ids := make([]uint, len(posts))
	userIDs := make([]uint, 0, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		userIDs = append(userIDs, p.UserID)
	}

	likes, err := countByPost(db.Model(&domain.Like{}), ids)
	if err != nil {
		return nil, err
	}
	commentCounts, err := countByPost(db.Model(&domain.Comment{}), ids)
	if err != nil {
		return nil, err
	}
	liked := map[uint]bool{}
	if viewerID != 0 {
		var likedIDs []uint
		if err := db.Model(&domain.Like{}).Where("user_id = ? AND post_id IN ?", viewerID, ids).Pluck("post_id", &likedIDs).Error; err != nil {
			return nil, err
		}
		for _, id := range likedIDs {
			liked[id] = true
		}
	}

	var rows []domain.Comment
	switch {
	case comments == allComments:
		err = db.Where("post_id IN ?", ids).Order("created_at DESC").Order("id DESC").Find(&rows).Error
	case comments > 0:
		rows, err = recentComments(db, ids, comments)
	}
	if err != nil {
		return nil, err
	}
	for _, c := range rows {
		userIDs = append(userIDs, c.UserID)
	}

	authors, err := loadAuthors(ctx, db, userIDs)
	if err != nil {
		return nil, err
	}
	byPost := make(map[uint][]CommentView, len(posts))
	for _, c := range rows {
		byPost[c.PostID] = append(byPost[c.PostID], commentView(c, authors))
	}

	for i, p := range posts {
		cs := byPost[p.ID]
		if cs == nil {
			cs = []CommentView{}
		}
		views[i] = PostView{
			ID:           p.ID,
			Content:      p.Content,
			Image:        p.Image,
			CreatedAt:    p.CreatedAt,
			Likes:        likes[p.ID],
			Liked:        liked[p.ID],
			Comments:     cs,
			CommentCount: commentCounts[p.ID],
			User:         authors[p.UserID],
		}
	}
	return views, nil
}

func countByPost(q *gorm.DB, ids []uint) (map[uint]int64, error) {
	var rows []postCount
	if err := q.Select("post_id, COUNT(*) AS n").Where("post_id IN ?", ids).Group("post_id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]int64, len(rows))
	for _, r := range rows {
		out[r.PostID] = r.N
	}
	return out, nil
}

// recentComments returns up to n newest comments of each post, newest first
func recentComments(db *gorm.DB, postIDs []uint, n int) ([]domain.Comment, error) {
	var ids []uint
	err := db.Raw(`SELECT id FROM (
		SELECT id, ROW_NUMBER() OVER (PARTITION BY post_id ORDER BY created_at DESC, id DESC) AS rn
		FROM comments WHERE post_id IN ?
	) ranked WHERE rn <= ?`, postIDs, n).Scan(&ids).Error
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	var rows []domain.Comment
	err = db.Where("id IN ?", ids).Order("created_at DESC").Order("id DESC").Find(&rows).Error
	return rows, err
}

func commentView(c domain.Comment, authors map[uint]domain.PublicUser) CommentView {
	return CommentView{ID: c.ID, PostID: c.PostID, Content: c.Content, CreatedAt: c.CreatedAt, User: authors[c.UserID]}
}
