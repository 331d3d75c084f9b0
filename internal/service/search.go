package service

import (
	"context" // Request-scoped queries
	"strings" // Query trimming

	"gorm.io/gorm" // GORM ORM library

	"social_network/internal/domain" // Models and error classes
)

// SearchLimit caps every search result list
const SearchLimit = 20

// SearchService finds users and posts by substring
type SearchService struct {
	db    *gorm.DB
	posts *PostService
}

// NewSearchService creates a SearchService; posts decorates matched posts
func NewSearchService(db *gorm.DB, posts *PostService) *SearchService {
	return &SearchService{db: db, posts: posts}
}

func searchTerm(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", domain.Invalid("search query is required")
	}
	return escapeLike(q), nil
}

// Users returns users whose username contains q, ignoring case
func (s *SearchService) Users(ctx context.Context, viewerID uint, q string) ([]UserSummary, error) {
	term, err := searchTerm(q)
	if err != nil {
		return nil, err
	}
	var users []domain.User
	if err := s.db.WithContext(ctx).
		Where("LOWER(username) LIKE ? ESCAPE '!'", term).
		Order("username").
		Limit(SearchLimit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return summarize(ctx, s.db, viewerID, users)
}

// Posts returns the newest posts whose content contains q, ignoring case
func (s *SearchService) Posts(ctx context.Context, viewerID uint, q string) ([]PostView, error) {
	term, err := searchTerm(q)
	if err != nil {
		return nil, err
	}
	var posts []domain.Post
	if err := s.db.WithContext(ctx).
		Where("LOWER(content) LIKE ? ESCAPE '!'", term).
		Order("created_at DESC").Order("id DESC").
		Limit(SearchLimit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return s.posts.decorate(ctx, s.db, viewerID, posts, RecentComments)
}
