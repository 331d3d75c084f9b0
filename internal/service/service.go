// Package service holds the application operations: each method runs one or more
// queries against the database and returns domain errors the HTTP layer can classify.
package service

import (
	"context" // Request-scoped queries
	"errors"  // Error classification
	"fmt"     // Message and key formatting
	"reflect" // Validator tag names
	"regexp"  // Username rule
	"strings" // Text checks
	"time"    // Cache TTL

	"github.com/go-playground/validator/v10" // Struct validation
	"github.com/redis/go-redis/v9"           // Redis client
	"github.com/sirupsen/logrus"             // Structured logging
	"gorm.io/gorm"                           // GORM ORM library

	"social_network/internal/domain" // Models and error classes
	"social_network/internal/utils"  // Cache helpers
)

var (
	validate      = newValidator()
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
	return v
}

// validateStruct turns validator failures into ErrValidation with a readable message
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.Invalid("%v", err)
	}
	return domain.Invalid("%s", FieldMessage(verrs[0]))
}

// FieldMessage renders one validator failure for API clients
func FieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "username":
		return fe.Field() + " may only contain letters, digits, '_' and '.'"
	default:
		return fe.Field() + " is invalid"
	}
}

// blank reports whether a text field carries no content
func blank(s string) bool { return strings.TrimSpace(s) == "" }

func findPost(ctx context.Context, db *gorm.DB, postID uint) (domain.Post, error) {
	var post domain.Post
	err := db.WithContext(ctx).First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return post, domain.NotFound("post not found")
	}
	return post, err
}

func findUserByUsername(ctx context.Context, db *gorm.DB, username string) (domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, domain.NotFound("user not found")
	}
	return user, err
}

func findUser(ctx context.Context, db *gorm.DB, id uint) (domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, domain.NotFound("user not found")
	}
	return user, err
}

// loadAuthors fetches the public fields of the given users in one query
func loadAuthors(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]domain.PublicUser, error) {
	out := make(map[uint]domain.PublicUser, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []domain.User
	if err := db.WithContext(ctx).Select("id", "username", "profile_image").Where("id IN ?", unique(ids)).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u.Public()
	}
	return out, nil
}

func unique(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// escapeLike quotes LIKE wildcards with '!' so user input matches literally
func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

// Cache fronts redis for the read paths that tolerate short staleness.
// A nil redis client turns every call into a no-op.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache keeps entries for ttl. A nil rdb disables caching.
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func (c *Cache) get(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}
	found, err := utils.GetCache(ctx, c.rdb, key, dest)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("cache read failed")
		return false
	}
	return found
}

func (c *Cache) set(ctx context.Context, key string, value any) {
	if c == nil {
		return
	}
	if err := utils.SetCache(ctx, c.rdb, key, value, c.ttl); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("cache write failed")
	}
}

func (c *Cache) forgetPrefix(ctx context.Context, prefix string) {
	if c == nil {
		return
	}
	if err := utils.DeleteCachePrefix(ctx, c.rdb, prefix); err != nil {
		logrus.WithFields(logrus.Fields{"prefix": prefix, "error": err.Error()}).Warn("cache invalidation failed")
	}
}

func (c *Cache) forgetProfiles(ctx context.Context, userIDs ...uint) {
	if c == nil || len(userIDs) == 0 {
		return
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = profileKey(id)
	}
	if err := utils.DeleteCache(ctx, c.rdb, keys...); err != nil {
		logrus.WithFields(logrus.Fields{"keys": keys, "error": err.Error()}).Warn("cache invalidation failed")
	}
}

func profileKey(userID uint) string { return fmt.Sprintf("profile:stats:%d", userID) }
