package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"social_network/internal/db/dbtest"
	"social_network/internal/domain"
	"social_network/internal/service"
	"social_network/internal/storage"
	"social_network/internal/storage/storagetest"
	"social_network/internal/utils"
)

type env struct {
	db     *gorm.DB
	redis  *miniredis.Miniredis
	images *storagetest.Store

	auth          *service.AuthService
	posts         *service.PostService
	users         *service.UserService
	search        *service.SearchService
	notifications *service.NotificationService
	admin         *service.AdminService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	conn := dbtest.New(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cache := service.NewCache(rdb, time.Minute)
	images := storagetest.New()
	notifications := service.NewNotificationService(conn)
	posts := service.NewPostService(conn, images, notifications, cache)
	return &env{
		db:            conn,
		redis:         mr,
		images:        images,
		auth:          service.NewAuthService(conn, "test-secret", time.Hour),
		posts:         posts,
		users:         service.NewUserService(conn, images, notifications, cache),
		search:        service.NewSearchService(conn, posts),
		notifications: notifications,
		admin:         service.NewAdminService(conn, posts, images, cache),
	}
}

func (e *env) register(t *testing.T, username string) domain.User {
	t.Helper()
	s, err := e.auth.Register(context.Background(), service.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	return s.User
}

func (e *env) post(t *testing.T, author domain.User, content string) service.PostView {
	t.Helper()
	p, err := e.posts.CreatePost(context.Background(), author.ID, service.PostInput{Content: &content})
	require.NoError(t, err)
	return p
}

func (e *env) count(t *testing.T, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Where(where, args...).Count(&n).Error)
	return n
}

func png() *storage.Upload {
	return &storage.Upload{Filename: "pic.png", Data: storagetest.PNG}
}

func page(p, limit int) utils.Page { return utils.Page{Page: p, Limit: limit} }

func text(s string) *string { return &s }
