package utils

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
}

func TestParseJWTRejectsWrongSecretAndExpiry(t *testing.T) {
	token, err := GenerateJWT(1, "secret", time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(token, "other")
	assert.Error(t, err)

	expired, err := GenerateJWT(1, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "secret")
	assert.Error(t, err)

	_, err = ParseJWT("not-a-token", "secret")
	assert.Error(t, err)
}

func TestNewPaginationTotalPages(t *testing.T) {
	assert.Equal(t, 3, NewPagination(Page{Page: 1, Limit: 5}, 11).TotalPages)
	assert.Equal(t, 2, NewPagination(Page{Page: 1, Limit: 5}, 10).TotalPages)
	assert.Equal(t, 0, NewPagination(Page{Page: 1, Limit: 5}, 0).TotalPages)
}

func TestNormalizePage(t *testing.T) {
	assert.Equal(t, Page{Page: 1, Limit: 10}, NormalizePage(0, 0, 10, 50))
	assert.Equal(t, Page{Page: 3, Limit: 50}, NormalizePage(3, 500, 10, 50))
	assert.Equal(t, 10, NormalizePage(3, 5, 10, 50).Offset())
}

func TestParsePage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=2&limit=abc", nil)
	assert.Equal(t, Page{Page: 2, Limit: 10}, ParsePage(c, 10, 50))
}

func TestOptionalPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	assert.Nil(t, OptionalPage(c, 10, 50))

	c.Request = httptest.NewRequest("GET", "/?limit=100", nil)
	p := OptionalPage(c, 10, 50)
	require.NotNil(t, p)
	assert.Equal(t, Page{Page: 1, Limit: 50}, *p)
}

func TestCacheHelpers(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	var out map[string]int
	found, err := GetCache(ctx, rdb, "missing", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetCache(ctx, rdb, "admin:users:1", map[string]int{"a": 1}, time.Minute))
	require.NoError(t, SetCache(ctx, rdb, "admin:users:2", map[string]int{"a": 2}, time.Minute))
	require.NoError(t, SetCache(ctx, rdb, "profile:bob", map[string]int{"a": 3}, time.Minute))

	found, err = GetCache(ctx, rdb, "admin:users:2", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, out["a"])

	require.NoError(t, DeleteCachePrefix(ctx, rdb, "admin:users:"))
	assert.False(t, mr.Exists("admin:users:1"))
	assert.False(t, mr.Exists("admin:users:2"))
	assert.True(t, mr.Exists("profile:bob"))
}

func TestCacheHelpersNilClient(t *testing.T) {
	ctx := context.Background()
	var out string
	found, err := GetCache(ctx, nil, "k", &out)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetCache(ctx, nil, "k", "v", time.Minute))
	assert.NoError(t, DeleteCachePrefix(ctx, nil, "k"))
}
