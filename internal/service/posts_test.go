package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social_network/internal/domain"
	"social_network/internal/service"
	"social_network/internal/storage"
	"social_network/internal/storage/storagetest"
)

func TestCreatePostNeedsContentOrImage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")

	_, err := e.posts.CreatePost(ctx, alice.ID, service.PostInput{})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.posts.CreatePost(ctx, alice.ID, service.PostInput{Content: text("   \n")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	p, err := e.posts.CreatePost(ctx, alice.ID, service.PostInput{Image: png()})
	require.NoError(t, err)
	assert.Equal(t, "https://img.test/posts/img-1.png", p.Image)
	assert.Equal(t, "alice", p.User.Username)
	assert.Empty(t, p.Comments)
}

func TestCreatePostUploadFailureLeavesNoRow(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	e.images.FailUploads = true

	_, err := e.posts.CreatePost(context.Background(), alice.ID, service.PostInput{Content: text("hi"), Image: png()})
	assert.ErrorIs(t, err, storagetest.ErrUploadFailed)
	assert.Zero(t, e.count(t, &domain.Post{}, "user_id = ?", alice.ID))
}

func TestCreatePostRejectsNonImage(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	_, err := e.posts.CreatePost(context.Background(), alice.ID, service.PostInput{
		Image: &storage.Upload{Filename: "a.txt", Data: []byte("hello")},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFeedShowsFreshPost(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	e.post(t, alice, "hi")

	feed, err := e.posts.ListFeed(context.Background(), alice.ID, page(1, 10))
	require.NoError(t, err)
	require.Len(t, feed.Posts, 1)
	p := feed.Posts[0]
	assert.Equal(t, "hi", p.Content)
	assert.Zero(t, p.Likes)
	assert.False(t, p.Liked)
	assert.Zero(t, p.CommentCount)
	assert.Equal(t, int64(1), feed.Pagination.Total)
	assert.Equal(t, 1, feed.Pagination.TotalPages)
}

func TestFeedContainsOwnAndFollowedPostsOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob, carol := e.register(t, "alice"), e.register(t, "bob"), e.register(t, "carol")
	e.post(t, alice, "from alice")
	e.post(t, bob, "from bob")
	e.post(t, carol, "from carol")
	require.NoError(t, e.users.Follow(ctx, alice.ID, bob.ID))

	feed, err := e.posts.ListFeed(ctx, alice.ID, page(1, 10))
	require.NoError(t, err)
	var got []string
	for _, p := range feed.Posts {
		got = append(got, p.Content)
	}
	assert.Equal(t, []string{"from bob", "from alice"}, got)
}

func TestFeedPagesDoNotOverlap(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	for i := 0; i < 12; i++ {
		e.post(t, alice, fmt.Sprintf("post %d", i))
	}

	seen := map[uint]bool{}
	for pg := 1; pg <= 3; pg++ {
		feed, err := e.posts.ListFeed(ctx, alice.ID, page(pg, 5))
		require.NoError(t, err)
		assert.Equal(t, 3, feed.Pagination.TotalPages)
		assert.Equal(t, int64(12), feed.Pagination.Total)
		for _, p := range feed.Posts {
			assert.False(t, seen[p.ID], "post %d returned twice", p.ID)
			seen[p.ID] = true
		}
	}
	assert.Len(t, seen, 12)

	first, err := e.posts.ListFeed(ctx, alice.ID, page(1, 5))
	require.NoError(t, err)
	assert.Equal(t, "post 11", first.Posts[0].Content)
}

func TestFeedCarriesFiveNewestComments(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.register(t, "alice"), e.register(t, "bob")
	p := e.post(t, alice, "hello")
	for i := 0; i < 7; i++ {
		_, err := e.posts.AddComment(ctx, bob.ID, p.ID, fmt.Sprintf("c%d", i))
		require.NoError(t, err)
	}
	require.NoError(t, e.posts.LikePost(ctx, bob.ID, p.ID))

	feed, err := e.posts.ListFeed(ctx, alice.ID, page(1, 10))
	require.NoError(t, err)
	got := feed.Posts[0]
	assert.Equal(t, int64(7), got.CommentCount)
	assert.Equal(t, int64(1), got.Likes)
	assert.False(t, got.Liked)
	require.Len(t, got.Comments, service.RecentComments)
	assert.Equal(t, "c6", got.Comments[0].Content)
	assert.Equal(t, "c2", got.Comments[4].Content)
	assert.Equal(t, "bob", got.Comments[0].User.Username)

	full, err := e.posts.GetPost(ctx, bob.ID, p.ID)
	require.NoError(t, err)
	assert.Len(t, full.Comments, 7)
	assert.True(t, full.Liked)
}

func TestListUserPosts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.register(t, "alice"), e.register(t, "bob")
	e.post(t, alice, "one")
	e.post(t, alice, "two")
	e.post(t, bob, "other")

	p := page(1, 10)
	res, err := e.posts.ListUserPosts(ctx, bob.ID, "alice", &p)
	require.NoError(t, err)
	require.Len(t, res.Posts, 2)
	assert.Equal(t, "two", res.Posts[0].Content)

	_, err = e.posts.ListUserPosts(ctx, bob.ID, "nobody", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListUserPostsWithoutPageReturnsEverything(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	for i := 0; i < 12; i++ {
		e.post(t, alice, fmt.Sprintf("post %d", i))
	}

	res, err := e.posts.ListUserPosts(ctx, alice.ID, "alice", nil)
	require.NoError(t, err)
	require.Len(t, res.Posts, 12)
	assert.Equal(t, "post 11", res.Posts[0].Content)
	assert.Equal(t, int64(12), res.Pagination.Total)
	assert.Equal(t, 1, res.Pagination.TotalPages)

	p := page(2, 5)
	res, err = e.posts.ListUserPosts(ctx, alice.ID, "alice", &p)
	require.NoError(t, err)
	require.Len(t, res.Posts, 5)
	assert.Equal(t, "post 6", res.Posts[0].Content)
	assert.Equal(t, 3, res.Pagination.TotalPages)
}

func TestUpdatePost(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.register(t, "alice"), e.register(t, "bob")
	p, err := e.posts.CreatePost(ctx, alice.ID, service.PostInput{Content: text("draft"), Image: png()})
	require.NoError(t, err)

	_, err = e.posts.UpdatePost(ctx, bob.ID, p.ID, service.PostInput{Content: text("hijack")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.posts.UpdatePost(ctx, alice.ID, 9999, service.PostInput{Content: text("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// image still present, so empty text is fine
	updated, err := e.posts.UpdatePost(ctx, alice.ID, p.ID, service.PostInput{Content: text(""), Image: png()})
	require.NoError(t, err)
	assert.Empty(t, updated.Content)
	assert.Equal(t, "https://img.test/posts/img-2.png", updated.Image)
	assert.Equal(t, []string{"posts/img-1"}, e.images.Deleted)

	textOnly := e.post(t, alice, "words")
	_, err = e.posts.UpdatePost(ctx, alice.ID, textOnly.ID, service.PostInput{Content: text(" ")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeletePostRemovesCommentsAndLikes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.register(t, "alice"), e.register(t, "bob")
	p, err := e.posts.CreatePost(ctx, alice.ID, service.PostInput{Content: text("bye"), Image: png()})
	require.NoError(t, err)
	_, err = e.posts.AddComment(ctx, bob.ID, p.ID, "nice")
	require.NoError(t, err)
	require.NoError(t, e.posts.LikePost(ctx, bob.ID, p.ID))

	assert.ErrorIs(t, e.posts.DeletePost(ctx, bob.ID, p.ID), domain.ErrForbidden)
	require.NoError(t, e.posts.DeletePost(ctx, alice.ID, p.ID))

	assert.Zero(t, e.count(t, &domain.Comment{}, "post_id = ?", p.ID))
	assert.Zero(t, e.count(t, &domain.Like{}, "post_id = ?", p.ID))
	assert.Zero(t, e.count(t, &domain.Notification{}, "post_id = ?", p.ID))
	assert.Equal(t, []string{"posts/img-1"}, e.images.Deleted)

	_, err = e.posts.ListComments(ctx, p.ID, page(1, 10))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, e.posts.DeletePost(ctx, alice.ID, p.ID), domain.ErrNotFound)
}

func TestDeletePostRefreshesCommenterStats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.register(t, "alice"), e.register(t, "bob")
	p := e.post(t, alice, "short lived")
	_, err := e.posts.AddComment(ctx, bob.ID, p.ID, "first")
	require.NoError(t, err)

	prof, err := e.users.GetProfile(ctx, alice.ID, "bob")
	require.NoError(t, err)
	require.Equal(t, int64(1), prof.Stats.Comments)

	require.NoError(t, e.posts.DeletePost(ctx, alice.ID, p.ID))

	prof, err = e.users.GetProfile(ctx, alice.ID, "bob")
	require.NoError(t, err)
	assert.Zero(t, prof.Stats.Comments)
}
