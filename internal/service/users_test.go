package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social_network/internal/domain"
	"social_network/internal/service"
)

func TestFollowRules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.register(t, "alice"), e.register(t, "bob")

	assert.ErrorIs(t, e.users.Follow(ctx, alice.ID, alice.ID), domain.ErrValidation)
	assert.ErrorIs(t, e.users.Follow(ctx, alice.ID, 9999), domain.ErrNotFound)

	require.NoError(t, e.users.Follow(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, e.users.Follow(ctx, alice.ID, bob.ID), domain.ErrConflict)
	assert.Equal(t, int64(1), e.count(t, &domain.Notification{}, "recipient_id = ? AND type = ?", bob.ID, domain.NotificationFollow))

	require.NoError(t, e.users.Unfollow(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, e.users.Unfollow(ctx, alice.ID, bob.ID), domain.ErrValidation)
}

func TestGetProfileCountsAndCache(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.register(t, "alice"), e.register(t, "bob")
	p := e.post(t, alice, "hi")
	require.NoError(t, e.posts.LikePost(ctx, bob.ID, p.ID))
	_, err := e.posts.AddComment(ctx, alice.ID, p.ID, "self reply")
	require.NoError(t, err)
	require.NoError(t, e.users.Follow(ctx, bob.ID, alice.ID))

	prof, err := e.users.GetProfile(ctx, bob.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, service.ProfileStats{Posts: 1, Followers: 1, Following: 0, Comments: 1, Likes: 1}, prof.Stats)
	assert.True(t, prof.IsFollowing)

	key := fmt.Sprintf("profile:stats:%d", alice.ID)
	assert.True(t, e.redis.Exists(key))

	// the cached stats carry no viewer flag
	prof, err = e.users.GetProfile(ctx, alice.ID, "alice")
	require.NoError(t, err)
	assert.False(t, prof.IsFollowing)
	assert.Equal(t, int64(1), prof.Stats.Followers)

	require.NoError(t, e.users.Unfollow(ctx, bob.ID, alice.ID))
	assert.False(t, e.redis.Exists(key))
	prof, err = e.users.GetProfile(ctx, bob.ID, "alice")
	require.NoError(t, err)
	assert.Zero(t, prof.Stats.Followers)

	_, err = e.users.GetProfile(ctx, bob.ID, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFollowerLists(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob, carol := e.register(t, "alice"), e.register(t, "bob"), e.register(t, "carol")
	require.NoError(t, e.users.Follow(ctx, bob.ID, alice.ID))
	require.NoError(t, e.users.Follow(ctx, carol.ID, alice.ID))
	require.NoError(t, e.users.Follow(ctx, alice.ID, carol.ID))

	followers, err := e.users.ListFollowers(ctx, alice.ID, "alice", page(1, 10))
	require.NoError(t, err)
	require.Len(t, followers.Users, 2)
	assert.Equal(t, "carol", followers.Users[0].Username)
	assert.True(t, followers.Users[0].IsFollowing)
	assert.False(t, followers.Users[1].IsFollowing)
	assert.Equal(t, int64(2), followers.Pagination.Total)

	following, err := e.users.ListFollowing(ctx, alice.ID, "alice", page(1, 10))
	require.NoError(t, err)
	require.Len(t, following.Users, 1)
	assert.Equal(t, "carol", following.Users[0].Username)
}

func TestUpdateProfileReplacesImage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")

	u, err := e.users.UpdateProfile(ctx, alice.ID, service.ProfileInput{Bio: text("hello"), Image: png()})
	require.NoError(t, err)
	assert.Equal(t, "hello", u.Bio)
	assert.Equal(t, "https://img.test/posts/img-1.png", u.ProfileImage)

	u, err = e.users.UpdateProfile(ctx, alice.ID, service.ProfileInput{Image: png()})
	require.NoError(t, err)
	assert.Equal(t, "hello", u.Bio)
	assert.Equal(t, "https://img.test/posts/img-2.png", u.ProfileImage)
	assert.Equal(t, []string{"posts/img-1"}, e.images.Deleted)
}
