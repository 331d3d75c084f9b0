package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social_network/internal/domain"
)

func TestNotificationFeed(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.register(t, "alice"), e.register(t, "bob")
	p := e.post(t, alice, "hi there")
	require.NoError(t, e.posts.LikePost(ctx, bob.ID, p.ID))
	c, err := e.posts.AddComment(ctx, bob.ID, p.ID, "great post")
	require.NoError(t, err)
	require.NoError(t, e.users.Follow(ctx, bob.ID, alice.ID))

	feed, err := e.notifications.List(ctx, alice.ID, 10)
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 3)
	assert.Equal(t, int64(3), feed.UnreadCount)
	assert.Equal(t, domain.NotificationFollow, feed.Notifications[0].Type)
	assert.Equal(t, "bob", feed.Notifications[0].Sender.Username)
	assert.Equal(t, "hi there", feed.Notifications[1].PostContent)

	limited, err := e.notifications.List(ctx, alice.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited.Notifications, 1)

	commentNote := feed.Notifications[1]
	require.Equal(t, domain.NotificationComment, commentNote.Type)
	preview, err := e.notifications.Comment(ctx, alice.ID, commentNote.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, preview.ID)
	assert.Equal(t, "great post", preview.Content)

	_, err = e.notifications.Comment(ctx, alice.ID, feed.Notifications[2].ID) // a like
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.notifications.Comment(ctx, bob.ID, commentNote.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkRead(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.register(t, "alice"), e.register(t, "bob")
	require.NoError(t, e.users.Follow(ctx, bob.ID, alice.ID))
	p := e.post(t, alice, "hi")
	require.NoError(t, e.posts.LikePost(ctx, bob.ID, p.ID))

	feed, err := e.notifications.List(ctx, alice.ID, 10)
	require.NoError(t, err)
	id := feed.Notifications[0].ID

	assert.ErrorIs(t, e.notifications.MarkRead(ctx, bob.ID, id), domain.ErrNotFound)
	require.NoError(t, e.notifications.MarkRead(ctx, alice.ID, id))
	require.NoError(t, e.notifications.MarkRead(ctx, alice.ID, id))

	feed, err = e.notifications.List(ctx, alice.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), feed.UnreadCount)
	assert.True(t, feed.Notifications[0].IsRead)

	require.NoError(t, e.notifications.MarkAllRead(ctx, alice.ID))
	require.NoError(t, e.notifications.MarkAllRead(ctx, alice.ID))
	feed, err = e.notifications.List(ctx, alice.ID, 10)
	require.NoError(t, err)
	assert.Zero(t, feed.UnreadCount)
}
