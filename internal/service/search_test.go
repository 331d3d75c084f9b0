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

func TestSearchUsers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	e.register(t, "Alicia")
	bob := e.register(t, "bob")
	require.NoError(t, e.users.Follow(ctx, bob.ID, alice.ID))

	_, err := e.search.Users(ctx, bob.ID, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	res, err := e.search.Users(ctx, bob.ID, "ALI")
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "Alicia", res[0].Username)
	assert.Equal(t, "alice", res[1].Username)
	assert.True(t, res[1].IsFollowing)

	// wildcards match literally
	res, err = e.search.Users(ctx, bob.ID, "%")
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSearchPostsCapped(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	for i := 0; i < service.SearchLimit+5; i++ {
		e.post(t, alice, fmt.Sprintf("Go tip #%d", i))
	}
	e.post(t, alice, "unrelated")

	res, err := e.search.Posts(ctx, alice.ID, "go TIP")
	require.NoError(t, err)
	assert.Len(t, res, service.SearchLimit)
	assert.Equal(t, fmt.Sprintf("Go tip #%d", service.SearchLimit+4), res[0].Content)
	assert.Equal(t, "alice", res[0].User.Username)
}
