package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social_network/internal/config"
	"social_network/internal/db"
	"social_network/internal/db/dbtest"
)

func TestMigrateCreatesEveryTable(t *testing.T) {
	conn := dbtest.New(t)
	for _, table := range []string{"users", "posts", "comments", "likes", "followers", "notifications"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := db.Open(&config.Config{DBDriver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}
