package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/db/dbtest"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/models"
)

func TestMigrate_CreatesTables(t *testing.T) {
	gdb := dbtest.New(t)

	for _, table := range []string{"users", "products", "cart", "orders", "about"} {
		assert.True(t, gdb.Migrator().HasTable(table), table)
	}
}

func TestSeedAdmin_Idempotent(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()

	created, err := db.SeedAdmin(ctx, gdb, " Admin@Site.com ", "first")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = db.SeedAdmin(ctx, gdb, "admin@site.com", "second")
	require.NoError(t, err)
	assert.False(t, created)

	var users []models.User
	require.NoError(t, gdb.Find(&users).Error)
	require.Len(t, users, 1)

	assert.Equal(t, "admin@site.com", users[0].Email)
	assert.True(t, users[0].IsAdmin)
	assert.True(t, hash.CheckPassword(users[0].PasswordHash, "first"))
}

func TestSeedAdmin_RequiresCredentials(t *testing.T) {
	gdb := dbtest.New(t)

	_, err := db.SeedAdmin(context.Background(), gdb, "", "pw")
	require.Error(t, err)
}

func TestBootstrap(t *testing.T) {
	gdb := dbtest.New(t)

	_, err := db.Bootstrap(context.Background(), gdb, "admin@site.com", "pw")
	require.NoError(t, err)

	var n int64
	require.NoError(t, gdb.Model(&models.User{}).Where("is_admin = ?", true).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := db.Open(context.Background(), "mysql", "dsn", "silent")
	require.Error(t, err)

	_, err = db.Open(context.Background(), "sqlite", "", "silent")
	require.Error(t, err)
}
