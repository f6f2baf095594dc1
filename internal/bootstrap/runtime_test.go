package bootstrap

import (
	"context"
	"testing"

	"interu/internal/models"
	"interu/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestEnsureDevModerator_CreatesOnce(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := testutil.TestConfig()
	cfg.Env = "development"
	cfg.DevBootstrapModerator = true
	cfg.DevModeratorEmail = "Mod@Interu.Local"
	cfg.DevModeratorPassword = "correct horse battery"

	ctx := context.Background()
	require.NoError(t, EnsureDevModerator(ctx, cfg, db))
	require.NoError(t, EnsureDevModerator(ctx, cfg, db))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "mod@interu.local", users[0].Email)
	assert.True(t, users[0].IsModerator)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].PasswordHash), []byte("correct horse battery")))
}

func TestEnsureDevModerator_PromotesExistingUser(t *testing.T) {
	db := testutil.NewDB(t)
	existing := testutil.CreateUser(t, db, "someone")

	cfg := testutil.TestConfig()
	cfg.Env = "development"
	cfg.DevBootstrapModerator = true
	cfg.DevModeratorEmail = existing.Email
	cfg.DevModeratorPassword = "pw"

	require.NoError(t, EnsureDevModerator(context.Background(), cfg, db))

	var user models.User
	require.NoError(t, db.First(&user, existing.ID).Error)
	assert.True(t, user.IsModerator)
}

func TestEnsureDevModerator_Guards(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	cfg := testutil.TestConfig()
	cfg.DevBootstrapModerator = true
	cfg.DevModeratorPassword = "pw"
	require.NoError(t, EnsureDevModerator(ctx, cfg, db), "non-development envs are skipped")

	cfg.Env = "development"
	cfg.DevModeratorPassword = ""
	assert.Error(t, EnsureDevModerator(ctx, cfg, db))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}
