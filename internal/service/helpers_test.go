package service

import (
	"context"
	"testing"

	"interu/internal/cache"
	"interu/internal/featureflags"
	"interu/internal/models"
	"interu/internal/repository"
	"interu/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db            *gorm.DB
	store         *repository.Store
	notifications *NotificationService
	posts         *PostService
	profiles      *ProfileService
	chats         *ChatService
	ratings       *RatingService
	moderation    *ModerationService
}

func newTestEnv(t *testing.T, rawFlags string) *testEnv {
	t.Helper()
	return newTestEnvWithDB(t, testutil.NewDB(t), rawFlags)
}

func newTestEnvWithDB(t *testing.T, db *gorm.DB, rawFlags string) *testEnv {
	t.Helper()
	store := repository.NewStore(db)
	flags := featureflags.NewManager(rawFlags)
	notifications := NewNotificationService(store)

	return &testEnv{
		db:            db,
		store:         store,
		notifications: notifications,
		posts:         NewPostService(store),
		profiles:      NewProfileService(store),
		chats:         NewChatService(store, notifications),
		ratings:       NewRatingService(store, notifications, flags),
		moderation:    NewModerationService(store, store.Users.IsModerator, flags),
	}
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
	return mr
}

func (e *testEnv) unread(t *testing.T, userID uint, kind models.NotificationKind) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Notification{}).
		Where("user_id = ? AND kind = ? AND is_read = ?", userID, kind, false).
		Count(&n).Error)
	return n
}

// openChat seeds author A with a visible post and has respondent B open a chat on it.
func (e *testEnv) openChat(t *testing.T) (author, respondent *models.User, post *models.SkillPost, chat *models.ExchangeChat) {
	t.Helper()
	author = testutil.CreateUser(t, e.db, "author")
	respondent = testutil.CreateUser(t, e.db, "respondent")
	post = testutil.CreatePost(t, e.db, author.ID, "Guitar for Go")

	chat, err := e.chats.OpenChat(context.Background(), post.ID, respondent.ID)
	require.NoError(t, err)
	return author, respondent, post, chat
}

func requireCode(t *testing.T, code string, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, models.ErrorCode(err), "unexpected error: %v", err)
}
