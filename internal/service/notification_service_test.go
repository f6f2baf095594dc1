package service

import (
	"context"
	"testing"

	"interu/internal/cache"
	"interu/internal/models"
	"interu/internal/repository"
	"interu/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifications_ListMarkReadAndUnreadCount(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	author, respondent, _, chat := env.openChat(t)
	_, err := env.chats.PostMessage(ctx, chat.ID, respondent.ID, "hi")
	require.NoError(t, err)

	list, err := env.notifications.List(ctx, author.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.NotificationNewMessage, list[0].Kind, "newest first")
	assert.Equal(t, models.NotificationNewChat, list[1].Kind)
	require.NotNil(t, list[1].ChatID)
	assert.Equal(t, chat.ID, *list[1].ChatID)

	count, err := env.notifications.UnreadCount(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = env.notifications.MarkRead(ctx, list[0].ID, respondent.ID)
	requireCode(t, models.CodeForbidden, err)
	_, err = env.notifications.MarkRead(ctx, 9999, author.ID)
	requireCode(t, models.CodeNotFound, err)

	read, err := env.notifications.MarkRead(ctx, list[0].ID, author.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	marked, err := env.notifications.MarkAllRead(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)
}

func TestMarkAllRead_NothingUnreadIsInvalidRequest(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "quiet")

	_, err := env.notifications.MarkAllRead(ctx, user.ID)
	requireCode(t, models.CodeInvalidRequest, err)

	_, respondent, _, _ := env.openChat(t)
	_, err = env.notifications.MarkAllRead(ctx, respondent.ID)
	requireCode(t, models.CodeInvalidRequest, err)
}

func TestUnreadCount_CachedAndInvalidatedByFanOut(t *testing.T) {
	mr := withMiniredis(t)
	env := newTestEnv(t, "")
	ctx := context.Background()
	author, respondent, _, chat := env.openChat(t)

	count, err := env.notifications.UnreadCount(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.True(t, mr.Exists(cache.UnreadKey(author.ID)))

	_, err = env.chats.PostMessage(ctx, chat.ID, respondent.ID, "ping")
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.UnreadKey(author.ID)), "fan-out must drop the cached counter")

	count, err = env.notifications.UnreadCount(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestEmit_RejectsUnknownKindAndBlankTarget(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	err := env.store.Transaction(ctx, func(tx *repository.Store) error {
		_, err := env.notifications.Emit(ctx, tx, []uint{1}, models.NotificationKind("broadcast"), "x", NotificationRefs{})
		return err
	})
	assert.Error(t, err)

	err = env.store.Transaction(ctx, func(tx *repository.Store) error {
		_, err := env.notifications.Emit(ctx, tx, []uint{0}, models.NotificationNewChat, "x", NotificationRefs{})
		return err
	})
	assert.Error(t, err)
}

func TestNotifications_ListReturnsEverythingUnlessPaged(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	author, respondent, _, chat := env.openChat(t)
	for i := 0; i < 25; i++ {
		_, err := env.chats.PostMessage(ctx, chat.ID, respondent.ID, "ping")
		require.NoError(t, err)
	}

	all, err := env.notifications.List(ctx, author.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 26)

	page, err := env.notifications.List(ctx, author.ID, 10, 20)
	require.NoError(t, err)
	assert.Len(t, page, 6)

	capped, err := env.notifications.List(ctx, author.ID, 1000, 0)
	require.NoError(t, err)
	assert.Len(t, capped, 26)
}
