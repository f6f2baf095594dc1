package repository

import (
	"context"
	"errors"
	"testing"

	"interu/internal/database"
	"interu/internal/models"
	"interu/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_TransactionRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	store := NewStore(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "rollback")

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx *Store) error {
		if err := tx.Notifications.CreateBatch(ctx, []*models.Notification{
			{UserID: user.ID, Kind: models.NotificationNewChat, Body: "never"},
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := store.Notifications.CountUnread(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRatingRepository_UniquePerRater(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRatingRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Rating{ChatID: 1, RaterID: 2, Score: 5}))
	err := repo.Create(ctx, &models.Rating{ChatID: 1, RaterID: 2, Score: 1})
	assert.True(t, database.IsUniqueViolation(err))
	require.NoError(t, repo.Create(ctx, &models.Rating{ChatID: 1, RaterID: 3, Score: 1}))

	ratings, err := repo.ListByChat(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, ratings, 2)
}

func TestReportRepository_ListFiltersByStatus(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewReportRepository(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner")
	reporter := testutil.CreateUser(t, db, "reporter")
	post := testutil.CreatePost(t, db, owner.ID, "Suspicious")

	pending := &models.Report{ReporterID: reporter.ID, PostID: post.ID, Reason: "spam", Status: models.ReportPending}
	rejected := &models.Report{ReporterID: reporter.ID, PostID: post.ID, Reason: "again", Status: models.ReportRejected}
	require.NoError(t, repo.Create(ctx, pending))
	require.NoError(t, repo.Create(ctx, rejected))

	all, err := repo.List(ctx, ReportFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	require.NotNil(t, all[0].Post)

	onlyPending, err := repo.List(ctx, ReportFilter{Status: models.ReportPending})
	require.NoError(t, err)
	require.Len(t, onlyPending, 1)
	assert.Equal(t, pending.ID, onlyPending[0].ID)
}

func TestUserRepository_ModeratorFlag(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "mod")

	isMod, err := repo.IsModerator(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, isMod)

	require.NoError(t, repo.SetModerator(ctx, user.ID, true))
	isMod, err = repo.IsModerator(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, isMod)

	mods, err := repo.ListModerators(ctx)
	require.NoError(t, err)
	require.Len(t, mods, 1)

	byEmail, err := repo.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	err = repo.SetModerator(ctx, 9999, true)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	missing, err := repo.IsModerator(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, missing)
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		name          string
		limit, offset int
		open          [2]int
		clamped       [2]int
	}{
		{"unset", 0, 0, [2]int{-1, 0}, [2]int{defaultPageSize, 0}},
		{"negative offset", 5, -2, [2]int{5, 0}, [2]int{5, 0}},
		{"over max", 500, 10, [2]int{maxPageSize, 10}, [2]int{defaultPageSize, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, o := openPage(tt.limit, tt.offset)
			assert.Equal(t, tt.open, [2]int{l, o})
			l, o = clampPage(tt.limit, tt.offset)
			assert.Equal(t, tt.clamped, [2]int{l, o})
		})
	}
}
