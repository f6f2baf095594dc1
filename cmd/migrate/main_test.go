package main

import (
	"context"
	"testing"

	"interu/internal/models"
	"interu/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyGuards(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	require.NoError(t, verifyGuards(ctx, db, nil, nil))

	require.NoError(t, db.Migrator().DropIndex(&models.ChatParticipant{}, "idx_chat_participants_chat_user"))
	err := verifyGuards(ctx, db, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat_participants(chat_id, user_id)")
}

func TestMigrateDown_RequiresNumericVersion(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	assert.Error(t, migrateDown(ctx, db, nil, nil))
	assert.Error(t, migrateDown(ctx, db, nil, []string{"latest"}))
}

func TestCommandsAreDocumented(t *testing.T) {
	for name, cmd := range commands {
		assert.NotEmpty(t, cmd.help, name)
		assert.NotNil(t, cmd.run, name)
	}
}
