package database

import (
	"context"
	"fmt"
	"testing"

	"interu/internal/config"
	"interu/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DBDriver:     "sqlite",
		DBSQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		DBSchemaMode: SchemaModeAuto,
		Env:          "test",
	}
}

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestConfigurePool_Defaults(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, configurePool(db, &config.Config{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 25, sqlDB.Stats().MaxOpenConnections)
}

func TestConnectWithOptions_SQLiteAutoMigrates(t *testing.T) {
	db, err := ConnectWithOptions(sqliteConfig(t), ConnectOptions{ApplySchema: true})
	require.NoError(t, err)

	for _, model := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(model), "missing table for %T", model)
	}
	assert.True(t, db.Migrator().HasIndex(&models.ChatParticipant{}, "idx_chat_participants_chat_user"))
	assert.True(t, db.Migrator().HasIndex(&models.Rating{}, "idx_ratings_chat_rater"))
}

func TestIsUniqueViolation_DuplicateRating(t *testing.T) {
	db, err := ConnectWithOptions(sqliteConfig(t), ConnectOptions{ApplySchema: true})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.Rating{ChatID: 1, RaterID: 2, Score: 4}).Error)
	err = db.Create(&models.Rating{ChatID: 1, RaterID: 2, Score: 5}).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(gorm.ErrRecordNotFound))
	assert.True(t, IsNotFound(db.First(&models.Rating{}, 999).Error))
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		runSQL  bool
		runAuto bool
		wantErr bool
	}{
		{"sqlite forces auto", config.Config{DBDriver: "sqlite", DBSchemaMode: "hybrid"}, false, true, false},
		{"sqlite rejects sql", config.Config{DBDriver: "sqlite", DBSchemaMode: "sql"}, false, false, true},
		{"postgres hybrid dev", config.Config{DBDriver: "postgres", Env: "development"}, true, true, false},
		{"postgres hybrid prod", config.Config{DBDriver: "postgres", Env: "production"}, true, false, false},
		{"postgres sql", config.Config{DBDriver: "postgres", DBSchemaMode: "sql"}, true, false, false},
		{"postgres auto prod", config.Config{DBDriver: "postgres", DBSchemaMode: "auto", Env: "staging"}, false, false, true},
		{"unknown mode", config.Config{DBDriver: "postgres", DBSchemaMode: "yolo"}, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.runSQL, runSQL)
			assert.Equal(t, tt.runAuto, runAuto)
		})
	}
}

func TestGetSchemaStatus_SQLiteSkipsMigrationLog(t *testing.T) {
	cfg := sqliteConfig(t)
	db, err := ConnectWithOptions(cfg, ConnectOptions{})
	require.NoError(t, err)

	status, err := GetSchemaStatus(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.False(t, status.WillRunSQL)
	assert.True(t, status.WillRunAutoMigrate)
	assert.Empty(t, status.PendingMigrations)
}

func TestPersistentModels_IncludesExchangeEntities(t *testing.T) {
	var sawChat, sawReport bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *models.ExchangeChat:
			sawChat = true
		case *models.Report:
			sawReport = true
		}
	}
	assert.True(t, sawChat)
	assert.True(t, sawReport)
}

func TestMissingGuards(t *testing.T) {
	db, err := ConnectWithOptions(sqliteConfig(t), ConnectOptions{ApplySchema: true})
	require.NoError(t, err)
	assert.Empty(t, MissingGuards(db))

	require.NoError(t, db.Migrator().DropIndex(&models.Rating{}, "idx_ratings_chat_rater"))
	missing := MissingGuards(db)
	require.Len(t, missing, 1)
	assert.Equal(t, "ratings(chat_id, rater_id)", missing[0].Columns)
}
