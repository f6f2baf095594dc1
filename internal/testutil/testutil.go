// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"interu/internal/config"
	"interu/internal/database"
	"interu/internal/middleware"
	"interu/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TestConfig mirrors config.test.yml.
func TestConfig() *config.Config {
	return &config.Config{
		JWTSecret:      "test-secret-with-enough-length-1234",
		JWTIssuer:      "interu-api",
		JWTAudience:    "interu-client",
		Port:           "0",
		DBDriver:       "sqlite",
		DBSchemaMode:   database.SchemaModeAuto,
		Env:            "test",
		AllowedOrigins: "http://localhost:5173",
	}
}

// NewDB opens an isolated in-memory sqlite database with the full schema.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	return openDB(t, fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(uuid.NewString(), "-", "")))
}

// NewFileDB opens a file-backed sqlite database for tests that write from
// several goroutines. Writers take the lock at BEGIN and wait on it instead
// of failing with SQLITE_BUSY.
func NewFileDB(t testing.TB) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "interu.db")
	return openDB(t, "file:"+path+"?_busy_timeout=10000&_txlock=immediate&_journal_mode=WAL")
}

func openDB(t testing.TB, dsn string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         database.NewGormLogger(middleware.Logger),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	cfg := TestConfig()
	cfg.DBSQLitePath = dsn
	if err := database.ApplySchema(context.Background(), db, cfg); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	return db
}

// CreateUser inserts an identity with a unique email.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Email:    fmt.Sprintf("%s-%s@interu.test", username, uuid.NewString()[:8]),
		Username: username,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// CreateModerator inserts an identity holding the moderator capability.
func CreateModerator(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := CreateUser(t, db, username)
	if err := db.Model(user).Update("is_moderator", true).Error; err != nil {
		t.Fatalf("promote user: %v", err)
	}
	user.IsModerator = true
	return user
}

// CreateProfile stores a profile offering skills for userID.
func CreateProfile(t testing.TB, db *gorm.DB, userID uint, skills ...string) *models.Profile {
	t.Helper()
	profile := &models.Profile{
		UserID:        userID,
		Alias:         fmt.Sprintf("user%d", userID),
		FirstName:     "Test",
		LastName:      "User",
		Career:        "Computer Engineering",
		OfferedSkills: skills,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return profile
}

// CreatePost stores an active post owned by ownerID.
func CreatePost(t testing.TB, db *gorm.DB, ownerID uint, title string) *models.SkillPost {
	t.Helper()
	post := &models.SkillPost{
		OwnerID:       ownerID,
		Title:         title,
		Description:   "Looking to trade lessons",
		OfferedSkills: []string{"go"},
		SoughtSkills:  []string{"calculus"},
		Visibility:    models.PostActive,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}
