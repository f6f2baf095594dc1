package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"interu/internal/middleware"

	"gorm.io/gorm"
)

// MigrationStore defines the interface for tracking and applying migrations.
type MigrationStore interface {
	GetAppliedMigrations(ctx context.Context) ([]int, error)
	ApplyMigration(ctx context.Context, m Migration) error
	RevertMigration(ctx context.Context, m Migration) error
}

type migrationStore struct {
	db *gorm.DB
}

// MigrationLog represents a record of an applied migration in the database.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the database table name for MigrationLog.
func (MigrationLog) TableName() string {
	return "migration_logs"
}

// NewMigrationStore creates a new MigrationStore instance.
func NewMigrationStore(db *gorm.DB) MigrationStore {
	return &migrationStore{db: db}
}

func (s *migrationStore) GetAppliedMigrations(ctx context.Context) ([]int, error) {
	var versions []int
	if err := s.db.WithContext(ctx).Model(&MigrationLog{}).Order("version ASC").Pluck("version", &versions).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || isMissingTableError(err) {
			return []int{}, nil
		}
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	return versions, nil
}

func isMissingTableError(err error) bool {
	msg := err.Error()
	return (strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")) ||
		strings.Contains(msg, "no such table")
}

// ApplyMigration runs the up script and records it in one transaction.
func (s *migrationStore) ApplyMigration(ctx context.Context, m Migration) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.UpScript).Error; err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		if err := tx.Create(&MigrationLog{Version: m.Version, Name: m.Name}).Error; err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	middleware.Logger.Info("Migration applied", slog.Int("version", m.Version), slog.String("name", m.Name))
	return nil
}

// RevertMigration runs the down script and removes the log row in one transaction.
func (s *migrationStore) RevertMigration(ctx context.Context, m Migration) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.DownScript).Error; err != nil {
			return fmt.Errorf("failed to run rollback SQL for migration %d (%s): %w", m.Version, m.Name, err)
		}
		if err := tx.Where("version = ?", m.Version).Delete(&MigrationLog{}).Error; err != nil {
			return fmt.Errorf("failed to remove migration record %d: %w", m.Version, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	middleware.Logger.Info("Migration rolled back", slog.Int("version", m.Version))
	return nil
}

const ensureMigrationLogTableSQL = `
CREATE TABLE IF NOT EXISTS migration_logs (
	version BIGINT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// RunMigrations ensures the migration log table exists and applies all pending migrations.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).Exec(ensureMigrationLogTableSQL).Error; err != nil {
		return fmt.Errorf("failed to ensure migration logs table: %w", err)
	}
	return runPending(ctx, NewMigrationStore(db), migrations)
}

func runPending(ctx context.Context, store MigrationStore, registered []Migration) error {
	applied, err := store.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	if err := validateAppliedVersions(applied, registered); err != nil {
		return err
	}

	appliedSet := make(map[int]bool, len(applied))
	for _, v := range applied {
		appliedSet[v] = true
	}

	for _, m := range registered {
		if appliedSet[m.Version] {
			middleware.Logger.Debug("Migration already applied", slog.Int("version", m.Version), slog.String("name", m.Name))
			continue
		}
		middleware.Logger.Info("Applying migration", slog.Int("version", m.Version), slog.String("name", m.Name))
		if err := store.ApplyMigration(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func validateAppliedVersions(applied []int, registered []Migration) error {
	if len(applied) == 0 {
		return nil
	}
	known := make(map[int]struct{}, len(registered))
	for _, m := range registered {
		known[m.Version] = struct{}{}
	}

	var unknown []int
	for _, version := range applied {
		if _, ok := known[version]; !ok {
			unknown = append(unknown, version)
		}
	}
	if len(unknown) == 0 {
		return nil
	}

	sort.Ints(unknown)
	parts := make([]string, 0, len(unknown))
	for _, version := range unknown {
		parts = append(parts, fmt.Sprintf("%06d", version))
	}
	return fmt.Errorf("migration_logs contains unknown versions not present in code: %s", strings.Join(parts, ", "))
}

// RollbackMigration reverts a specific migration by version number.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	m := GetMigrationByVersion(version)
	if m == nil {
		return fmt.Errorf("migration version %d not found", version)
	}
	return rollback(ctx, NewMigrationStore(db), *m)
}

func rollback(ctx context.Context, store MigrationStore, m Migration) error {
	applied, err := store.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	for _, v := range applied {
		if v == m.Version {
			middleware.Logger.Info("Rolling back migration", slog.Int("version", m.Version), slog.String("name", m.Name))
			return store.RevertMigration(ctx, m)
		}
	}
	return fmt.Errorf("migration %d has not been applied", m.Version)
}
