package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"interu/internal/config"
	"interu/internal/middleware"

	"gorm.io/gorm"
)

const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaStatus describes what ApplySchema would do for a config.
type SchemaStatus struct {
	Mode               string
	Environment        string
	WillRunSQL         bool
	WillRunAutoMigrate bool
	AppliedVersions    []int
	PendingMigrations  []Migration
}

func isProdLikeEnv(env string) bool {
	e := strings.ToLower(strings.TrimSpace(env))
	return e == "production" || e == "prod" || e == "staging" || e == "stage"
}

func normalizedSchemaMode(cfg *config.Config) string {
	mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))
	if mode == "" {
		return SchemaModeHybrid
	}
	return mode
}

// schemaPolicy decides between embedded SQL migrations and AutoMigrate. The
// SQL scripts target PostgreSQL, so sqlite always uses AutoMigrate.
func schemaPolicy(cfg *config.Config) (runSQL bool, runAuto bool, err error) {
	mode := normalizedSchemaMode(cfg)
	prodLike := isProdLikeEnv(cfg.Env)

	if cfg.DBDriver == "sqlite" {
		if mode == SchemaModeSQL {
			return false, false, fmt.Errorf("DB_SCHEMA_MODE=sql requires the postgres driver")
		}
		return false, true, nil
	}

	switch mode {
	case SchemaModeSQL:
		return true, false, nil
	case SchemaModeAuto:
		if prodLike {
			return false, false, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q", cfg.Env)
		}
		return false, true, nil
	case SchemaModeHybrid:
		return true, !prodLike, nil
	default:
		return false, false, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
}

// ApplySchema brings the database schema up to date per the configured mode.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	runSQL, runAuto, err := schemaPolicy(cfg)
	if err != nil {
		return err
	}

	if runSQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}

	if runAuto {
		middleware.Logger.Info("Running GORM AutoMigrate", slog.String("mode", normalizedSchemaMode(cfg)), slog.String("env", cfg.Env))
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	return nil
}

// GetSchemaStatus reports the schema policy plus applied and pending migrations.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	runSQL, runAuto, err := schemaPolicy(cfg)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{
		Mode:               normalizedSchemaMode(cfg),
		Environment:        cfg.Env,
		WillRunSQL:         runSQL,
		WillRunAutoMigrate: runAuto,
	}
	if !runSQL {
		return status, nil
	}

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	status.AppliedVersions = applied

	appliedSet := make(map[int]bool, len(applied))
	for _, version := range applied {
		appliedSet[version] = true
	}
	for _, m := range GetMigrations() {
		if !appliedSet[m.Version] {
			status.PendingMigrations = append(status.PendingMigrations, m)
		}
	}

	return status, nil
}
