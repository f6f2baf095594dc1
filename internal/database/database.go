// Package database handles database connections, schema migrations and
// storage error translation.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"interu/internal/config"
	"interu/internal/middleware"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database connection instance.
var DB *gorm.DB

// CustomGormLogger integrates GORM with slog
type CustomGormLogger struct {
	logger *slog.Logger
	Config logger.Config
}

// NewGormLogger returns a slog-backed GORM logger at warn level.
func NewGormLogger(l *slog.Logger) *CustomGormLogger {
	return &CustomGormLogger{
		logger: l,
		Config: logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	}
}

// LogMode sets the logging level and returns a new interface instance.
func (l *CustomGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newlogger := *l
	newlogger.Config.LogLevel = level
	return &newlogger
}

func (l *CustomGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *CustomGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *CustomGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Trace logs failed and slow queries. Unique violations are expected on the
// idempotent paths and are logged at debug.
func (l *CustomGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Config.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && IsUniqueViolation(err):
		l.logger.DebugContext(ctx, "GORM unique violation",
			slog.String("sql", sql),
			slog.String("error", err.Error()),
		)
	case err != nil && l.Config.LogLevel >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.logger.ErrorContext(ctx, "GORM query error",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
	case elapsed > l.Config.SlowThreshold && l.Config.SlowThreshold != 0 && l.Config.LogLevel >= logger.Warn:
		l.logger.WarnContext(ctx, "GORM slow query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	case l.Config.LogLevel >= logger.Info:
		l.logger.InfoContext(ctx, "GORM query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	}
}

// ConnectOptions tunes Connect.
type ConnectOptions struct {
	ApplySchema bool
}

// Connect opens the configured database and applies the schema policy.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	return ConnectWithOptions(cfg, ConnectOptions{ApplySchema: true})
}

// ConnectWithOptions opens the configured database.
func ConnectWithOptions(cfg *config.Config, opts ConnectOptions) (*gorm.DB, error) {
	dbInstance, err := gorm.Open(dialector(cfg), &gorm.Config{
		Logger:         NewGormLogger(middleware.Logger),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := configurePool(dbInstance, cfg); err != nil {
		return nil, fmt.Errorf("failed to configure pool: %w", err)
	}

	middleware.Logger.Info("Database connected successfully", slog.String("driver", dbInstance.Dialector.Name()))

	if opts.ApplySchema {
		if err := ApplySchema(context.Background(), dbInstance, cfg); err != nil {
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	DB = dbInstance
	return DB, nil
}

func dialector(cfg *config.Config) gorm.Dialector {
	if cfg.DBDriver == "sqlite" {
		return sqlite.Open(cfg.DBSQLitePath)
	}

	sslMode := cfg.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		sslMode,
	)
	return postgres.Open(dsn)
}

func configurePool(db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	maxOpen := cfg.DBMaxOpenConns
	if maxOpen == 0 {
		maxOpen = 25
	}
	maxIdle := cfg.DBMaxIdleConns
	if maxIdle == 0 {
		maxIdle = 5
	}
	lifetime := cfg.DBConnMaxLifetimeMinutes
	if lifetime == 0 {
		lifetime = 5
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(time.Duration(lifetime) * time.Minute)
	return nil
}
