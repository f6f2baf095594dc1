// Package bootstrap prepares the database, Redis and development fixtures
// shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"interu/internal/cache"
	"interu/internal/config"
	"interu/internal/database"
	"interu/internal/middleware"
	"interu/internal/models"
	"interu/internal/repository"
	"interu/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemo bool
	Seed     seed.Options
}

// InitRuntime connects to DB and Redis, ensures the development moderator and
// optionally loads the demo dataset.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := EnsureDevModerator(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development moderator: %w", err)
	}

	if opts.SeedDemo {
		if _, err := seed.NewSeeder(db, opts.Seed).Run(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

// EnsureDevModerator creates or promotes the configured moderator account.
// It only acts in development with DEV_BOOTSTRAP_MODERATOR enabled.
func EnsureDevModerator(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapModerator {
		return nil
	}

	email := strings.TrimSpace(strings.ToLower(cfg.DevModeratorEmail))
	if email == "" {
		email = "moderator@interu.local"
	}
	if cfg.DevModeratorPassword == "" {
		return fmt.Errorf("DEV_MODERATOR_PASSWORD must be set when DEV_BOOTSTRAP_MODERATOR is enabled")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.DevModeratorPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash moderator password: %w", err)
	}

	store := repository.NewStore(db)
	var userID uint
	err = store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := tx.Users.GetByEmail(ctx, email)
		switch {
		case models.ErrorCode(err) == models.CodeNotFound:
			user = &models.User{
				Email:        email,
				Username:     "moderator",
				PasswordHash: string(hashed),
				IsModerator:  true,
			}
			if err := tx.Users.Create(ctx, user); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.Users.SetModerator(ctx, user.ID, true); err != nil {
				return err
			}
		}
		userID = user.ID
		return nil
	})
	if err != nil {
		return err
	}

	middleware.Logger.Info("development moderator ensured",
		slog.Uint64("user_id", uint64(userID)),
		slog.String("email", email),
	)
	return nil
}
