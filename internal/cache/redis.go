// Package cache provides Redis caching utilities for the application.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"interu/internal/middleware"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// InitRedis connects to addr (host:port or redis:// URL). On any failure the
// client stays nil and every helper in this package degrades to a no-op.
func InitRedis(addr string) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			middleware.Logger.Warn("invalid REDIS_URL, continuing without cache", slog.String("error", err.Error()))
			client = nil
			return
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	c := redis.NewClient(opts)
	c.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("Redis unreachable, continuing without cache", slog.String("error", err.Error()))
		_ = c.Close()
		client = nil
		return
	}
	client = c
	middleware.Logger.Info("Redis connected successfully")
}

// GetClient returns the current Redis client instance.
func GetClient() *redis.Client {
	return client
}

// SetClient swaps the package client. Tests point it at miniredis.
func SetClient(c *redis.Client) {
	if c != nil {
		c.AddHook(metricsHook{})
	}
	client = c
}

// Close releases the client, if any.
func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}
