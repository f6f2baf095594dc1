package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

// rateLimitBypassed reports whether APP_ENV disables throttling.
func rateLimitBypassed() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development":
		return true
	}
	return false
}

// CheckRateLimit increments the counter for (resource, id) and reports whether
// the caller is still within limit for the current window.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if rateLimitBypassed() {
		return true, nil
	}
	if rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return cnt <= int64(limit), nil
}

// RateLimit returns a Fiber middleware enforcing `limit` requests per `window`.
// It keys by authenticated userID when present, otherwise by remote IP, and
// fails open when Redis is unavailable.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy returns a Fiber middleware enforcing `limit` requests per `window` with a specific failure policy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id string
		if uid, ok := c.Locals("userID").(uint); ok {
			id = fmt.Sprintf("user:%d", uid)
		} else {
			id = "ip:" + c.IP()
		}

		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		allowed, err := CheckRateLimit(c.UserContext(), rdb, resource, id, limit, window)
		if err != nil {
			if policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit store unavailable, failing closed",
					slog.String("resource", resource),
					slog.String("error", err.Error()),
				)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
				})
			}
			return c.Next()
		}

		if !allowed {
			RateLimitRejections.WithLabelValues(resource).Inc()
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
