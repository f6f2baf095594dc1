package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCheckRateLimit_BypassedOutsideProduction(t *testing.T) {
	for _, env := range []string{"test", "development"} {
		t.Run(env, func(t *testing.T) {
			t.Setenv("APP_ENV", env)
			allowed, err := CheckRateLimit(context.Background(), nil, "chats", "user:1", 1, time.Minute)
			assert.NoError(t, err)
			assert.True(t, allowed)
		})
	}
}

func TestCheckRateLimit_NilRedis(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	allowed, err := CheckRateLimit(context.Background(), nil, "chats", "user:1", 1, time.Minute)
	assert.Error(t, err)
	assert.False(t, allowed)
}

func TestCheckRateLimit_WindowCounting(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "messages", "user:7", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := CheckRateLimit(ctx, rdb, "messages", "user:7", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.True(t, mr.TTL("rl:messages:user:7") > 0)

	mr.FastForward(2 * time.Minute)
	allowed, err = CheckRateLimit(ctx, rdb, "messages", "user:7", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimit_Middleware(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	_, rdb := newTestRedis(t)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(3))
		return c.Next()
	})
	app.Post("/reports", RateLimit(rdb, 1, time.Minute, "file_report"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/reports", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/reports", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimitWithPolicy_FailClosed(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer func() { _ = rdb.Close() }()

	app := fiber.New()
	app.Get("/closed", RateLimitWithPolicy(rdb, 5, time.Minute, FailClosed, "closed"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/open", RateLimit(rdb, 5, time.Minute, "open"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/closed", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
