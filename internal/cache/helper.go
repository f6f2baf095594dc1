package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// GetJSON reads key into dest. It returns (false, nil) on a miss or when no
// client is configured.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and stores it under key with ttl.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside serves dest from Redis when present, otherwise calls fetch to fill
// dest and stores the result. Cache failures never fail the read.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if found, err := GetJSON(ctx, key, dest); err == nil && found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}
