package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	PostKeyPrefix   = "post:%d"
	UnreadKeyPrefix = "notifications:unread:%d"
	BlacklistPrefix = "blacklist:"
)

const (
	PostTTL   = 10 * time.Minute
	UnreadTTL = 2 * time.Minute
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func UnreadKey(userID uint) string {
	return fmt.Sprintf(UnreadKeyPrefix, userID)
}

func BlacklistKey(jti string) string {
	return BlacklistPrefix + jti
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidateUnread drops the cached unread counters for every user given.
func InvalidateUnread(ctx context.Context, userIDs ...uint) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, UnreadKey(id))
	}
	Invalidate(ctx, keys...)
}

// CachedCount returns the counter stored under key, if present.
func CachedCount(ctx context.Context, key string) (int64, bool) {
	if client == nil {
		return 0, false
	}
	raw, err := client.Get(ctx, key).Result()
	if err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// StoreCount caches a counter value for ttl.
func StoreCount(ctx context.Context, key string, n int64, ttl time.Duration) {
	if client != nil {
		client.Set(ctx, key, n, ttl)
	}
}

// Revoke blacklists a token id until its natural expiry.
func Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	return client.Set(ctx, BlacklistKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether jti is blacklisted. Lookup errors are returned so
// callers can pick their own failure policy.
func IsRevoked(ctx context.Context, jti string) (bool, error) {
	if client == nil || jti == "" {
		return false, nil
	}
	n, err := client.Exists(ctx, BlacklistKey(jti)).Result()
	if err != nil && err != redis.Nil {
		return false, err
	}
	return n > 0, nil
}
