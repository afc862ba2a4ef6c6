// internal/pkg/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Limiter struct {
	client *redis.Client
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

// Allow checks the fixed-window counter for the given key. The window is
// started on the first request and expires with the key.
func (l *Limiter) Allow(ctx context.Context, key string, maxRequests int64, window time.Duration) (bool, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	// Set expiration on first request
	if count == 1 {
		l.client.Expire(ctx, redisKey, window)
	}

	return count <= maxRequests, nil
}
