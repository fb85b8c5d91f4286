package redis

import (
	"fmt"
	"time"

	"context"

	goredis "github.com/redis/go-redis/v9"
)

// RateLimiter implements a fixed-window counter per user, keyed
// ratelimit:{user_id}:messages with the window as TTL.
type RateLimiter struct {
	client *goredis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(client *goredis.Client, limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window == 0 {
		window = time.Minute
	}
	return &RateLimiter{client: client, limit: limit, window: window}
}

// AllowMessage reports whether the user may send another message in the
// current window.
func (r *RateLimiter) AllowMessage(ctx context.Context, userID int64) (bool, error) {
	key := fmt.Sprintf("ratelimit:%d:messages", userID)

	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(r.limit), nil
}
