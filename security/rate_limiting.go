package security

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

// RateLimiter enforces a fixed window per client on the public endpoints
// using a Redis counter. Authenticated requests are keyed by user id,
// anonymous ones by IP.
type RateLimiter struct {
	redis  *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(redisClient *redis.Client, perMinute int) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		limit:  int64(perMinute),
		window: time.Minute,
	}
}

// Window returns a route middleware for the given scope. The limiter fails
// open: a Redis error never blocks the request.
func (r *RateLimiter) Window(scope string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.RealIP()
		if e.Auth != nil {
			id = "user:" + e.Auth.Id
		}

		ctx := e.Request.Context()
		key := fmt.Sprintf("ratelimit:%s:%s", scope, id)

		count, err := r.redis.Incr(ctx, key).Result()
		if err != nil {
			return e.Next()
		}
		if count == 1 {
			r.redis.Expire(ctx, key, r.window)
		}
		if count > r.limit {
			return e.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Rate limit exceeded. Please try again later.",
			})
		}

		return e.Next()
	}
}
