package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/recipe-management/backend/internal/actor"
	"github.com/pageza/recipe-management/backend/internal/apperrors"
	"github.com/pageza/recipe-management/backend/internal/logger"
	"github.com/pageza/recipe-management/backend/internal/metrics"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// ErrRateLimited is rendered when a caller exceeds its window.
var ErrRateLimited = apperrors.New("RATE_LIMITED", "rate limit exceeded", http.StatusTooManyRequests)

// RateLimiter is a fixed window counter kept in Redis.
type RateLimiter struct {
	redis  redis.UniversalClient
	config RateLimitConfig
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(client redis.UniversalClient, config RateLimitConfig) *RateLimiter {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "rate_limit:recipe_writes"
	}
	return &RateLimiter{redis: client, config: config, now: time.Now}
}

// Middleware rejects callers over their limit with 429. The caller is the
// actor when one is known, otherwise the client IP. Redis failures let the
// request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := actor.FromContext(c.Request.Context())
		if caller == actor.System {
			caller = "ip:" + c.ClientIP()
		}

		allowed, remaining, reset, err := rl.IsAllowed(c.Request.Context(), caller)
		if err != nil {
			logger.WithModule("ratelimit").Warn("rate limit check failed", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if !allowed {
			metrics.RateLimited.Inc()
			retry := int(reset.Sub(rl.now()).Seconds())
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.Abort()
			RespondError(c, ErrRateLimited.WithMessage(
				fmt.Sprintf("exceeded %d requests per %v", rl.config.Limit, rl.config.Window)))
			return
		}

		c.Next()
	}
}

// IsAllowed counts one request for caller and reports whether it fits in the
// current window, how many remain and when the window resets.
func (rl *RateLimiter) IsAllowed(ctx context.Context, caller string) (bool, int, time.Time, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	key := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, caller, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incr.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}
