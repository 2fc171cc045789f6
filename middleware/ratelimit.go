package middleware

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Counter counts hits on key within a fixed window and reports how long the
// window has left.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type RedisCounter struct {
	redis *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{redis: client}
}

func (r *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := r.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	remaining := ttl.Val()
	if remaining < 0 {
		remaining = window
	}
	return incr.Val(), remaining, nil
}

// RateLimit allows limit requests per client IP per window. When the counter
// is unavailable requests pass through.
func RateLimit(counter Counter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + c.ClientIP()
		count, remaining, err := counter.Incr(c.Request.Context(), key, window)
		if err != nil {
			log.Printf("Rate limiter unavailable: %v", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		left := int64(limit) - count
		if left < 0 {
			left = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(left, 10))

		if count > int64(limit) {
			c.Header("Retry-After", strconv.Itoa(int(remaining.Seconds()+0.5)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests from this IP, please try again later."})
			return
		}
		c.Next()
	}
}
