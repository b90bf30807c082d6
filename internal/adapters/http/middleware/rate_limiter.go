package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/adapters/http/dto"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/domain"
)

// RedisRateLimiter is a distributed token bucket keyed by client IP.
// Generation is expensive, so admission happens before the request ever
// reaches the pipeline.
type RedisRateLimiter struct {
	Client   *redis.Client
	Capacity float64
	FillRate float64
	TTL      time.Duration
}

func NewRedisRateLimiter(client *redis.Client, capacity, fillrate float64, ttl time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		Client:   client,
		Capacity: capacity,
		FillRate: fillrate,
		TTL:      ttl,
	}
}

func (r *RedisRateLimiter) TokensKey(ip string) string {
	return fmt.Sprintf("rate_limit:%s:tokens", ip)
}
func (r *RedisRateLimiter) LastKey(ip string) string { return fmt.Sprintf("rate_limit:%s:last", ip) }

// AllowRequest returns true if a token is granted, false otherwise.
func (r *RedisRateLimiter) AllowRequest(ctx context.Context, ip string) (bool, error) {
	now := time.Now().UnixNano()

	script := redis.NewScript(`
local tokensKey = KEYS[1]
local lastKey   = KEYS[2]
local capacity  = tonumber(ARGV[1])
local fillRate  = tonumber(ARGV[2]) -- tokens per second
local now       = tonumber(ARGV[3]) -- nanoseconds
local ttl       = tonumber(ARGV[4]) -- seconds

local tokens = tonumber(redis.call("GET", tokensKey))
local last   = tonumber(redis.call("GET", lastKey))

if not tokens or not last then
  tokens = capacity
  last = now
else
  local elapsed = math.max(0, now - last) / 1e9
  local to_add = elapsed * fillRate
  tokens = math.min(capacity, tokens + to_add)
  last = now
end

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call("SET", tokensKey, tokens, "EX", ttl)
redis.call("SET", lastKey, last, "EX", ttl)

return allowed
`)

	keys := []string{
		r.TokensKey(ip),
		r.LastKey(ip),
	}

	args := []interface{}{
		r.Capacity,
		r.FillRate,
		now,
		int64(r.TTL / time.Second),
	}

	res, err := script.Run(ctx, r.Client, keys, args...).Int()
	if err != nil {
		return false, domain.NewDomainError(domain.ErrCodeExternal, "redis is not responding", err)
	}

	return res == 1, nil
}

func RateLimiterMiddleware(limiter *RedisRateLimiter, logger domain.LoggingRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		log := logger.With("service", "rate_limiter", "request_id", c.GetString("RequestID"))
		if ip == "" {
			log.Warn("extract_user_ip", "reason", "invalid_user_ip")
			httpErr := dto.HttpError{Message: "invalid ip", Code: domain.ErrCodeValidation, StatusCode: http.StatusBadRequest}
			c.AbortWithStatusJSON(httpErr.StatusCode, httpErr)
			return
		}

		allowed, err := limiter.AllowRequest(c.Request.Context(), ip)
		if err != nil {
			// fail open, the device gate still bounds the real work
			log.Warn("rate_limit_check_failed", "reason", err.Error())
			c.Next()
			return
		}

		if !allowed {
			log.Warn("rate_limit_check", "reason", "rate_limit_exceeded", "user_ip", ip)
			httpErr := dto.MapErr(domain.ErrTooManyRequests)
			c.AbortWithStatusJSON(httpErr.StatusCode, httpErr)
			return
		}
		c.Next()
	}
}
