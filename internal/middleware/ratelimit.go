package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/quickshow/quickshow-api/internal/config"
)

// tokenBucketScript refills and consumes atomically inside Redis so
// concurrent API nodes share one bucket per client.
//
// KEYS[1] bucket hash, ARGV: capacity, refillTokens, refillIntervalMs,
// nowMs, cost, ttlSec. Returns {allowed, remaining, retryAfterMs}.
var tokenBucketScript = redis.NewScript(`
local key      = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill   = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local now      = tonumber(ARGV[4])
local cost     = tonumber(ARGV[5])
local ttl      = tonumber(ARGV[6])

local data   = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(data[1])
local ts     = tonumber(data[2])

if tokens == nil then
  tokens = capacity
  ts = now
end

if now > ts then
  local elapsed = now - ts
  local ticks = math.floor(elapsed / interval)
  if ticks > 0 then
    tokens = math.min(capacity, tokens + ticks * refill)
    ts = ts + ticks * interval
  end
end

local allowed = 0
local retry = 0
if tokens >= cost then
  allowed = 1
  tokens = tokens - cost
else
  local need = cost - tokens
  local ticks = math.ceil(need / refill)
  retry = (ts + ticks * interval) - now
  if retry < 0 then retry = 0 end
end

redis.call('HMSET', key, 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', key, ttl)

return {allowed, tokens, retry}
`)

// currentUserID identifies the client for rate limiting. Authenticated
// requests are keyed by user, everything else by remote IP.
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if ip := c.RealIP(); ip != "" {
		return "ip:" + ip
	}
	return "anon"
}

func buildRateKey(prefix string, c echo.Context) string {
	return fmt.Sprintf("%s:%s:%s", prefix, currentUserID(c), c.Path())
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	default:
		return 0
	}
}

// NewTokenBucket returns a Redis-backed token bucket rate limiter.
// When disabled, or Redis is unavailable at request time, requests
// pass through so the API never fails closed on its limiter.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := buildRateKey(cfg.Prefix, c)

			res, err := tokenBucketScript.Run(ctx, rdb, []string{key},
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				nowMillis(),
				1,
				int64(cfg.TTL.Seconds()),
			).Result()
			if err != nil {
				// Limiter outage must not take the API down.
				return next(c)
			}

			vals, ok := res.([]interface{})
			if !ok || len(vals) != 3 {
				return next(c)
			}
			allowed := asInt64(vals[0]) == 1
			remaining := asInt64(vals[1])
			retryAfterMs := asInt64(vals[2])

			c.Response().Header().Set("X-RateLimit-Limit", strconv.FormatInt(int64(cfg.Capacity), 10))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if !allowed {
				retrySec := (retryAfterMs + 999) / 1000
				if retrySec < 1 {
					retrySec = 1
				}
				c.Response().Header().Set("Retry-After", strconv.FormatInt(retrySec, 10))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"success": false,
					"message": "too many requests",
				})
			}
			return next(c)
		}
	}
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
