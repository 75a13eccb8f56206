package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/booking-reconciliation/internal/config"
)

// tokenBucketScript refills continuously at ARGV[3] tokens per
// millisecond up to ARGV[2] and takes one token when available.  It
// returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
    local now = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local per_ms = tonumber(ARGV[3])
    local ttl_ms = tonumber(ARGV[4])

    local s = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
    local tokens = tonumber(s[1]) or capacity
    local ts = tonumber(s[2]) or now
    tokens = math.min(capacity, tokens + math.max(0, now - ts) * per_ms)

    local allowed, wait = 0, 0
    if tokens >= 1 then
        allowed = 1
        tokens = tokens - 1
    elseif per_ms > 0 then
        wait = math.ceil((1 - tokens) / per_ms)
    end

    redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', now)
    redis.call('PEXPIRE', KEYS[1], ttl_ms)
    return { allowed, math.floor(tokens), wait }
`)

// NewTokenBucket limits requests per key with a Redis-backed token
// bucket.  It is a pass-through when disabled or when rdb is nil, and
// fails open on Redis errors so an outage never blocks imports.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	perMs := float64(cfg.RefillTokens) / float64(cfg.RefillInterval.Milliseconds())

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			vals, err := tokenBucketScript.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(), cfg.Capacity, perMs, cfg.TTL.Milliseconds()).Int64Slice()
			if err != nil || len(vals) != 3 {
				if cfg.Debug {
					c.Logger().Warnf("[ratelimit] key=%s: result %v err %v", key, vals, err)
				}
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(vals[1], 10))
			if vals[0] == 1 {
				return next(c)
			}
			secs := int(math.Ceil(float64(vals[2]) / 1000.0))
			h.Set("Retry-After", strconv.Itoa(secs))
			return c.JSON(http.StatusTooManyRequests, map[string]any{
				"error":       "too_many_requests",
				"message":     "rate limit exceeded",
				"retry_after": secs,
			})
		}
	}
}

// rateKey builds the bucket key from the configured strategy, a "_"
// separated combination of ip, operator and route.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts := []string{cfg.Prefix}
	for _, p := range strings.Split(strings.ToLower(cfg.KeyStrategy), "_") {
		switch p {
		case "ip":
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			parts = append(parts, "ip", ip)
		case "operator", "user":
			parts = append(parts, "op", OperatorID(c))
		case "route":
			parts = append(parts, "route", c.Request().Method+" "+c.Path())
		}
	}
	return strings.Join(parts, ":")
}
