package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/rental-listing-service/internal/config"
)

// tokenBucketScript keeps {tokens, stamp} in a hash.  Tokens are added in
// whole refill intervals since stamp, capped at capacity.  One token is
// taken when available.  Returns {allowed, remaining, retry_after_ms}.
//
// KEYS[1] bucket key
// ARGV    now_ms, capacity, refill, interval_ms, ttl_s
var tokenBucketScript = redis.NewScript(`
local now, cap, refill, every, ttl =
	tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])

local h = redis.call('HMGET', KEYS[1], 'tokens', 'stamp')
local tokens, stamp = tonumber(h[1]), tonumber(h[2])
if not tokens or not stamp then
	tokens, stamp = cap, now
end

if every > 0 and refill > 0 and now > stamp then
	local n = math.floor((now - stamp) / every)
	if n > 0 then
		tokens = math.min(cap, tokens + n * refill)
		stamp = stamp + n * every
	end
end

local ok, wait = 0, 0
if tokens >= 1 then
	ok, tokens = 1, tokens - 1
else
	wait = math.max(0, every - (now - stamp))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'stamp', stamp)
redis.call('EXPIRE', KEYS[1], ttl)
return { ok, tokens, wait }
`)

// bucketDecision is the decoded script reply.
type bucketDecision struct {
	allowed   bool
	remaining int64
	retryMs   int64
}

func decodeDecision(v interface{}) (bucketDecision, bool) {
	arr, ok := v.([]interface{})
	if !ok || len(arr) != 3 {
		return bucketDecision{}, false
	}
	return bucketDecision{
		allowed:   asInt64(arr[0]) == 1,
		remaining: asInt64(arr[1]),
		retryMs:   asInt64(arr[2]),
	}, true
}

// NewTokenBucket limits requests per key (see buildRateKey).  Redis
// failures let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttlSecs := int64(cfg.TTL / time.Second)
	limit := strconv.Itoa(cfg.Capacity)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			reply, err := tokenBucketScript.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(), cfg.Capacity, cfg.RefillTokens, cfg.RefillInterval.Milliseconds(), ttlSecs,
			).Result()
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("ratelimit: redis error, allowing request")
				return next(c)
			}
			d, ok := decodeDecision(reply)
			if !ok {
				log.Warn().Str("key", key).Interface("reply", reply).Msg("ratelimit: unexpected script reply")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if d.allowed {
				return next(c)
			}

			secs := retryAfterSeconds(d.retryMs)
			h.Set("Retry-After", strconv.Itoa(secs))
			log.Debug().Str("key", key).Int64("retry_ms", d.retryMs).Msg("ratelimit: blocked")
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "too_many_requests",
				"retry_after": secs,
			})
		}
	}
}

func retryAfterSeconds(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int(math.Ceil(float64(ms) / 1000))
}

// asInt64 accepts the reply types go-redis produces for Lua numbers.
func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	return 0
}

// defaultRateParts is used when RATE_LIMIT_KEY_STRATEGY is empty or names
// an unknown component.
var defaultRateParts = []string{"ip", "user", "route"}

// buildRateKey joins the prefix with the components named by the key
// strategy, an underscore-separated subset of ip, user and route (for
// example "ip_route").
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts := strings.Split(strings.ToLower(cfg.KeyStrategy), "_")
	for _, p := range parts {
		if p != "ip" && p != "user" && p != "route" {
			parts = defaultRateParts
			break
		}
	}

	key := []string{cfg.Prefix}
	for _, p := range parts {
		switch p {
		case "ip":
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			key = append(key, "ip", ip)
		case "user":
			key = append(key, "user", identity(c))
		case "route":
			key = append(key, "route", c.Request().Method+" "+c.Path())
		}
	}
	return strings.Join(key, ":")
}
