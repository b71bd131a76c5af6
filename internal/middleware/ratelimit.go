package middleware

import (
    "fmt"
    "log"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/lunchly/internal/config"
)

// writeBucket spends one token from the hash at KEYS[1] and refills one token
// per ARGV[3] ms, capped at ARGV[2].  Reply: {allowed, left, wait_ms}.
var writeBucket = redis.NewScript(`
local now = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local every = tonumber(ARGV[3])

local b = redis.call('HMGET', KEYS[1], 'left', 'at')
local left = tonumber(b[1]) or burst
local at = tonumber(b[2]) or now

local regained = math.floor((now - at) / every)
if regained > 0 then
    left = left + regained
    at = at + regained * every
end
if left >= burst then
    left = burst
    at = now
end

local allowed = 0
local wait = 0
if left > 0 then
    allowed = 1
    left = left - 1
else
    wait = every - (now - at)
end

redis.call('HSET', KEYS[1], 'left', left, 'at', at)
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return {allowed, left, wait}
`)

// ReservationWriteLimit throttles reservation creates and updates with a
// Redis token bucket.  With the target scope each customer and each
// reservation has its own bucket.  Redis failures let the write through.
func ReservationWriteLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := writeLimitKey(cfg, c)
            args := []interface{}{
                time.Now().UnixMilli(),
                cfg.Burst,
                cfg.RefillEvery.Milliseconds(),
                cfg.IdleTTL().Milliseconds(),
            }
            vals, err := writeBucket.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
            if err != nil {
                log.Printf("ratelimit: %s: %v", key, err)
                return next(c)
            }
            reply, ok := parseBucketReply(vals)
            if !ok {
                log.Printf("ratelimit: %s: unexpected reply %#v", key, vals)
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(reply.left, 10))
            if !reply.allowed {
                return rejectWrite(c, reply.wait)
            }
            return next(c)
        }
    }
}

// writeLimitKey names the bucket a write draws from:
//  target scope: <prefix>:customer:<id> on POST /v1/customers/:id/reservations,
//                <prefix>:reservation:<id> on PUT /v1/reservations/:id.
//  staff scope:  <prefix>:staff:<staff id or "anon">.
func writeLimitKey(cfg config.RateLimitConfig, c echo.Context) string {
    if cfg.Scope == config.RateScopeStaff {
        return cfg.Prefix + ":staff:" + staffID(c)
    }
    target := "reservation"
    if strings.Contains(c.Path(), "/customers/:id") {
        target = "customer"
    }
    id := c.Param("id")
    if n, err := strconv.ParseUint(id, 10, 64); err == nil {
        id = strconv.FormatUint(n, 10)
    }
    return fmt.Sprintf("%s:%s:%s", cfg.Prefix, target, id)
}

type bucketReply struct {
    allowed bool
    left    int64
    wait    time.Duration
}

func parseBucketReply(vals interface{}) (bucketReply, bool) {
    arr, ok := vals.([]interface{})
    if !ok || len(arr) != 3 {
        return bucketReply{}, false
    }
    nums := make([]int64, 3)
    for i, v := range arr {
        switch n := v.(type) {
        case int64:
            nums[i] = n
        case string:
            parsed, err := strconv.ParseInt(n, 10, 64)
            if err != nil {
                return bucketReply{}, false
            }
            nums[i] = parsed
        default:
            return bucketReply{}, false
        }
    }
    return bucketReply{
        allowed: nums[0] == 1,
        left:    nums[1],
        wait:    time.Duration(nums[2]) * time.Millisecond,
    }, true
}

// rejectWrite answers 429 with Retry-After rounded up to whole seconds.
func rejectWrite(c echo.Context, wait time.Duration) error {
    secs := int((wait + time.Second - 1) / time.Second)
    if secs < 1 {
        secs = 1
    }
    c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
    return c.JSON(http.StatusTooManyRequests, echo.Map{
        "error": fmt.Sprintf("too many reservation changes, retry in %ds", secs),
    })
}
