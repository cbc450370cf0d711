package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-slot-booking/pkg/response"
)

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds a rate-limit key from the request
type KeyFunc func(c *gin.Context) string

// KeyByIP limits by client IP only
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath limits by client IP and route pattern, so every slot shares
// one budget on POST /slots/:slotId/book.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// Counts a hit and returns {count, pttl}; the window starts on the first hit.
var hitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

type AllowFunc func(*gin.Context) bool // return true for bypass limit

// quota is the state of one key after a hit.
type quota struct {
	limit     int
	remaining int
	resetSec  int
	exceeded  bool
}

func newQuota(limit, count int, ttl time.Duration) quota {
	q := quota{limit: limit, remaining: limit - count, exceeded: count > limit}
	if q.remaining < 0 {
		q.remaining = 0
	}
	if ttl > 0 {
		q.resetSec = int((ttl + time.Second - 1) / time.Second)
	}
	return q
}

func (q quota) writeHeaders(c *gin.Context) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(q.limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(q.remaining))
	c.Header("X-RateLimit-Reset", strconv.Itoa(q.resetSec))
	if q.exceeded && q.resetSec > 0 {
		c.Header("Retry-After", strconv.Itoa(q.resetSec))
	}
}

// RateLimit is a fixed-window limiter backed by Redis. It fails open when
// Redis is unavailable and is a no-op when rdb is nil or max <= 0.
func RateLimit(rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		res, err := hitScript.Run(c.Request.Context(), rdb, []string{keyFn(c)}, window.Milliseconds()).Slice()
		if err != nil || len(res) != 2 {
			c.Next()
			return
		}
		q := newQuota(max, toInt(res[0]), time.Duration(toInt(res[1]))*time.Millisecond)
		q.writeHeaders(c)

		if q.exceeded {
			response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", response.ErrorBody{Code: "rate_limited"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func toInt(v any) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case string:
		i, _ := strconv.Atoi(x)
		return i
	}
	return 0
}
