package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	redisx "snapcap/service/storage/redis"
	"snapcap/tools/errs"
	"snapcap/tools/httpx"
)

// Sliding window over a Redis sorted set. Shared across instances, unlike
// SlidingWindow.
const luaSlidingWindow = `
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max    = tonumber(ARGV[3])
redis.call("ZREMRANGEBYSCORE", key, "-inf", now - window)
local n = redis.call("ZCARD", key)
if n >= max then
  return 0
end
redis.call("ZADD", key, now, now .. "-" .. math.random(1000000))
redis.call("PEXPIRE", key, window)
return 1
`

// RateLimitRedis is the cross-process variant for multi-instance deployments.
func RateLimitRedis(window time.Duration, max int) gin.HandlerFunc {
	return func(c *gin.Context) {
		rdb, ok := redisx.TryGetRedis()
		if !ok {
			c.Next()
			return
		}
		key := CurrentUserID(c)
		if key == "" {
			key = c.ClientIP()
		}
		res, err := rdb.Eval(c.Request.Context(), luaSlidingWindow,
			[]string{"rate:" + key},
			time.Now().UnixMilli(), window.Milliseconds(), max,
		).Int()
		if err != nil {
			// limiter trouble must not take down the request path
			c.Next()
			return
		}
		if res == 0 {
			httpx.Fail(c, errs.ErrRateLimited.WrapMsg(fmt.Sprintf("key=%s", key)))
			return
		}
		c.Next()
	}
}
