package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	redisstore "binfluencer/backend/internal/storage/redis"
)

// RateLimitByUser 按调用者限制某接口的调用频率（Redis 计数窗口）。
// Redis 不可用时放行并记日志：限流是保护措施，不应成为单点。
func RateLimitByUser(rdb *redisstore.Client, log *zap.Logger, name string, limit int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == "" {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", name, userID)
		count, err := rdb.IncrementRateLimit(c.Request.Context(), key, window)
		if err != nil {
			log.Warn("rate limit check failed, allowing request",
				zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if count > limit {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code": http.StatusTooManyRequests,
				"msg":  "操作过于频繁，请稍后再试",
			})
			return
		}

		c.Next()
	}
}
