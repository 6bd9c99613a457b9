package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/civicfix/civicfix-api/internal/models"
	"github.com/civicfix/civicfix-api/pkg/config"
	appErrors "github.com/civicfix/civicfix-api/pkg/errors"
	"github.com/civicfix/civicfix-api/pkg/response"
)

// RateLimit caps writes per authenticated user per UTC day using a Redis
// counter. The INCR result carries the decision; the key expires at the
// day boundary. When Redis is unreachable the request is allowed through,
// rate limiting is a throttle and not a correctness control.
func RateLimit(client *redis.Client, cfg config.RateLimitConfig, scope string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if !cfg.Enabled || client == nil {
			c.Next()
			return
		}

		value, exists := c.Get(ContextUserKey)
		if !exists {
			c.Next()
			return
		}
		claims, ok := value.(*models.JWTClaims)
		if !ok {
			c.Next()
			return
		}

		now := time.Now().UTC()
		key := fmt.Sprintf("%s:%s:%s:%s", cfg.KeySpace, scope, claims.UserID, now.Format("2006-01-02"))

		count, err := client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			logger.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			dayEnd := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
			client.ExpireAt(c.Request.Context(), key, dayEnd)
		}

		if count > int64(cfg.PerDay) {
			response.Error(c, appErrors.Clone(appErrors.ErrRateLimited, fmt.Sprintf("daily limit of %d reached", cfg.PerDay)))
			c.Abort()
			return
		}

		c.Next()
	}
}
