// internal/middleware/ratelimit_middleware.go
package middleware

import (
	"net/http"
	"time"

	"beatreach-service/internal/pkg/ratelimit"
	"beatreach-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitMiddleware caps request volume per client IP over a fixed
// window. Limiter failures fail open so redis downtime never blocks
// ingestion.
func RateLimitMiddleware(limiter *ratelimit.Limiter, maxRequests int64, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "sync:" + c.ClientIP()

		allowed, err := limiter.Allow(c.Request.Context(), key, maxRequests, window)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			response.Error(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}

		c.Next()
	}
}
