package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"

	appErrors "github.com/highroller/payroll-api/pkg/errors"
	"github.com/highroller/payroll-api/pkg/response"
)

// RateLimit throttles requests per client IP using a formatted rate such as "10-M".
func RateLimit(formatted string, logger *zap.Logger) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	instance := limiter.New(memory.NewStore(), rate)

	return func(c *gin.Context) {
		key := c.ClientIP()
		result, err := instance.Get(c.Request.Context(), key)
		if err != nil {
			// The limiter store is in-process, so failing open only loses throttling.
			logger.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.Reset, 10))

		if result.Reached {
			logger.Info("rate limit reached", zap.String("ip", key), zap.String("path", c.FullPath()))
			response.Error(c, appErrors.Clone(appErrors.ErrTooManyRequests, "too many attempts, try again later"))
			c.Abort()
			return
		}
		c.Next()
	}, nil
}
