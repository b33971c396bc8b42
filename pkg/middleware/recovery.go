package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
)

// RecoveryConfig defines the config for Recovery middleware.
type RecoveryConfig struct {
	// StackTrace enables logging of the panic stack trace.
	StackTrace bool
}

// DefaultRecoveryConfig is the default Recovery middleware config.
var DefaultRecoveryConfig = RecoveryConfig{
	StackTrace: true,
}

// Recovery returns a middleware that recovers from panics and responds
// with a JSON error.
func Recovery() gin.HandlerFunc {
	return RecoveryWithConfig(DefaultRecoveryConfig)
}

// RecoveryWithConfig returns a Recovery middleware with custom config.
func RecoveryWithConfig(config RecoveryConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				fields := []interface{}{
					"panic", r,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
				}
				if requestID := GetRequestID(c); requestID != "" {
					fields = append(fields, "request_id", requestID)
				}
				if config.StackTrace {
					fields = append(fields, "stack", string(debug.Stack()))
				}
				logger.Errorw("panic recovered", fields...)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    http.StatusInternalServerError,
					"message": "Internal server error",
				})
			}
		}()

		c.Next()
	}
}
