// Package middleware provides common gin middleware.
//
// This package includes:
//   - Recovery: panic recovery with JSON error response
//   - RequestID: adds a unique request ID to each request
//   - Logger: structured request logging
//   - CORS: Cross-Origin Resource Sharing support
//   - Timeout: per-request deadline on the request context
package middleware

import "github.com/gin-gonic/gin"

// Chain applies middlewares to an engine in the order provided.
func Chain(engine *gin.Engine, middlewares ...gin.HandlerFunc) {
	for _, m := range middlewares {
		engine.Use(m)
	}
}
