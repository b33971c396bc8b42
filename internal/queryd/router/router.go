// Package router wires HTTP routes for the query service.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ariel1441/ai-rag-project-sub000/internal/queryd/handler"
)

// Register mounts all query service routes on the engine.
func Register(engine *gin.Engine, h *handler.QueryHandler) {
	engine.GET("/healthz", handler.Healthz)
	engine.GET("/metrics", h.Metrics)

	v1 := engine.Group("/v1")
	{
		v1.POST("/query", h.Query)
		v1.GET("/query/stats", h.Stats)
		v1.DELETE("/query/cache", h.ClearCache)
	}
}
