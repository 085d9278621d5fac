// Package router wires the assistant's HTTP routes.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"github.com/kart-io/rafiq/internal/rafiq/handler"
	"github.com/kart-io/rafiq/internal/rafiq/metrics"
)

// Register attaches the assistant routes to engine.
func Register(engine *gin.Engine, h *handler.AssistantHandler) {
	v1 := engine.Group("/v1")
	{
		v1.POST("/documents", h.Ingest)
		v1.GET("/documents/:id", h.GetDocument)
		v1.POST("/query", h.Query)
		v1.GET("/status", h.Status)
	}

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", func(c *gin.Context) {
		c.String(http.StatusOK, metrics.Get().Export("rafiq", "assistant"))
	})

	logger.Info("HTTP routes registered")
}
