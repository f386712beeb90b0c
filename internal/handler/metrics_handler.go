package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-resource-bot/internal/service"
)

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	catalog catalogSizer
}

type catalogSizer interface {
	Len() int
}

// NewMetricsHandler constructs a metrics handler. catalog backs the
// readiness probe and may be nil.
func NewMetricsHandler(metrics *service.MetricsService, catalog catalogSizer) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, catalog: catalog}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness usage.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether a non-empty catalog is loaded.
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.catalog == nil || h.catalog.Len() == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "catalog not loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "resources": h.catalog.Len()})
}
