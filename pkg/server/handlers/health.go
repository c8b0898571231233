package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/linkpath"
	"github.com/soundprediction/linkpath/pkg/links"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// DefaultProbeTitle is resolved by the readiness checks.
const DefaultProbeTitle = "Main Page"

const serviceName = "linkpath"

// HealthHandler handles health check requests
type HealthHandler struct {
	finder     linkpath.PathFinder
	probeTitle string
	started    time.Time
}

// NewHealthHandler creates a new health handler. finder may be nil, in which
// case the readiness checks report the service as not ready.
func NewHealthHandler(finder linkpath.PathFinder, probeTitle string) *HealthHandler {
	if probeTitle == "" {
		probeTitle = DefaultProbeTitle
	}
	return &HealthHandler{
		finder:     finder,
		probeTitle: probeTitle,
		started:    time.Now(),
	}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// LivenessCheck handles GET /live - Kubernetes liveness probe endpoint
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck handles GET /ready. The wiki counts as reachable when the
// probe title resolves, or when the API answers that the page is missing.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	wiki := h.checkWiki(ctx)
	response := gin.H{
		"status":    "ready",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": gin.H{
			"wiki": wiki,
			"system": gin.H{
				"status": "healthy",
				"uptime": time.Since(h.started).Round(time.Second).String(),
			},
		},
	}

	if wiki["status"] != "healthy" {
		response["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

// DetailedHealthCheck handles GET /health/detailed - comprehensive health information
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	startTime := time.Now()
	wiki := h.checkWiki(ctx)

	systemMetrics := h.getSystemMetrics()
	response := gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": Version,
		"build_info": gin.H{
			"git_commit": GitCommit,
			"build_time": BuildTime,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"environment": gin.H{
			"go_version": GoVersion,
		},
		"checks": gin.H{
			"wiki": wiki,
			"system": gin.H{
				"status":       "healthy",
				"uptime":       time.Since(h.started).Round(time.Second).String(),
				"memory_usage": systemMetrics.MemoryUsage,
				"goroutines":   systemMetrics.Goroutines,
				"gc_cycles":    systemMetrics.GCCycles,
				"heap_objects": systemMetrics.HeapObjects,
				"stack_usage":  systemMetrics.StackUsage,
			},
		},
		"metrics": gin.H{
			"response_time_ms": time.Since(startTime).Milliseconds(),
		},
	}

	if wiki["status"] != "healthy" {
		response["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) checkWiki(ctx context.Context) gin.H {
	if h.finder == nil {
		return gin.H{
			"status": "unhealthy",
			"error":  "path finder not initialized",
		}
	}

	start := time.Now()
	canonical, err := h.finder.Resolve(ctx, h.probeTitle)
	status := gin.H{
		"status":      "healthy",
		"operation":   "Resolve",
		"probe":       h.probeTitle,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	switch {
	case err == nil:
		status["canonical_title"] = canonical
	case errors.Is(err, links.ErrPageNotFound):
		status["note"] = "probe page missing - API reachable"
	case ctx.Err() != nil:
		status["status"] = "unhealthy"
		status["error"] = "wiki request timeout"
	default:
		status["status"] = "unhealthy"
		status["error"] = err.Error()
	}
	return status
}

// SystemMetrics holds system runtime metrics
type SystemMetrics struct {
	MemoryUsage string `json:"memory_usage"`
	Goroutines  int    `json:"goroutines"`
	GCCycles    uint32 `json:"gc_cycles"`
	HeapObjects uint64 `json:"heap_objects"`
	StackUsage  string `json:"stack_usage"`
}

// getSystemMetrics collects current system runtime metrics
func (h *HealthHandler) getSystemMetrics() SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemMetrics{
		MemoryUsage: fmt.Sprintf("%.2f MB", float64(m.Alloc)/(1024*1024)),
		Goroutines:  runtime.NumGoroutine(),
		GCCycles:    m.NumGC,
		HeapObjects: m.HeapObjects,
		StackUsage:  fmt.Sprintf("%.2f MB", float64(m.StackSys)/(1024*1024)),
	}
}
