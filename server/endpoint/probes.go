package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/subtitler/component"
)

// HealthChecker returns health reports for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// HealthResponse is the /health body.
type HealthResponse struct {
	Status     component.HealthStatus `json:"status"`
	Service    string                 `json:"service"`
	Timestamp  string                 `json:"timestamp"`
	Components []component.Health     `json:"components"`
}

// ReadinessResponse is the /ready body. Pending lists the components that
// are not healthy.
type ReadinessResponse struct {
	Status    string   `json:"status"`
	Service   string   `json:"service"`
	Pending   []string `json:"pending"`
	Timestamp string   `json:"timestamp"`
}

func probe(ctx context.Context, checker HealthChecker) []component.Health {
	if checker == nil {
		return nil
	}
	return checker(ctx)
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// Health reports overall status with every component. Only an unhealthy
// component answers 503. A missing ffmpeg shows up here.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		reports := probe(c.Request.Context(), checker)
		resp := HealthResponse{
			Status:     component.Overall(reports),
			Service:    serviceName,
			Timestamp:  now(),
			Components: reports,
		}
		code := http.StatusOK
		if resp.Status == component.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, resp)
	}
}

// Readiness answers 503 until every component is healthy. Degraded counts
// as not ready.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := ReadinessResponse{Status: "ready", Service: serviceName, Timestamp: now()}
		for _, h := range probe(c.Request.Context(), checker) {
			if h.Status != component.StatusHealthy {
				resp.Pending = append(resp.Pending, h.Name)
			}
		}
		code := http.StatusOK
		if len(resp.Pending) > 0 {
			resp.Status = "not_ready"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, resp)
	}
}
