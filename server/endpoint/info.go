package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/subtitler/version"
)

var startTime = time.Now()

// InfoResponse is the /info body.
type InfoResponse struct {
	Service    string        `json:"service"`
	Build      *version.Info `json:"build"`
	Version    string        `json:"version"`
	Components []string      `json:"components,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	Uptime     string        `json:"uptime"`
}

// Info reports build information, uptime and the names of the registered
// components. checker may be nil.
func Info(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		build := version.Get()
		resp := InfoResponse{
			Service:   serviceName,
			Build:     build,
			Version:   build.Short(),
			StartedAt: startTime.UTC(),
			Uptime:    time.Since(startTime).Round(time.Second).String(),
		}
		if checker != nil {
			for _, h := range checker(c.Request.Context()) {
				resp.Components = append(resp.Components, h.Name)
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}
