package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/statuswatch/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthInfo is the static part of the health report.
type HealthInfo struct {
	StartTime       time.Time
	DemoMode        bool
	NotifyChannels  int
	RegisteredSites int
}

// Health returns a handler for GET /api/v1/health.
//
// Reports "degraded" when the database does not answer a ping.
func Health(db Pinger, info HealthInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			err := db.Ping(ctx)
			cancel()
			if err != nil {
				slog.WarnContext(c.Request.Context(), "health: database ping failed", "error", err)
				status = "degraded"
			}
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:          status,
			Uptime:          time.Since(info.StartTime).Round(time.Second).String(),
			Version:         Version,
			DemoMode:        info.DemoMode,
			NotifyChannels:  info.NotifyChannels,
			RegisteredSites: info.RegisteredSites,
		})
	}
}
