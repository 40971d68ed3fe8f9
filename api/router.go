package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/statuswatch/api/handler"
	"github.com/use-agent/statuswatch/api/middleware"
	"github.com/use-agent/statuswatch/cache"
	"github.com/use-agent/statuswatch/config"
	"github.com/use-agent/statuswatch/engine"
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Config    *config.Config
	Trackers  handler.Trackers
	Scraper   handler.Scraper
	Fetcher   engine.Fetcher
	Previewer handler.Previewer
	Cache     *cache.Cache
	DB        handler.Pinger

	NotifyChannels  int
	RegisteredSites int
	StartTime       time.Time
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (or Anonymous when disabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health needs no auth.
	v1.GET("/health", handler.Health(d.DB, handler.HealthInfo{
		StartTime:       d.StartTime,
		DemoMode:        cfg.Demo.Enabled,
		NotifyChannels:  d.NotifyChannels,
		RegisteredSites: d.RegisteredSites,
	}))

	// Protected group: auth, then rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	} else {
		protected.Use(middleware.Anonymous())
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Trackers
	protected.POST("/trackers", handler.CreateTracker(d.Trackers))
	protected.GET("/trackers", handler.ListTrackers(d.Trackers))
	protected.GET("/trackers/:id", handler.GetTracker(d.Trackers))
	protected.POST("/trackers/:id/refresh", handler.RefreshTracker(d.Trackers))
	protected.PUT("/trackers/:id/status", handler.SetTrackerStatus(d.Trackers))
	protected.DELETE("/trackers/:id", handler.DeleteTracker(d.Trackers))

	// Profile & notifications
	protected.GET("/profile", handler.GetProfile(d.Trackers))
	protected.PUT("/profile/phone", handler.UpdatePhone(d.Trackers))
	protected.POST("/notify/test", handler.TestNotification(d.Trackers))

	// Page tools
	protected.POST("/preview", handler.Preview(d.Fetcher, d.Previewer, d.Cache))
	protected.GET("/scrape/demo", handler.ScrapeDemo(d.Scraper))

	return r
}
