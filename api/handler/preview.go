package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/statuswatch/cache"
	"github.com/use-agent/statuswatch/engine"
	"github.com/use-agent/statuswatch/models"
)

// Previewer renders fetched HTML for display.
type Previewer interface {
	Preview(rawHTML, sourceURL string) (*models.PreviewResponse, error)
}

// Preview returns a handler for POST /api/v1/preview.
//
// Flow:
//  1. Parse & validate request.
//  2. Cache lookup when max_age > 0.
//  3. Fetch the page (GET) and render it through readability + Markdown.
//  4. Cache store, respond.
func Preview(f engine.Fetcher, pv Previewer, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.PreviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		key := cache.Key(req.URL)
		if cc != nil && req.MaxAge > 0 {
			if cached, hit := cc.Get(key, req.MaxAge); hit {
				cached.CacheStatus = "hit"
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		resp, err := fetchPreview(c.Request.Context(), f, pv, req.URL)
		if err != nil {
			respondError(c, err)
			return
		}

		if cc != nil && req.MaxAge > 0 {
			cc.Set(key, resp)
			resp.CacheStatus = "miss"
		}
		c.JSON(http.StatusOK, resp)
	}
}

func fetchPreview(ctx context.Context, f engine.Fetcher, pv Previewer, url string) (*models.PreviewResponse, error) {
	res, err := f.Fetch(ctx, &engine.FetchRequest{URL: url})
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeFetchFailed, "could not fetch page", err)
	}
	return pv.Preview(res.Body, url)
}
