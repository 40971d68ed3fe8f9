package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/statuswatch/models"
	"github.com/use-agent/statuswatch/scraper"
)

// DemoURL is scraped by the demo endpoint when no url query is given.
const DemoURL = "https://collegeadmissions.gndu.ac.in/studentArea/GNDUEXAMRESULT.aspx"

// Scraper runs the extraction pipeline.
type Scraper interface {
	Scrape(ctx context.Context, req models.ScrapeRequest) models.Status
}

// ScrapeDemo returns a handler for GET /api/v1/scrape/demo.
//
// Runs the pipeline with the fixed demo search term. With the demo gate
// disabled this performs a real fetch.
func ScrapeDemo(sc Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		target := c.DefaultQuery("url", DemoURL)
		st := sc.Scrape(c.Request.Context(), models.ScrapeRequest{
			TargetURL:  target,
			SearchTerm: scraper.FixedDemoSentinel,
		})
		c.JSON(http.StatusOK, models.ScrapeResponse{
			Result:     st.String(),
			StatusKind: st.Kind.String(),
			TargetURL:  target,
			SearchTerm: scraper.FixedDemoSentinel,
		})
	}
}
