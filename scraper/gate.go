package scraper

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/use-agent/statuswatch/models"
)

// Gate can answer a scrape request before any fetch happens.
type Gate interface {
	// Intercept returns ok=true with a status when the request is handled.
	Intercept(ctx context.Context, req models.ScrapeRequest) (models.Status, bool)
}

// Sentinel search-term substrings reserved for simulation.
const (
	RandomDemoSentinel = "DEMO123"
	FixedDemoSentinel  = "12345DEMO"
	FixedDemoResult    = "Pass - SGPA: 9.25"
)

// DemoStatuses is the pool the random demo mode draws from.
var DemoStatuses = []string{
	"Result Pending",
	"Pass - SGPA: 8.75",
	"Pass - SGPA: 9.25",
	"Result Under Review",
	"Pass - SGPA: 8.90",
	"Application Approved",
	"Document Verification Required",
}

// DemoGate simulates results for sentinel search terms so the change
// detection path can be exercised without a real site.
type DemoGate struct {
	intN func(n int) int
}

// NewDemoGate creates a DemoGate backed by math/rand/v2.
func NewDemoGate() *DemoGate {
	return &DemoGate{intN: rand.IntN}
}

// NewDemoGateWithSource uses intN to pick from DemoStatuses. intN must
// return a value in [0, n) and be safe for concurrent use.
func NewDemoGateWithSource(intN func(n int) int) *DemoGate {
	return &DemoGate{intN: intN}
}

// Intercept handles the two sentinels; the random one wins when both appear.
func (g *DemoGate) Intercept(ctx context.Context, req models.ScrapeRequest) (models.Status, bool) {
	switch {
	case strings.Contains(req.SearchTerm, RandomDemoSentinel):
		status := DemoStatuses[g.intN(len(DemoStatuses))]
		slog.InfoContext(ctx, "demo mode: returning random status", "status", status)
		return models.Success(status), true

	case strings.Contains(req.SearchTerm, FixedDemoSentinel):
		slog.InfoContext(ctx, "demo mode: returning fixed result", "status", FixedDemoResult)
		return models.Success(FixedDemoResult), true
	}
	return models.Status{}, false
}
