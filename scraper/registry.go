package scraper

import (
	"context"
	"strings"

	"github.com/use-agent/statuswatch/models"
)

// Extractor turns one scrape request into a status. Implementations absorb
// every fault into a StatusTransportFault and never panic on bad input.
type Extractor interface {
	Extract(ctx context.Context, req models.ScrapeRequest) models.Status
}

// URLPredicate decides whether a route handles a target URL.
type URLPredicate func(targetURL string) bool

// Route pairs a URL predicate with the extractor that serves it.
type Route struct {
	Name      string
	Match     URLPredicate
	Extractor Extractor
}

// Registry picks an extractor for a target URL. Routes are tried in order;
// the fallback serves everything else. It is immutable after construction.
type Registry struct {
	routes       []Route
	fallback     Extractor
	fallbackName string
}

// NewRegistry creates a Registry with the given fallback and routes.
func NewRegistry(fallbackName string, fallback Extractor, routes ...Route) *Registry {
	rs := make([]Route, len(routes))
	copy(rs, routes)
	return &Registry{routes: rs, fallback: fallback, fallbackName: fallbackName}
}

// Resolve returns the name and extractor for targetURL.
func (r *Registry) Resolve(targetURL string) (string, Extractor) {
	for _, route := range r.routes {
		if route.Match != nil && route.Match(targetURL) {
			return route.Name, route.Extractor
		}
	}
	return r.fallbackName, r.fallback
}

// Len returns the number of site-specific routes.
func (r *Registry) Len() int { return len(r.routes) }

// ContainsFold matches URLs containing substr, ignoring case.
func ContainsFold(substr string) URLPredicate {
	needle := strings.ToLower(substr)
	return func(targetURL string) bool {
		return strings.Contains(strings.ToLower(targetURL), needle)
	}
}
