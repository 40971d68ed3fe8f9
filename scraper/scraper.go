package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/use-agent/statuswatch/config"
	"github.com/use-agent/statuswatch/engine"
	"github.com/use-agent/statuswatch/models"
)

// Scraper is the extraction pipeline: an optional gate, then the extractor
// the registry picks for the target URL. It holds no mutable state and is
// safe for concurrent use.
type Scraper struct {
	gate     Gate
	registry *Registry
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithGate installs a gate that may answer requests before any fetch.
// Without one, every request goes to an extractor.
func WithGate(g Gate) Option {
	return func(s *Scraper) { s.gate = g }
}

// New creates a Scraper over registry.
func New(registry *Registry, opts ...Option) *Scraper {
	s := &Scraper{registry: registry}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromConfig wires one FormExtractor per site profile in front of the
// generic extractor. The demo gate is installed when cfg.Demo.Enabled.
func NewFromConfig(cfg *config.Config, fetcher engine.Fetcher) (*Scraper, error) {
	timeout := cfg.Fetch.Timeout
	routes := make([]Route, 0, len(cfg.Sites))
	for _, p := range cfg.Sites {
		fx, err := NewFormExtractor(p, fetcher, timeout)
		if err != nil {
			return nil, err
		}
		routes = append(routes, Route{Name: p.Name, Match: ContainsFold(p.Match), Extractor: fx})
	}
	registry := NewRegistry("generic", NewGenericExtractor(fetcher, timeout), routes...)

	var opts []Option
	if cfg.Demo.Enabled {
		opts = append(opts, WithGate(NewDemoGate()))
	}
	slog.Info("scraper configured", "sites", len(routes), "demo", cfg.Demo.Enabled)
	return New(registry, opts...), nil
}

// Sites returns the number of site-specific extractors.
func (s *Scraper) Sites() int { return s.registry.Len() }

// Scrape runs the pipeline for req. It never panics and always returns a
// status whose String is non-empty; failures come back as transport faults.
func (s *Scraper) Scrape(ctx context.Context, req models.ScrapeRequest) (status models.Status) {
	ctx, span := tracer.Start(ctx, "Scraper.Scrape", trace.WithAttributes(
		attribute.String("url", req.TargetURL),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "scrape panicked", "url", req.TargetURL, "panic", r)
			status = recordFault(span, models.Fault("", fmt.Errorf("panic: %v", r)))
		}
	}()

	if s.gate != nil {
		if st, ok := s.gate.Intercept(ctx, req); ok {
			span.SetAttributes(attribute.String("extractor", "demo"))
			return st
		}
	}

	if err := validateURL(req.TargetURL); err != nil {
		slog.WarnContext(ctx, "rejecting scrape", "url", req.TargetURL, "error", err)
		return recordFault(span, models.Fault("", err))
	}

	name, ex := s.registry.Resolve(req.TargetURL)
	span.SetAttributes(attribute.String("extractor", name))
	slog.InfoContext(ctx, "scrape started", "url", req.TargetURL, "extractor", name)

	status = ex.Extract(ctx, req)

	slog.InfoContext(ctx, "scrape completed",
		"url", req.TargetURL,
		"extractor", name,
		"kind", status.Kind.String(),
		"elapsed", time.Since(start),
	)
	return status
}

// RunScrapeTask is Scrape rendered to its status line.
func (s *Scraper) RunScrapeTask(ctx context.Context, targetURL, selector, searchTerm string) string {
	return s.Scrape(ctx, models.ScrapeRequest{
		TargetURL:  targetURL,
		Selector:   selector,
		SearchTerm: searchTerm,
	}).String()
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("target URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid target URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid target URL %q: scheme must be http or https", raw)
	}
	return nil
}
