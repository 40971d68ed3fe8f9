package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/use-agent/statuswatch/cleaner"
	"github.com/use-agent/statuswatch/config"
	"github.com/use-agent/statuswatch/engine"
	"github.com/use-agent/statuswatch/models"
)

// FormExtractor scrapes sites that only show a result after a form POST.
// One instance serves one SiteProfile.
type FormExtractor struct {
	profile config.SiteProfile
	fetcher engine.Fetcher
	timeout time.Duration
	result  cascadia.Selector
	message cascadia.Selector
}

// NewFormExtractor validates the profile's selectors up front so a bad
// profile fails at startup instead of on every scrape.
func NewFormExtractor(profile config.SiteProfile, fetcher engine.Fetcher, timeout time.Duration) (*FormExtractor, error) {
	result, err := cleaner.CompileSelector(profile.ResultSelector)
	if err != nil {
		return nil, fmt.Errorf("site %s: result selector: %w", profile.Name, err)
	}
	f := &FormExtractor{
		profile: profile,
		fetcher: fetcher,
		timeout: timeout,
		result:  result,
	}
	if profile.MessageSelector != "" {
		f.message, err = cleaner.CompileSelector(profile.MessageSelector)
		if err != nil {
			return nil, fmt.Errorf("site %s: message selector: %w", profile.Name, err)
		}
	}
	return f, nil
}

// Form returns the ordered payload posted for searchTerm.
func (f *FormExtractor) Form(searchTerm string) []engine.Field {
	p := f.profile
	form := make([]engine.Field, 0, len(p.FormFields)+2)
	for _, ff := range p.FormFields {
		form = append(form, engine.Field{Name: ff.Name, Value: ff.Value})
	}
	form = append(form, engine.Field{Name: p.SearchField, Value: searchTerm})
	if p.Submit.Name != "" {
		form = append(form, engine.Field{Name: p.Submit.Name, Value: p.Submit.Value})
	}
	return form
}

// Extract posts the form and reads the result or message element.
func (f *FormExtractor) Extract(ctx context.Context, req models.ScrapeRequest) models.Status {
	ctx, span := tracer.Start(ctx, "FormExtractor.Extract", trace.WithAttributes(
		attribute.String("site", f.profile.Name),
		attribute.String("url", req.TargetURL),
	))
	defer span.End()

	res, err := f.fetcher.Fetch(ctx, &engine.FetchRequest{
		URL:     req.TargetURL,
		Form:    f.Form(req.SearchTerm),
		Timeout: f.timeout,
	})
	if err != nil {
		return recordFault(span, models.Fault(f.profile.ErrorTag, err))
	}
	slog.InfoContext(ctx, "site response received", "site", f.profile.Name, "status", res.StatusCode)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.Body))
	if err != nil {
		return recordFault(span, models.Fault(f.profile.ErrorTag, err))
	}

	if text, ok := firstText(doc, f.result); ok {
		status := models.Success(f.profile.ResultPrefix + text)
		slog.InfoContext(ctx, "site result found", "site", f.profile.Name, "status", status.String())
		return status
	}

	if f.message != nil {
		if text, ok := firstText(doc, f.message); ok {
			slog.WarnContext(ctx, "site reported message", "site", f.profile.Name, "message", text)
			return models.SiteError(text)
		}
	}

	return models.NotFound(f.profile.NotFoundMessage)
}

// firstText returns the trimmed text of the first match when it is non-empty.
func firstText(doc *goquery.Document, sel cascadia.Selector) (string, bool) {
	s := doc.FindMatcher(sel).First()
	if s.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(s.Text())
	return text, text != ""
}
