package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	"github.com/use-agent/statuswatch/cleaner"
	"github.com/use-agent/statuswatch/engine"
	"github.com/use-agent/statuswatch/models"
)

// RegexPrefix marks a selector as a regular expression over the raw body.
const RegexPrefix = "regex:"

// GenericTag prefixes generic extractor faults.
const GenericTag = "Generic"

// Sentinel results of the generic extractor.
const (
	NoRegexMatches = "No regex matches found"
	NoElements     = "No elements found with given selector"
	NoTitle        = "No title"
	NoContent      = "No content"
)

const (
	selectorTextLimit = 100
	searchLineLimit   = 150
	summaryTextLimit  = 100
)

// GenericExtractor scrapes any page with a GET, then applies the first
// applicable strategy: regex, CSS selector, free-text search, or a
// title-and-first-paragraph summary.
type GenericExtractor struct {
	fetcher engine.Fetcher
	timeout time.Duration
}

// NewGenericExtractor creates a GenericExtractor.
func NewGenericExtractor(fetcher engine.Fetcher, timeout time.Duration) *GenericExtractor {
	return &GenericExtractor{fetcher: fetcher, timeout: timeout}
}

func (g *GenericExtractor) Extract(ctx context.Context, req models.ScrapeRequest) models.Status {
	ctx, span := tracer.Start(ctx, "GenericExtractor.Extract", trace.WithAttributes(
		attribute.String("url", req.TargetURL),
		attribute.String("mode", modeOf(req)),
	))
	defer span.End()

	res, err := g.fetcher.Fetch(ctx, &engine.FetchRequest{URL: req.TargetURL, Timeout: g.timeout})
	if err != nil {
		return recordFault(span, models.Fault(GenericTag, err))
	}
	slog.InfoContext(ctx, "website response received", "url", req.TargetURL, "status", res.StatusCode)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.Body))
	if err != nil {
		return recordFault(span, models.Fault(GenericTag, err))
	}
	root := doc.Get(0)
	if root == nil {
		return recordFault(span, models.Fault(GenericTag, errors.New("empty document")))
	}

	var status models.Status
	switch {
	case strings.HasPrefix(req.Selector, RegexPrefix):
		status = matchRegex(strings.TrimPrefix(req.Selector, RegexPrefix), res.Body)
	case req.Selector != "":
		status = matchSelector(root, req.Selector)
	case req.SearchTerm != "":
		status = searchText(root, req.SearchTerm)
	default:
		status = summarize(doc)
	}

	if status.IsFault() {
		return recordFault(span, status)
	}
	slog.InfoContext(ctx, "generic extraction finished", "mode", modeOf(req), "kind", status.Kind.String())
	return status
}

func modeOf(req models.ScrapeRequest) string {
	switch {
	case strings.HasPrefix(req.Selector, RegexPrefix):
		return "regex"
	case req.Selector != "":
		return "selector"
	case req.SearchTerm != "":
		return "search"
	default:
		return "summary"
	}
}

// matchRegex applies pattern case-insensitively to the raw body.
func matchRegex(pattern, body string) models.Status {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return models.Fault(GenericTag, fmt.Errorf("invalid pattern: %w", err))
	}
	m, ok := firstFindAll(re, body)
	if !ok {
		return models.NotFound(NoRegexMatches)
	}
	return models.Success("Found: " + m)
}

// firstFindAll returns the first match the way a find-all would report it:
// the whole match without groups, the group with one, a tuple with several.
func firstFindAll(re *regexp.Regexp, body string) (string, bool) {
	m := re.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	switch re.NumSubexp() {
	case 0:
		return m[0], true
	case 1:
		return m[1], true
	default:
		parts := make([]string, 0, len(m)-1)
		for _, g := range m[1:] {
			parts = append(parts, "'"+g+"'")
		}
		return "(" + strings.Join(parts, ", ") + ")", true
	}
}

func matchSelector(root *html.Node, selector string) models.Status {
	text, ok, err := cleaner.SelectFirstText(root, selector)
	if err != nil {
		return models.Fault(GenericTag, err)
	}
	if !ok {
		return models.NotFound(NoElements)
	}
	if cleaner.RuneLen(text) > selectorTextLimit {
		return models.Success("Content: " + cleaner.Truncate(text, selectorTextLimit) + "...")
	}
	return models.Success("Content: " + text)
}

func searchText(root *html.Node, term string) models.Status {
	text := cleaner.Text(root)
	needle := strings.ToLower(term)

	if !strings.Contains(strings.ToLower(text), needle) {
		return models.NotFound(fmt.Sprintf("Term '%s' not found on page", term))
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(strings.ToLower(line), needle) {
			return models.Success("Found: " + cleaner.Truncate(strings.TrimSpace(line), searchLineLimit) + "...")
		}
	}
	return models.Success(fmt.Sprintf("Term '%s' found on page", term))
}

func summarize(doc *goquery.Document) models.Status {
	title := NoTitle
	if t := doc.Find("title").First(); t.Length() > 0 {
		title = cleaner.StrippedText(t.Get(0))
	}
	content := NoContent
	if p := doc.Find("p").First(); p.Length() > 0 {
		content = cleaner.Truncate(cleaner.StrippedText(p.Get(0)), summaryTextLimit)
	}
	return models.Success(fmt.Sprintf("Page: %s | Content: %s...", title, content))
}
