package engine

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Fetcher is the interface every content fetcher implements.
type Fetcher interface {
	// Fetch performs exactly one outbound request. A non-2xx status is an error.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// Field is one ordered form field.
type Field struct {
	Name  string
	Value string
}

// FetchRequest contains everything a fetcher needs for one request.
type FetchRequest struct {
	URL     string
	Headers map[string]string

	// Form, when non-empty, turns the request into a urlencoded POST.
	// Fields are encoded in slice order.
	Form []Field

	// Timeout bounds this attempt; zero uses the fetcher default.
	Timeout time.Duration
}

// FetchResult is the output of a successful fetch.
type FetchResult struct {
	Body       string
	StatusCode int
	FinalURL   string
}

// EncodeForm encodes fields as application/x-www-form-urlencoded, keeping
// their order (url.Values.Encode sorts by key).
func EncodeForm(fields []Field) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(f.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.Value))
	}
	return b.String()
}
