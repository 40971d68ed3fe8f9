package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/use-agent/statuswatch/engine"
	"github.com/use-agent/statuswatch/models"
)

func extract(body, selector, term string) models.Status {
	g := NewGenericExtractor(&fakeFetcher{body: body}, time.Second)
	return g.Extract(context.Background(), models.ScrapeRequest{
		TargetURL:  "https://example.com/page",
		Selector:   selector,
		SearchTerm: term,
	})
}

func TestGeneric_Regex(t *testing.T) {
	body := `<html><body><p>FooBar baz</p></body></html>`

	tests := []struct {
		name     string
		selector string
		want     string
	}{
		{"optional group", "regex:foo(bar)?", "Found: Bar"},
		{"no groups", "regex:baz", "Found: baz"},
		{"case insensitive", "regex:FOOBAR", "Found: FooBar"},
		{"several groups", "regex:(foo)(bar)", "Found: ('Foo', 'Bar')"},
		{"miss", "regex:quux", NoRegexMatches},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extract(body, tt.selector, "").String())
		})
	}
}

func TestGeneric_RegexUnmatchedGroupIsEmpty(t *testing.T) {
	got := extract(`<p>foo</p>`, "regex:foo(bar)?", "")
	assert.Equal(t, models.StatusSuccess, got.Kind)
	assert.Equal(t, "Found: ", got.Text)
}

func TestGeneric_InvalidRegex(t *testing.T) {
	got := extract(`<p>x</p>`, "regex:(", "")
	assert.True(t, got.IsFault())
	assert.True(t, strings.HasPrefix(got.String(), "Generic scraping error: invalid pattern"), got.String())
}

func TestGeneric_Selector(t *testing.T) {
	body := `<div class="s"> Hello <b>World</b> <script>var x = 1;</script></div><div class="s">second</div>`

	assert.Equal(t, "Content: HelloWorld", extract(body, ".s", "").String())
	assert.Equal(t, NoElements, extract(body, "#missing", "").String())
}

func TestGeneric_SelectorTruncates(t *testing.T) {
	long := strings.Repeat("é", 150)
	got := extract(`<span id="v">`+long+`</span>`, "#v", "").String()
	assert.Equal(t, "Content: "+strings.Repeat("é", 100)+"...", got)

	exact := strings.Repeat("a", 100)
	assert.Equal(t, "Content: "+exact, extract(`<span id="v">`+exact+`</span>`, "#v", "").String())
}

func TestGeneric_InvalidSelector(t *testing.T) {
	got := extract(`<p>x</p>`, "div[[", "")
	assert.True(t, got.IsFault())
	assert.True(t, strings.HasPrefix(got.String(), "Generic scraping error: "), got.String())
}

func TestGeneric_Search(t *testing.T) {
	body := "<html><body><p>Notice board</p>\n<p>  Roll 1234 has PASSED  </p>\n<p>other</p></body></html>"

	assert.Equal(t, "Found: Roll 1234 has PASSED...", extract(body, "", "passed").String())

	miss := extract(body, "", "withheld")
	assert.Equal(t, models.StatusNotFound, miss.Kind)
	assert.Equal(t, "Term 'withheld' not found on page", miss.String())
}

func TestGeneric_SearchLineTruncates(t *testing.T) {
	line := "needle " + strings.Repeat("x", 200)
	got := extract("<p>"+line+"</p>", "", "needle").String()
	assert.Equal(t, "Found: "+line[:150]+"...", got)
}

func TestGeneric_Summary(t *testing.T) {
	body := `<html><head><title> Exam Results </title></head><body><p>  Declared on Monday </p><p>ignored</p></body></html>`
	assert.Equal(t, "Page: Exam Results | Content: Declared on Monday...", extract(body, "", "").String())

	assert.Equal(t, "Page: No title | Content: No content...",
		extract(`<html><body><div>bare</div></body></html>`, "", "").String())
}

func TestGeneric_SummaryTruncatesParagraph(t *testing.T) {
	para := strings.Repeat("b", 120)
	got := extract(`<title>t</title><p>`+para+`</p>`, "", "").String()
	assert.Equal(t, "Page: t | Content: "+strings.Repeat("b", 100)+"...", got)
}

func TestGeneric_FetchError(t *testing.T) {
	g := NewGenericExtractor(&fakeFetcher{err: errors.New("dial tcp: timeout")}, time.Second)
	got := g.Extract(context.Background(), models.ScrapeRequest{TargetURL: "https://example.com"})
	assert.Equal(t, "Generic scraping error: dial tcp: timeout", got.String())
}

func TestGeneric_SelectorBeatsSearchTerm(t *testing.T) {
	body := `<p id="a">alpha</p><p>beta</p>`
	assert.Equal(t, "Content: alpha", extract(body, "#a", "beta").String())
}

func TestGeneric_Latin1Page(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<html><body><p>R\xe9sultat: admis</p></body></html>"))
	}))
	defer srv.Close()

	g := NewGenericExtractor(engine.NewHTTPEngine(), time.Second)
	scrape := func(selector, term string) string {
		return g.Extract(context.Background(), models.ScrapeRequest{
			TargetURL: srv.URL, Selector: selector, SearchTerm: term,
		}).String()
	}

	assert.Equal(t, "Found: Résultat: admis...", scrape("", "Résultat"))

	got := scrape("p", "")
	assert.Equal(t, "Content: Résultat: admis", got)
	assert.True(t, utf8.ValidString(got))
}
