package cleaner

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"golang.org/x/net/html"

	"github.com/use-agent/statuswatch/models"
)

// Previewer renders a fetched page as Markdown so users can see what a
// tracker will be looking at before choosing a selector.
//
// The converter is created once and reused (goroutine-safe).
type Previewer struct {
	md *converter.Converter
}

// NewPreviewer creates a Previewer.
func NewPreviewer() *Previewer {
	return &Previewer{md: newMarkdownConverter()}
}

// Preview runs readability then Markdown conversion over rawHTML.
func (p *Previewer) Preview(rawHTML, sourceURL string) (*models.PreviewResponse, error) {
	article, _ := mainContent(rawHTML, sourceURL)

	md, err := toMarkdown(p.md, article.Content, sourceURL)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "markdown conversion failed", err)
	}

	title := article.Title
	if title == "" {
		title = DocumentTitle(rawHTML)
	}

	return &models.PreviewResponse{
		Success:   true,
		Title:     title,
		Markdown:  strings.TrimSpace(md),
		SourceURL: sourceURL,
	}, nil
}

// DocumentTitle returns the trimmed text of the first <title>, or "".
func DocumentTitle(rawHTML string) string {
	z := html.NewTokenizer(strings.NewReader(rawHTML))
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			if tn, _ := z.TagName(); string(tn) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(z.Text()))
			}
		case html.EndTagToken:
			if inTitle {
				return ""
			}
		}
	}
}
