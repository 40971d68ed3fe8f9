package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minArticleLength is the shortest readability TextContent accepted as a real
// article; shorter output means the main content was not found.
const minArticleLength = 50

// mainContent runs readability over rawHTML. When readability fails or finds
// too little text, the whole document is returned with ok=false so a preview
// is still produced.
func mainContent(rawHTML, sourceURL string) (article readability.Article, ok bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("preview: invalid source URL, using full document", "url", sourceURL, "error", err)
		return readability.Article{Content: rawHTML}, false
	}

	article, err = readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("preview: readability failed, using full document", "url", sourceURL, "error", err)
		return readability.Article{Content: rawHTML}, false
	}

	if len(strings.TrimSpace(article.TextContent)) < minArticleLength {
		slog.Debug("preview: article too short, using full document", "url", sourceURL, "length", len(article.TextContent))
		return readability.Article{Title: article.Title, Content: rawHTML}, false
	}
	return article, true
}
