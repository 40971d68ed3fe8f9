package cleaner

import (
	"fmt"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// CompileSelector parses a CSS selector group. Syntax errors are returned
// rather than silently matching nothing, so callers can report a bad
// selector. The result also satisfies goquery.Matcher.
func CompileSelector(selector string) (cascadia.Selector, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return sel, nil
}

// SelectFirstText parses a selector, matches it against root and returns the
// stripped text of the first match in document order. ok is false when
// nothing matched.
func SelectFirstText(root *html.Node, selector string) (text string, ok bool, err error) {
	sel, err := CompileSelector(selector)
	if err != nil {
		return "", false, err
	}
	n := sel.MatchFirst(root)
	if n == nil {
		return "", false, nil
	}
	return StrippedText(n), true, nil
}
