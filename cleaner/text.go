package cleaner

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// skipText reports elements whose text is never visible content.
func skipText(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Template, atom.Noscript:
		return true
	}
	return false
}

// walkText calls fn for every visible text node under n, in document order.
func walkText(n *html.Node, fn func(string)) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode {
		fn(n.Data)
		return
	}
	if skipText(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, fn)
	}
}

// Text returns the raw concatenated text of n, line breaks preserved.
func Text(n *html.Node) string {
	var b strings.Builder
	walkText(n, func(s string) { b.WriteString(s) })
	return b.String()
}

// StrippedText trims every text node and joins the non-empty pieces with no
// separator.
func StrippedText(n *html.Node) string {
	var b strings.Builder
	walkText(n, func(s string) {
		b.WriteString(strings.TrimSpace(s))
	})
	return b.String()
}

// Truncate returns the first max runes of s.
func Truncate(s string, max int) string {
	if max < 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}

// RuneLen is utf8.RuneCountInString, named for call-site readability.
func RuneLen(s string) int { return utf8.RuneCountInString(s) }
