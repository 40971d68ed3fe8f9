package cleaner

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// newMarkdownConverter builds a goroutine-safe converter. The base plugin
// drops script/style/head noise; tables keep minimal cell padding so form
// result tables stay readable in a preview.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// toMarkdown converts HTML to Markdown, resolving relative links against domain.
func toMarkdown(conv *converter.Converter, htmlContent, domain string) (string, error) {
	return conv.ConvertString(htmlContent, converter.WithDomain(domain))
}
