package news

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"llm-investment-agent/internal/types"
)

// CleanText strips markup and entities from provider text and collapses
// whitespace. Plain text passes through with only whitespace normalised.
func CleanText(s string) string {
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// Clean returns a copy of items with headline and summary cleaned. The
// result is never nil.
func Clean(items []types.NewsItem) []types.NewsItem {
	out := make([]types.NewsItem, 0, len(items))
	for _, it := range items {
		it.Headline = CleanText(it.Headline)
		it.Summary = CleanText(it.Summary)
		out = append(out, it)
	}
	return out
}
