package features

import (
	"strings"

	"SentiPull/internal/domain/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/russross/blackfriday/v2"
)

// ExtractText joins an article's non-empty fields as "headline/title summary/description content/body".
// Within each slot the first non-empty field wins.
func ExtractText(a models.RawArticle) string {
	parts := make([]string, 0, 3)
	for _, slot := range [][2]string{
		{a.Headline, a.Title},
		{a.Summary, a.Description},
		{a.Content, a.Body},
	} {
		for _, f := range slot {
			if f = strings.TrimSpace(f); f != "" {
				parts = append(parts, f)
				break
			}
		}
	}
	return strings.Join(parts, " ")
}

// ExtractTexts returns one text per usable article, dropping articles with no text.
func ExtractTexts(articles []models.RawArticle) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		if t := ExtractText(a); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// StripHTML returns the visible text of an HTML fragment with whitespace collapsed.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapseSpaces(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseSpaces(s)
	}
	return collapseSpaces(doc.Text())
}

// PlainText renders markdown (as found in social posts) and strips the resulting HTML.
func PlainText(s string) string {
	html := blackfriday.Run([]byte(s), blackfriday.WithExtensions(blackfriday.CommonExtensions|blackfriday.HardLineBreak))
	return StripHTML(string(html))
}

// Truncate cuts s to at most max runes. max <= 0 disables truncation.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
