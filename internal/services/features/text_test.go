package features

import (
	"testing"

	"SentiPull/internal/domain/models"
)

func TestExtractTextPriority(t *testing.T) {
	cases := []struct {
		name string
		in   models.RawArticle
		want string
	}{
		{"finnhub fields", models.RawArticle{Headline: "Apple beats", Summary: "Strong quarter"}, "Apple beats Strong quarter"},
		{"newsapi fields", models.RawArticle{Title: "T", Description: "D", Content: "C"}, "T D C"},
		{"headline wins over title", models.RawArticle{Headline: "H", Title: "T"}, "H"},
		{"blank headline falls back", models.RawArticle{Headline: "  ", Title: "T"}, "T"},
		{"body only", models.RawArticle{Body: " text "}, "text"},
		{"empty", models.RawArticle{URL: "http://x"}, ""},
	}
	for _, tc := range cases {
		if got := ExtractText(tc.in); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestExtractTextsDropsEmpty(t *testing.T) {
	got := ExtractTexts([]models.RawArticle{{Title: "a"}, {}, {Summary: "b"}})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected texts %v", got)
	}
}

func TestStripHTML(t *testing.T) {
	got := StripHTML(`<p>Shares <b>rose</b>&nbsp;5%</p>`)
	if got != "Shares rose 5%" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestPlainTextMarkdown(t *testing.T) {
	got := PlainText("**AAPL** to the _moon_")
	if got != "AAPL to the moon" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := Truncate("héllo", 2); got != "hé" {
		t.Fatalf("unexpected %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Fatalf("unexpected %q", got)
	}
	if got := Truncate("abc", 0); got != "abc" {
		t.Fatalf("unexpected %q", got)
	}
}
