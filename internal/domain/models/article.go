package models

import "time"

// RawArticle is one provider article. Providers fill different subsets of the text fields.
type RawArticle struct {
	Headline    string
	Title       string
	Summary     string
	Description string
	Content     string
	Body        string
	URL         string
	Source      string
	PublishedAt time.Time
}
