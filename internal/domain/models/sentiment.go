package models

import (
	"strings"
	"time"
)

// Classifier labels. Anything else counts as neutral.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// Classification is the classifier output for one text.
type Classification struct {
	Label string
	Score float64 // confidence in [0,1]
}

// SignedScore maps a classification onto [-1, 1]: positive keeps its score,
// negative flips it, every other label is 0.
func SignedScore(c Classification) float64 {
	switch strings.ToLower(strings.TrimSpace(c.Label)) {
	case LabelPositive:
		return c.Score
	case LabelNegative:
		return -c.Score
	default:
		return 0
	}
}

// DailySentimentRecord summarises one calendar day. Mean and Std are NaN when
// ArticleCount is 0.
type DailySentimentRecord struct {
	Date         time.Time
	Mean         float64
	Std          float64
	ArticleCount int
}

// DailySentimentSeries covers every day of a range, ascending, no gaps.
type DailySentimentSeries []DailySentimentRecord

// Dates returns the series' dates in order.
func (s DailySentimentSeries) Dates() []time.Time {
	out := make([]time.Time, len(s))
	for i, r := range s {
		out[i] = r.Date
	}
	return out
}

// MergedSentimentRecord joins both providers on one date.
type MergedSentimentRecord struct {
	Date time.Time

	MeanA  float64
	StdA   float64
	CountA int
	MeanB  float64
	StdB   float64
	CountB int

	SentimentAvg             float64
	ArticleCountAvg          float64
	StdAvg                   float64
	SentimentDisagreement    float64
	SentimentDisagreementPct float64
}

// SentimentReport is the outcome of one pipeline run.
type SentimentReport struct {
	RunID        string
	Symbol       string
	Start        time.Time
	End          time.Time
	SourceA      string
	SourceB      string
	Classifier   string
	DailyA       DailySentimentSeries
	DailyB       DailySentimentSeries
	Merged       []MergedSentimentRecord
	InsiderScore *InsiderScore
	CreatedAt    time.Time
}
