package service

import (
	"context"
	"time"

	"SentiPull/internal/domain/models"
)

// NewsFetcher returns one provider's articles for a symbol on one calendar day.
// Transport and parse failures yield an empty slice and a nil error; only a
// missing credential is returned as an error.
type NewsFetcher interface {
	Name() string
	FetchArticles(ctx context.Context, symbol string, day time.Time) ([]models.RawArticle, error)
}

// SentimentClassifier labels texts. The result has one entry per input, in order.
type SentimentClassifier interface {
	Name() string
	Classify(ctx context.Context, texts []string) ([]models.Classification, error)
}

// InsiderSource supplies insider filings and Finnhub's monthly insider sentiment.
type InsiderSource interface {
	InsiderTransactions(ctx context.Context, symbol string, from, to time.Time) ([]models.InsiderTransaction, error)
	InsiderSentiment(ctx context.Context, symbol string, from, to time.Time) ([]models.InsiderSentiment, error)
}

// PriceSource supplies daily candles.
type PriceSource interface {
	DailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error)
}
