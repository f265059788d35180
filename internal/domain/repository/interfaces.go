package repository

import (
	"context"
	"time"

	"SentiPull/internal/domain/models"
)

// SentimentStore persists series keyed by (symbol, source, date). Saving the same key
// again replaces the earlier row.
type SentimentStore interface {
	Init(ctx context.Context) error
	SaveDaily(ctx context.Context, symbol, source string, series models.DailySentimentSeries) error
	SaveMerged(ctx context.Context, symbol string, rows []models.MergedSentimentRecord) error
	SaveInsiderScore(ctx context.Context, score *models.InsiderScore) error
	QueryDaily(ctx context.Context, symbol, source string, from, to time.Time) (models.DailySentimentSeries, error)
	QueryMerged(ctx context.Context, symbol string, from, to time.Time) ([]models.MergedSentimentRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// Publisher emits results and job requests to downstream consumers.
type Publisher interface {
	PublishReport(ctx context.Context, report *models.SentimentReport) error
	PublishJob(ctx context.Context, job *models.Job) error
	Close() error
}

// JobStore tracks asynchronous job state and guards against duplicate runs.
type JobStore interface {
	Save(ctx context.Context, job *models.Job) error
	// Get returns nil and no error when the job is unknown.
	Get(ctx context.Context, id string) (*models.Job, error)
	// Acquire takes an exclusive lock on key for owner; false means another run holds it.
	Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	// Release frees key if owner still holds it. A lock that expired and was
	// taken by another run is left alone.
	Release(ctx context.Context, key, owner string) error
}

type Metrics interface {
	RecordArticles(source, symbol string, n int)
	RecordFetchError(source string)
	RecordClassified(classifier string, n int)
	RecordClassifyError(classifier string)
	RecordEmptyDay(source string)
	RecordPublished(backend, kind string)
	RecordError(kind string)
	RecordDailySentiment(source, symbol string, mean float64)
	RecordInsiderScore(symbol string, score float64)
	RecordLatency(op string, seconds float64)
}
