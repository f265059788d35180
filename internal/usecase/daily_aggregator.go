package usecase

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"SentiPull/internal/domain/models"
	drepo "SentiPull/internal/domain/repository"
	dservice "SentiPull/internal/domain/service"
	"SentiPull/internal/service/fetch"
	"SentiPull/internal/services/features"
	"SentiPull/pkg/config"
	applogger "SentiPull/pkg/logger"
	"SentiPull/pkg/util"

	"golang.org/x/sync/errgroup"
)

// DailyAggregator turns one provider's articles into a per-day sentiment series.
type DailyAggregator struct {
	fetcher    dservice.NewsFetcher
	classifier dservice.SentimentClassifier
	metrics    drepo.Metrics
	log        *applogger.Logger
	workers    int
}

// AggregatorOption configures DailyAggregator.
type AggregatorOption func(*DailyAggregator)

// WithWorkers processes up to n days concurrently. 1 is sequential.
func WithWorkers(n int) AggregatorOption {
	return func(a *DailyAggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

func WithAggregatorLogger(l *applogger.Logger) AggregatorOption {
	return func(a *DailyAggregator) {
		if l != nil {
			a.log = l
		}
	}
}

func WithAggregatorMetrics(m drepo.Metrics) AggregatorOption {
	return func(a *DailyAggregator) { a.metrics = m }
}

func NewDailyAggregator(fetcher dservice.NewsFetcher, classifier dservice.SentimentClassifier, opts ...AggregatorOption) *DailyAggregator {
	a := &DailyAggregator{
		fetcher:    fetcher,
		classifier: classifier,
		log:        applogger.NewNop(),
		workers:    1,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With(applogger.String("source", fetcher.Name()))
	return a
}

// Source is the provider name of the underlying fetcher.
func (a *DailyAggregator) Source() string { return a.fetcher.Name() }

// Aggregate returns exactly one record per day of r, ascending. Fetch failures
// give empty days and classification failures give NaN days; only a missing
// credential or cancellation stops the run.
func (a *DailyAggregator) Aggregate(ctx context.Context, symbol string, r util.DateRange) (models.DailySentimentSeries, error) {
	days := r.Slice()
	out := make(models.DailySentimentSeries, len(days))

	if a.workers <= 1 {
		for i, day := range days {
			rec, err := a.aggregateDay(ctx, symbol, day)
			if err != nil {
				return nil, err
			}
			out[i] = rec
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, day := range days {
		g.Go(func() error {
			rec, err := a.aggregateDay(gctx, symbol, day)
			if err != nil {
				return err
			}
			out[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (a *DailyAggregator) aggregateDay(ctx context.Context, symbol string, day time.Time) (models.DailySentimentRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.DailySentimentRecord{}, err
	}
	source := a.fetcher.Name()
	empty := models.DailySentimentRecord{Date: day, Mean: math.NaN(), Std: math.NaN()}

	articles, err := a.fetcher.FetchArticles(ctx, symbol, day)
	if err != nil {
		if err := fetch.Degrade(ctx, err, a.log, a.metrics, source, symbol, day); err != nil {
			return models.DailySentimentRecord{}, err
		}
		articles = nil
	}
	if a.metrics != nil {
		a.metrics.RecordArticles(source, symbol, len(articles))
	}

	texts := features.ExtractTexts(articles)
	if len(texts) == 0 {
		if a.metrics != nil {
			a.metrics.RecordEmptyDay(source)
		}
		return empty, nil
	}

	start := time.Now()
	labels, err := a.classifier.Classify(ctx, texts)
	if a.metrics != nil {
		a.metrics.RecordLatency("classify", time.Since(start).Seconds())
	}
	if err != nil {
		if errors.Is(err, config.ErrMissingCredential) || ctx.Err() != nil {
			return models.DailySentimentRecord{}, err
		}
		a.log.Warn("classification failed, day left empty",
			applogger.Date("day", day),
			applogger.Int("texts", len(texts)),
			applogger.Error(err),
		)
		if a.metrics != nil {
			a.metrics.RecordClassifyError(a.classifier.Name())
		}
		return empty, nil
	}

	scores := make([]float64, len(labels))
	for i, c := range labels {
		scores[i] = models.SignedScore(c)
	}
	mean, std := features.MeanStd(scores)

	if a.metrics != nil {
		a.metrics.RecordClassified(a.classifier.Name(), len(labels))
		a.metrics.RecordDailySentiment(source, symbol, mean)
	}
	a.log.Debug("day aggregated",
		applogger.Date("day", day),
		applogger.Int("articles", len(labels)),
		applogger.Float64("mean", mean),
	)
	return models.DailySentimentRecord{Date: day, Mean: mean, Std: std, ArticleCount: len(labels)}, nil
}
