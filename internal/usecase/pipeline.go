package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SentiPull/internal/domain/models"
	drepo "SentiPull/internal/domain/repository"
	"SentiPull/pkg/config"
	applogger "SentiPull/pkg/logger"
	"SentiPull/pkg/util"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrRangeTooLong is returned when a run spans more days than allowed.
	ErrRangeTooLong = errors.New("date range too long")
	// ErrUnknownSource is returned for a provider that is not configured.
	ErrUnknownSource = errors.New("source not configured")
)

// SentimentPipeline runs both news providers over a range, merges them and
// optionally scores insiders, persists and publishes the report.
type SentimentPipeline struct {
	sourceA    *DailyAggregator
	sourceB    *DailyAggregator
	classifier string
	insider    *InsiderScorer
	store      drepo.SentimentStore
	publisher  drepo.Publisher
	metrics    drepo.Metrics
	log        *applogger.Logger
	maxDays    int
	now        func() time.Time
}

// PipelineOption configures SentimentPipeline.
type PipelineOption func(*SentimentPipeline)

func WithInsiderScorer(s *InsiderScorer) PipelineOption {
	return func(p *SentimentPipeline) { p.insider = s }
}

func WithStore(s drepo.SentimentStore) PipelineOption {
	return func(p *SentimentPipeline) { p.store = s }
}

func WithPublisher(pub drepo.Publisher) PipelineOption {
	return func(p *SentimentPipeline) { p.publisher = pub }
}

func WithPipelineMetrics(m drepo.Metrics) PipelineOption {
	return func(p *SentimentPipeline) { p.metrics = m }
}

func WithPipelineLogger(l *applogger.Logger) PipelineOption {
	return func(p *SentimentPipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithMaxRangeDays rejects runs longer than n days. 0 disables the check.
func WithMaxRangeDays(n int) PipelineOption {
	return func(p *SentimentPipeline) { p.maxDays = n }
}

func NewSentimentPipeline(a, b *DailyAggregator, classifier string, opts ...PipelineOption) *SentimentPipeline {
	p := &SentimentPipeline{
		sourceA:    a,
		sourceB:    b,
		classifier: classifier,
		log:        applogger.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Sources returns the provider names in (A, B) order.
func (p *SentimentPipeline) Sources() (string, string) {
	return p.sourceA.Source(), p.sourceB.Source()
}

// Daily aggregates a single provider, selected by name.
func (p *SentimentPipeline) Daily(ctx context.Context, source, symbol string, r util.DateRange) (models.DailySentimentSeries, error) {
	if err := p.checkRange(r); err != nil {
		return nil, err
	}
	switch source {
	case p.sourceA.Source():
		return p.sourceA.Aggregate(ctx, symbol, r)
	case p.sourceB.Source():
		return p.sourceB.Aggregate(ctx, symbol, r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}
}

// Run executes one full pipeline run.
func (p *SentimentPipeline) Run(ctx context.Context, params models.RunParams) (*models.SentimentReport, error) {
	if params.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	r := util.NewDateRange(params.Start, params.End)
	if err := p.checkRange(r); err != nil {
		return nil, err
	}

	start := time.Now()
	report := &models.SentimentReport{
		RunID:      uuid.NewString(),
		Symbol:     params.Symbol,
		Start:      r.Start,
		End:        r.End,
		SourceA:    p.sourceA.Source(),
		SourceB:    p.sourceB.Source(),
		Classifier: p.classifier,
		CreatedAt:  p.now().UTC(),
	}
	log := p.log.With(
		applogger.String("run_id", report.RunID),
		applogger.String("symbol", params.Symbol),
		applogger.String("range", r.String()),
	)
	log.Info("pipeline run started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := p.sourceA.Aggregate(gctx, params.Symbol, r)
		report.DailyA = s
		return err
	})
	g.Go(func() error {
		s, err := p.sourceB.Aggregate(gctx, params.Symbol, r)
		report.DailyB = s
		return err
	})
	if err := g.Wait(); err != nil {
		p.recordError("aggregate")
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	report.Merged = Merge(report.DailyA, report.DailyB)

	if params.IncludeInsider && p.insider != nil {
		score, err := p.insider.Score(ctx, params.Symbol, r.Start, r.End)
		switch {
		case err != nil && (errors.Is(err, config.ErrMissingCredential) || ctx.Err() != nil):
			return nil, err
		case err != nil:
			log.Warn("insider score unavailable", applogger.Error(err))
			p.recordError("insider")
		default:
			report.InsiderScore = score
		}
	}

	if params.Persist && p.store != nil {
		if err := p.persist(ctx, report); err != nil {
			p.recordError("persist")
			return nil, err
		}
	}

	if params.Publish && p.publisher != nil {
		if err := p.publisher.PublishReport(ctx, report); err != nil {
			log.Error("publish report failed", applogger.Error(err))
			p.recordError("publish")
		}
	}

	if p.metrics != nil {
		p.metrics.RecordLatency("pipeline_run", time.Since(start).Seconds())
	}
	log.Info("pipeline run finished",
		applogger.Int("merged_days", len(report.Merged)),
		applogger.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

func (p *SentimentPipeline) persist(ctx context.Context, report *models.SentimentReport) error {
	if err := p.store.SaveDaily(ctx, report.Symbol, report.SourceA, report.DailyA); err != nil {
		return fmt.Errorf("save %s daily: %w", report.SourceA, err)
	}
	if err := p.store.SaveDaily(ctx, report.Symbol, report.SourceB, report.DailyB); err != nil {
		return fmt.Errorf("save %s daily: %w", report.SourceB, err)
	}
	if err := p.store.SaveMerged(ctx, report.Symbol, report.Merged); err != nil {
		return fmt.Errorf("save merged: %w", err)
	}
	if report.InsiderScore != nil {
		if err := p.store.SaveInsiderScore(ctx, report.InsiderScore); err != nil {
			return fmt.Errorf("save insider score: %w", err)
		}
	}
	return nil
}

func (p *SentimentPipeline) checkRange(r util.DateRange) error {
	if p.maxDays > 0 && r.Len() > p.maxDays {
		return fmt.Errorf("%w: %d days, max %d", ErrRangeTooLong, r.Len(), p.maxDays)
	}
	return nil
}

func (p *SentimentPipeline) recordError(kind string) {
	if p.metrics != nil {
		p.metrics.RecordError(kind)
	}
}
