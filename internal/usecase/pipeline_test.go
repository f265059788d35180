package usecase

import (
	"context"
	"errors"
	"testing"

	"SentiPull/internal/domain/models"
	"SentiPull/pkg/config"
	"SentiPull/pkg/util"
)

func newTestPipeline(store *fakeStore, pub *fakePublisher, insider *fakeInsider, m *fakeMetrics) *SentimentPipeline {
	a := NewDailyAggregator(threeDayFetcher(), &fakeClassifier{})
	b := NewDailyAggregator(&fakeFetcher{
		name: "newsapi",
		articles: map[string][]models.RawArticle{
			"2024-01-01": {{Title: "good"}},
			"2024-01-02": {{Title: "bad"}},
		},
	}, &fakeClassifier{})
	opts := []PipelineOption{WithStore(store), WithPublisher(pub), WithPipelineMetrics(m)}
	if insider != nil {
		opts = append(opts, WithInsiderScorer(NewInsiderScorer(insider, m)))
	}
	return NewSentimentPipeline(a, b, "fake", opts...)
}

func TestPipelineRun(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	insider := &fakeInsider{txs: []models.InsiderTransaction{{Change: 10}}}
	p := newTestPipeline(store, pub, insider, &fakeMetrics{})

	report, err := p.Run(context.Background(), models.RunParams{
		Symbol:         "AAPL",
		Start:          day("2024-01-01"),
		End:            day("2024-01-03"),
		IncludeInsider: true,
		Persist:        true,
		Publish:        true,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.RunID == "" || report.SourceA != "finnhub" || report.SourceB != "newsapi" {
		t.Fatalf("unexpected report header %+v", report)
	}
	if len(report.DailyA) != 3 || len(report.DailyB) != 3 || len(report.Merged) != 3 {
		t.Fatalf("unexpected lengths %d %d %d", len(report.DailyA), len(report.DailyB), len(report.Merged))
	}
	if !approx(report.Merged[0].SentimentAvg, 0.5) {
		t.Fatalf("unexpected merged avg %v", report.Merged[0].SentimentAvg)
	}
	if report.InsiderScore == nil || report.InsiderScore.Score != 1 {
		t.Fatalf("unexpected insider score %+v", report.InsiderScore)
	}
	if len(store.daily) != 2 || len(store.merged) != 3 || store.insider == nil {
		t.Fatalf("expected report persisted")
	}
	if len(pub.reports) != 1 {
		t.Fatalf("expected report published")
	}
}

func TestPipelineSkipsPersistAndPublishWhenDisabled(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	p := newTestPipeline(store, pub, nil, &fakeMetrics{})

	_, err := p.Run(context.Background(), models.RunParams{Symbol: "AAPL", Start: day("2024-01-01"), End: day("2024-01-01")})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if store.daily != nil || len(pub.reports) != 0 {
		t.Fatalf("expected no side effects")
	}
}

func TestPipelinePublishFailureIsNotFatal(t *testing.T) {
	m := &fakeMetrics{}
	p := newTestPipeline(&fakeStore{}, &fakePublisher{err: errBoom}, nil, m)
	if _, err := p.Run(context.Background(), models.RunParams{Symbol: "AAPL", Start: day("2024-01-01"), End: day("2024-01-01"), Publish: true}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if m.errors["publish"] != 1 {
		t.Fatalf("expected publish error metric")
	}
}

func TestPipelinePersistFailure(t *testing.T) {
	p := newTestPipeline(&fakeStore{err: errBoom}, &fakePublisher{}, nil, &fakeMetrics{})
	_, err := p.Run(context.Background(), models.RunParams{Symbol: "AAPL", Start: day("2024-01-01"), End: day("2024-01-01"), Persist: true})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected persist error, got %v", err)
	}
}

func TestPipelineInsiderCredentialAborts(t *testing.T) {
	insider := &fakeInsider{err: config.ErrMissingCredential}
	p := newTestPipeline(&fakeStore{}, &fakePublisher{}, insider, &fakeMetrics{})
	_, err := p.Run(context.Background(), models.RunParams{Symbol: "AAPL", Start: day("2024-01-01"), End: day("2024-01-01"), IncludeInsider: true})
	if !errors.Is(err, config.ErrMissingCredential) {
		t.Fatalf("expected missing credential, got %v", err)
	}
}

func TestPipelineRangeLimit(t *testing.T) {
	p := newTestPipeline(&fakeStore{}, &fakePublisher{}, nil, &fakeMetrics{})
	WithMaxRangeDays(2)(p)
	_, err := p.Run(context.Background(), models.RunParams{Symbol: "AAPL", Start: day("2024-01-01"), End: day("2024-01-03")})
	if !errors.Is(err, ErrRangeTooLong) {
		t.Fatalf("expected ErrRangeTooLong, got %v", err)
	}
	if _, err := p.Daily(context.Background(), "rss", "AAPL", util.NewDateRange(day("2024-01-01"), day("2024-01-01"))); err == nil {
		t.Fatalf("expected unknown source error")
	}
}
