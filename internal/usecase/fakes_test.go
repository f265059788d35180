package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"SentiPull/internal/domain/models"
	"SentiPull/pkg/util"
)

var errBoom = errors.New("boom")

func day(s string) time.Time {
	t, err := util.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

type fakeFetcher struct {
	name     string
	articles map[string][]models.RawArticle
	errs     map[string]error
}

func (f *fakeFetcher) Name() string { return f.name }

func (f *fakeFetcher) FetchArticles(_ context.Context, _ string, d time.Time) ([]models.RawArticle, error) {
	key := d.Format(util.DateLayout)
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.articles[key], nil
}

// fakeClassifier maps "good" to positive 0.8, "bad" to negative 0.4 and fails on "explode".
type fakeClassifier struct {
	mu    sync.Mutex
	calls int
}

func (c *fakeClassifier) Name() string { return "fake" }

func (c *fakeClassifier) Classify(_ context.Context, texts []string) ([]models.Classification, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	out := make([]models.Classification, len(texts))
	for i, t := range texts {
		switch {
		case strings.Contains(t, "explode"):
			return nil, errBoom
		case strings.Contains(t, "good"):
			out[i] = models.Classification{Label: "positive", Score: 0.8}
		case strings.Contains(t, "bad"):
			out[i] = models.Classification{Label: "Negative", Score: 0.4}
		default:
			out[i] = models.Classification{Label: "neutral", Score: 0.99}
		}
	}
	return out, nil
}

type fakeMetrics struct {
	mu          sync.Mutex
	emptyDays   int
	classifyErr int
	fetchErr    int
	errors      map[string]int
	insider     float64
}

func (m *fakeMetrics) RecordArticles(string, string, int) {}
func (m *fakeMetrics) RecordFetchError(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchErr++
}
func (m *fakeMetrics) RecordClassified(string, int) {}
func (m *fakeMetrics) RecordClassifyError(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classifyErr++
}
func (m *fakeMetrics) RecordEmptyDay(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emptyDays++
}
func (m *fakeMetrics) RecordPublished(string, string) {}
func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errors == nil {
		m.errors = map[string]int{}
	}
	m.errors[kind]++
}
func (m *fakeMetrics) RecordDailySentiment(string, string, float64) {}
func (m *fakeMetrics) RecordInsiderScore(_ string, score float64) { m.insider = score }
func (m *fakeMetrics) RecordLatency(string, float64) {}

type fakeInsider struct {
	txs []models.InsiderTransaction
	err error
}

func (f *fakeInsider) InsiderTransactions(context.Context, string, time.Time, time.Time) ([]models.InsiderTransaction, error) {
	return f.txs, f.err
}

func (f *fakeInsider) InsiderSentiment(context.Context, string, time.Time, time.Time) ([]models.InsiderSentiment, error) {
	return []models.InsiderSentiment{{Symbol: "AAPL", Year: 2024, Month: 1, MSPR: 12.5}}, f.err
}

type fakeStore struct {
	daily   map[string]models.DailySentimentSeries
	merged  []models.MergedSentimentRecord
	insider *models.InsiderScore
	err     error
}

func (s *fakeStore) Init(context.Context) error { return nil }
func (s *fakeStore) SaveDaily(_ context.Context, _ string, source string, series models.DailySentimentSeries) error {
	if s.err != nil {
		return s.err
	}
	if s.daily == nil {
		s.daily = map[string]models.DailySentimentSeries{}
	}
	s.daily[source] = series
	return nil
}
func (s *fakeStore) SaveMerged(_ context.Context, _ string, rows []models.MergedSentimentRecord) error {
	s.merged = rows
	return nil
}
func (s *fakeStore) SaveInsiderScore(_ context.Context, score *models.InsiderScore) error {
	s.insider = score
	return nil
}
func (s *fakeStore) QueryDaily(context.Context, string, string, time.Time, time.Time) (models.DailySentimentSeries, error) {
	return nil, nil
}
func (s *fakeStore) QueryMerged(context.Context, string, time.Time, time.Time) ([]models.MergedSentimentRecord, error) {
	return nil, nil
}
func (s *fakeStore) Health(context.Context) error { return nil }
func (s *fakeStore) Close() error { return nil }

type fakePublisher struct {
	mu      sync.Mutex
	reports []*models.SentimentReport
	jobs    []*models.Job
	err     error
}

func (p *fakePublisher) PublishReport(_ context.Context, r *models.SentimentReport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, r)
	return p.err
}
func (p *fakePublisher) PublishJob(_ context.Context, j *models.Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, j)
	return p.err
}
func (p *fakePublisher) Close() error { return nil }

type fakeJobStore struct {
	mu    sync.Mutex
	jobs  map[string]models.Job
	locks map[string]bool
	saves []models.JobStatus
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: map[string]models.Job{}, locks: map[string]bool{}}
}

func (s *fakeJobStore) Save(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	s.saves = append(s.saves, job.Status)
	return nil
}

func (s *fakeJobStore) Get(_ context.Context, id string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	return &j, nil
}

func (s *fakeJobStore) Acquire(_ context.Context, key, _ string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks[key] {
		return false, nil
	}
	s.locks[key] = true
	return true, nil
}

func (s *fakeJobStore) Release(_ context.Context, key, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, key)
	return nil
}

type fakeRunner struct {
	err    error
	params []models.RunParams
}

func (r *fakeRunner) Run(_ context.Context, p models.RunParams) (*models.SentimentReport, error) {
	r.params = append(r.params, p)
	if r.err != nil {
		return nil, r.err
	}
	return &models.SentimentReport{RunID: "run-1", Symbol: p.Symbol}, nil
}
