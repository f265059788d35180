package metrics

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements repository.Metrics using Prometheus.
type Recorder struct {
	articles       *prometheus.CounterVec
	fetchErrors    *prometheus.CounterVec
	classified     *prometheus.CounterVec
	classifyErrors *prometheus.CounterVec
	emptyDays      *prometheus.CounterVec
	published      *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	lastSentiment  *prometheus.GaugeVec
	insiderScore   *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
}

// New creates a recorder on the default Prometheus registerer.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder whose collectors are registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		articles: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentipull_articles_fetched_total",
				Help: "Articles returned by news providers",
			},
			[]string{"source", "symbol"},
		),
		fetchErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentipull_fetch_errors_total",
				Help: "Provider fetches that failed and were treated as empty",
			},
			[]string{"source"},
		),
		classified: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentipull_texts_classified_total",
				Help: "Texts scored by the sentiment classifier",
			},
			[]string{"classifier"},
		),
		classifyErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentipull_classify_errors_total",
				Help: "Classifier calls that failed",
			},
			[]string{"classifier"},
		),
		emptyDays: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentipull_empty_days_total",
				Help: "Days that produced no usable text",
			},
			[]string{"source"},
		),
		published: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentipull_results_published_total",
				Help: "Results written to a sink",
			},
			[]string{"backend", "kind"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentipull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastSentiment: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sentipull_last_daily_sentiment",
				Help: "Most recent daily mean sentiment per source and symbol",
			},
			[]string{"source", "symbol"},
		),
		insiderScore: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sentipull_insider_score",
				Help: "Latest insider trading score per symbol",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentipull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordArticles(source, symbol string, n int) {
	r.articles.WithLabelValues(source, symbol).Add(float64(n))
}

func (r *Recorder) RecordFetchError(source string) {
	r.fetchErrors.WithLabelValues(source).Inc()
}

func (r *Recorder) RecordClassified(classifier string, n int) {
	r.classified.WithLabelValues(classifier).Add(float64(n))
}

func (r *Recorder) RecordClassifyError(classifier string) {
	r.classifyErrors.WithLabelValues(classifier).Inc()
}

func (r *Recorder) RecordEmptyDay(source string) {
	r.emptyDays.WithLabelValues(source).Inc()
}

func (r *Recorder) RecordPublished(backend, kind string) {
	r.published.WithLabelValues(backend, kind).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordDailySentiment sets the gauge; NaN days are skipped so the last real value stays visible.
func (r *Recorder) RecordDailySentiment(source, symbol string, mean float64) {
	if math.IsNaN(mean) {
		return
	}
	r.lastSentiment.WithLabelValues(source, symbol).Set(mean)
}

func (r *Recorder) RecordInsiderScore(symbol string, score float64) {
	r.insiderScore.WithLabelValues(symbol).Set(score)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
