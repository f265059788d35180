package metrics

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func gatherValue(t *testing.T, reg *prometheus.Registry, name string) (float64, bool) {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name || len(mf.GetMetric()) == 0 {
			continue
		}
		m := mf.GetMetric()[0]
		if m.GetGauge() != nil {
			return m.GetGauge().GetValue(), true
		}
		return m.GetCounter().GetValue(), true
	}
	return 0, false
}

func TestRecorderCountsArticles(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)
	r.RecordArticles("finnhub", "AAPL", 3)
	r.RecordArticles("finnhub", "AAPL", 2)

	v, ok := gatherValue(t, reg, "sentipull_articles_fetched_total")
	if !ok || v != 5 {
		t.Fatalf("expected 5 articles, got %v (found=%v)", v, ok)
	}
}

func TestRecorderSkipsNaNSentiment(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)
	r.RecordDailySentiment("newsapi", "AAPL", 0.25)
	r.RecordDailySentiment("newsapi", "AAPL", math.NaN())

	v, ok := gatherValue(t, reg, "sentipull_last_daily_sentiment")
	if !ok || v != 0.25 {
		t.Fatalf("expected gauge to keep 0.25, got %v", v)
	}
}
