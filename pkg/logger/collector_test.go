package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches []LogBatch
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.(LogBatch))
	return nil
}

func TestCollectorDeduplicatesAndFlushesOnClose(t *testing.T) {
	pub := &capturePublisher{}
	l := NewNop()
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 100, Topic: "logs", Publisher: pub})

	for i := 0; i < 3; i++ {
		l.Error("fetch failed", String("source", "newsapi"), Error(errors.New("boom")))
	}
	l.RemoveCollector()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.batches) != 1 {
		t.Fatalf("expected one batch, got %d", len(pub.batches))
	}
	if pub.topic != "logs" {
		t.Fatalf("unexpected topic %q", pub.topic)
	}
	batch := pub.batches[0]
	if batch.Reason != FlushClose || batch.Total != 3 {
		t.Fatalf("unexpected batch %+v", batch)
	}
	if len(batch.Entries) != 1 || batch.Entries[0].Count != 3 {
		t.Fatalf("expected a single entry seen 3 times, got %+v", batch.Entries)
	}
}

func TestCollectorFlushesAtThresholdOrderedByCount(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Topic: "logs", Publisher: pub}, nil)

	c.AddLog("error", "classify failed", map[string]interface{}{"symbol": "AAPL"}, "a.go:1")
	c.AddLog("error", "classify failed", map[string]interface{}{"symbol": "AAPL"}, "a.go:1")
	if c.Pending() != 1 {
		t.Fatalf("expected one pending entry, got %d", c.Pending())
	}
	c.AddLog("error", "fetch failed", map[string]interface{}{"source": "rss"}, "b.go:2")
	if c.Pending() != 0 {
		t.Fatalf("expected threshold flush, got %d pending", c.Pending())
	}
	c.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.batches) != 1 {
		t.Fatalf("expected one batch, got %d", len(pub.batches))
	}
	batch := pub.batches[0]
	if batch.Reason != FlushThreshold || batch.Total != 3 || len(batch.Entries) != 2 {
		t.Fatalf("unexpected batch %+v", batch)
	}
	if batch.Entries[0].Message != "classify failed" || batch.Entries[0].Count != 2 {
		t.Fatalf("expected most frequent entry first, got %+v", batch.Entries)
	}
}

func TestFloatFieldNaN(t *testing.T) {
	nan := Float64("mean", zeroOver(0))
	_, v := nan.GetKeyValue()
	if v != "NaN" {
		t.Fatalf("expected NaN marker, got %v", v)
	}
}

func zeroOver(x float64) float64 { return x / x }
