package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	for {
		r.mu.Lock()
		if len(r.queue) > 0 {
			m := r.queue[0]
			r.queue = r.queue[1:]
			r.mu.Unlock()
			return m, nil
		}
		r.mu.Unlock()
		select {
		case <-ctx.Done():
			return kafka.Message{}, ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

type flakyHandler struct {
	mu       sync.Mutex
	failures int
	calls    int
	traceIDs []string
}

func (h *flakyHandler) Topic() string { return "jobs" }

func (h *flakyHandler) Handle(ctx context.Context, _ []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	h.traceIDs = append(h.traceIDs, TraceIDFromContext(ctx))
	if h.failures > 0 {
		h.failures--
		return errors.New("transient")
	}
	return nil
}

func newTestConsumer(t *testing.T, reader *fakeReader, retry int) *Consumer {
	t.Helper()
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"unused:9092"}),
		WithConsumerRetry(retry, time.Millisecond, 2*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	c.newReader = func(string) messageReader { return reader }
	return c
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestConsumerRetriesThenCommits(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{{
		Offset:  7,
		Value:   []byte(`{}`),
		Headers: []kafka.Header{{Key: "trace_id", Value: []byte("run-1")}},
	}}}
	h := &flakyHandler{failures: 1}
	c := newTestConsumer(t, reader, 1)
	c.RegisterHandler(h)

	if err := c.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, func() bool { return len(reader.commits()) == 1 })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if h.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", h.calls)
	}
	if h.traceIDs[0] != "run-1" {
		t.Fatalf("expected trace id in context, got %q", h.traceIDs[0])
	}
	if got := reader.commits(); got[0] != 7 {
		t.Fatalf("unexpected committed offset %v", got)
	}
}

func TestConsumerLeavesFailedMessageUncommittedWithoutDLQ(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{{Offset: 1}, {Offset: 2, Partition: 1}}}
	h := &flakyHandler{failures: 1}
	c := newTestConsumer(t, reader, 0)
	c.RegisterHandler(h)

	if err := c.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, func() bool { return len(reader.commits()) == 1 })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = c.Stop(ctx)

	if got := reader.commits(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("expected only offset 2 committed, got %v", got)
	}
}

func TestStartRequiresHandlers(t *testing.T) {
	c := newTestConsumer(t, &fakeReader{}, 0)
	if err := c.Start(); err == nil {
		t.Fatalf("expected error without handlers")
	}
}

func TestBackoffWithJitterBounds(t *testing.T) {
	for attempt := 1; attempt < 10; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, 80*time.Millisecond, attempt)
		if d <= 0 || d > 80*time.Millisecond {
			t.Fatalf("attempt %d: backoff %v out of range", attempt, d)
		}
	}
}
