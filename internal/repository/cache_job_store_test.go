package repository

import (
	"context"
	"testing"
	"time"

	"SentiPull/internal/domain/models"
	"SentiPull/pkg/cache"
)

func TestCacheJobStore(t *testing.T) {
	ctx := context.Background()
	mc := cache.NewMemoryCache()
	defer mc.Close()
	s := NewCacheJobStore(mc, time.Hour)

	if got, err := s.Get(ctx, "missing"); err != nil || got != nil {
		t.Fatalf("expected nil job for unknown id, got %+v %v", got, err)
	}

	job := &models.Job{ID: "abc", Status: models.JobRunning, Params: models.RunParams{Symbol: "AAPL"}}
	if err := s.Save(ctx, job); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Get(ctx, "abc")
	if err != nil || got == nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.JobRunning || got.Params.Symbol != "AAPL" {
		t.Fatalf("unexpected job %+v", got)
	}

	const key = "AAPL:2024-01-01:2024-01-05"
	ok, err := s.Acquire(ctx, key, "job-1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first acquire to succeed: %v", err)
	}
	if ok, _ := s.Acquire(ctx, key, "job-2", time.Minute); ok {
		t.Fatalf("expected second acquire to fail")
	}
	if err := s.Release(ctx, key, "job-2"); err != nil {
		t.Fatalf("release by non-owner: %v", err)
	}
	if ok, _ := s.Acquire(ctx, key, "job-2", time.Minute); ok {
		t.Fatalf("expected lock to survive a release by another job")
	}
	if err := s.Release(ctx, key, "job-1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := s.Acquire(ctx, key, "job-2", time.Minute); !ok {
		t.Fatalf("expected acquire after release")
	}
}
