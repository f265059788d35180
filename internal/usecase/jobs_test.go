package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"SentiPull/internal/domain/models"
)

func testParams() models.RunParams {
	return models.RunParams{Symbol: "AAPL", Start: day("2024-01-01"), End: day("2024-01-05")}
}

func TestLockKey(t *testing.T) {
	if got := LockKey(testParams()); got != "AAPL:2024-01-01:2024-01-05" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestJobCreatePublishesWhenPublisherSet(t *testing.T) {
	store := newFakeJobStore()
	pub := &fakePublisher{}
	runner := &fakeRunner{}
	s := NewJobService(store, pub, runner, nil, time.Minute, 0)

	job, err := s.Create(context.Background(), testParams())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.ID == "" || job.Status != models.JobQueued {
		t.Fatalf("unexpected job %+v", job)
	}
	if len(pub.jobs) != 1 || pub.jobs[0].ID != job.ID {
		t.Fatalf("expected job published")
	}
	if len(runner.params) != 0 {
		t.Fatalf("job must not run in-process when published")
	}
}

func TestJobCreateRunsInProcessWithoutPublisher(t *testing.T) {
	store := newFakeJobStore()
	runner := &fakeRunner{}
	s := NewJobService(store, nil, runner, nil, time.Minute, time.Minute)

	job, err := s.Create(context.Background(), testParams())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	s.Wait()

	got, err := s.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.JobDone || got.RunID != "run-1" {
		t.Fatalf("unexpected final job %+v", got)
	}
	want := []models.JobStatus{models.JobQueued, models.JobRunning, models.JobDone}
	if len(store.saves) != len(want) {
		t.Fatalf("unexpected status history %v", store.saves)
	}
	for i := range want {
		if store.saves[i] != want[i] {
			t.Fatalf("unexpected status history %v", store.saves)
		}
	}
	if len(store.locks) != 0 {
		t.Fatalf("lock not released")
	}
}

func TestJobExecuteRecordsFailure(t *testing.T) {
	store := newFakeJobStore()
	s := NewJobService(store, nil, &fakeRunner{err: errBoom}, nil, time.Minute, 0)
	job := &models.Job{ID: "j1", Params: testParams()}

	if err := s.Execute(context.Background(), job); err != nil {
		t.Fatalf("execute: %v", err)
	}
	got, _ := s.Get(context.Background(), "j1")
	if got.Status != models.JobFailed || got.Error != errBoom.Error() {
		t.Fatalf("unexpected job %+v", got)
	}
}

func TestJobExecuteSkipsDuplicateRun(t *testing.T) {
	store := newFakeJobStore()
	runner := &fakeRunner{}
	s := NewJobService(store, nil, runner, nil, time.Minute, 0)
	store.locks[LockKey(testParams())] = true

	job := &models.Job{ID: "j2", Params: testParams()}
	if err := s.Execute(context.Background(), job); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(runner.params) != 0 {
		t.Fatalf("runner should not be called while locked")
	}
	got, _ := s.Get(context.Background(), "j2")
	if got.Status != models.JobFailed || got.Error != ErrRunInProgress.Error() {
		t.Fatalf("unexpected job %+v", got)
	}
}

func TestJobGetUnknown(t *testing.T) {
	s := NewJobService(newFakeJobStore(), nil, &fakeRunner{}, nil, time.Minute, 0)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestJobHandler(t *testing.T) {
	store := newFakeJobStore()
	runner := &fakeRunner{}
	m := &fakeMetrics{}
	h := NewJobHandler("sentiment.jobs", NewJobService(store, nil, runner, nil, time.Minute, 0), m)

	if h.Topic() != "sentiment.jobs" {
		t.Fatalf("unexpected topic %q", h.Topic())
	}
	if err := h.Handle(context.Background(), []byte("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
	if err := h.Handle(context.Background(), []byte(`{"id":""}`)); err == nil {
		t.Fatalf("expected validation error")
	}

	b, _ := json.Marshal(models.Job{ID: "j3", Status: models.JobQueued, Params: testParams()})
	if err := h.Handle(context.Background(), b); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(runner.params) != 1 || !runner.params[0].End.Equal(day("2024-01-05")) {
		t.Fatalf("unexpected runner params %+v", runner.params)
	}
	if m.errors["consumer_unmarshal"] != 1 || m.errors["consumer_invalid"] != 1 {
		t.Fatalf("unexpected error metrics %v", m.errors)
	}
}
