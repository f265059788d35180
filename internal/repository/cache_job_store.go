package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SentiPull/internal/domain/models"
	domrepo "SentiPull/internal/domain/repository"
	"SentiPull/pkg/cache"
)

// CacheJobStore keeps job status and run locks in a cache.Service (Redis or memory).
type CacheJobStore struct {
	cache  cache.Service
	jobTTL time.Duration
}

var _ domrepo.JobStore = (*CacheJobStore)(nil)

func NewCacheJobStore(c cache.Service, jobTTL time.Duration) *CacheJobStore {
	return &CacheJobStore{cache: c, jobTTL: jobTTL}
}

func jobKey(id string) string { return cache.Key("job", id) }
func runLockKey(k string) string { return cache.Key("lock", "run", k) }

func (s *CacheJobStore) Save(ctx context.Context, job *models.Job) error {
	if err := s.cache.Set(ctx, jobKey(job.ID), job, s.jobTTL); err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return nil
}

func (s *CacheJobStore) Get(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	err := s.cache.Get(ctx, jobKey(id), &job)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return &job, nil
}

func (s *CacheJobStore) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	return s.cache.TryLock(ctx, runLockKey(key), owner, ttl)
}

func (s *CacheJobStore) Release(ctx context.Context, key, owner string) error {
	if _, err := s.cache.Unlock(ctx, runLockKey(key), owner); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}
