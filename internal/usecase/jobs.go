package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"SentiPull/internal/domain/models"
	drepo "SentiPull/internal/domain/repository"
	applogger "SentiPull/pkg/logger"
	"SentiPull/pkg/util"

	"github.com/google/uuid"
)

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrRunInProgress = errors.New("a run for this symbol and range is already in progress")
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context, params models.RunParams) (*models.SentimentReport, error)
}

// JobService creates asynchronous runs and tracks their status. Jobs go to the
// publisher when one is configured and run in-process otherwise.
type JobService struct {
	store      drepo.JobStore
	publisher  drepo.Publisher
	runner     Runner
	log        *applogger.Logger
	lockTTL    time.Duration
	runTimeout time.Duration
	now        func() time.Time
	wg         sync.WaitGroup
}

func NewJobService(store drepo.JobStore, publisher drepo.Publisher, runner Runner, l *applogger.Logger, lockTTL, runTimeout time.Duration) *JobService {
	if l == nil {
		l = applogger.NewNop()
	}
	return &JobService{
		store:      store,
		publisher:  publisher,
		runner:     runner,
		log:        l,
		lockTTL:    lockTTL,
		runTimeout: runTimeout,
		now:        time.Now,
	}
}

// Create registers a queued job and dispatches it.
func (s *JobService) Create(ctx context.Context, params models.RunParams) (*models.Job, error) {
	now := s.now().UTC()
	job := &models.Job{
		ID:        uuid.NewString(),
		Status:    models.JobQueued,
		Params:    params,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("save job: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishJob(ctx, job); err != nil {
			return nil, fmt.Errorf("publish job: %w", err)
		}
		return job, nil
	}

	queued := *job
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Execute(context.WithoutCancel(ctx), &queued); err != nil {
			s.log.Error("in-process job failed", applogger.String("job_id", queued.ID), applogger.Error(err))
		}
	}()
	return job, nil
}

func (s *JobService) Get(ctx context.Context, id string) (*models.Job, error) {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// Execute runs a job under the run lock for its symbol and range and records the
// outcome. Run failures end up in the job status; the returned error covers only
// job store failures.
func (s *JobService) Execute(ctx context.Context, job *models.Job) error {
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}
	log := s.log.With(applogger.String("job_id", job.ID), applogger.String("symbol", job.Params.Symbol))

	key := LockKey(job.Params)
	ok, err := s.store.Acquire(ctx, key, job.ID, s.lockTTL)
	if err != nil {
		return fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		log.Warn("duplicate run skipped", applogger.String("lock", key))
		return s.finish(ctx, job, nil, ErrRunInProgress)
	}
	defer func() {
		if err := s.store.Release(context.WithoutCancel(ctx), key, job.ID); err != nil {
			log.Warn("release run lock", applogger.Error(err))
		}
	}()

	job.Status = models.JobRunning
	job.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, job); err != nil {
		return fmt.Errorf("save job: %w", err)
	}

	report, runErr := s.runner.Run(ctx, job.Params)
	return s.finish(ctx, job, report, runErr)
}

func (s *JobService) finish(ctx context.Context, job *models.Job, report *models.SentimentReport, runErr error) error {
	job.UpdatedAt = s.now().UTC()
	if runErr != nil {
		job.Status = models.JobFailed
		job.Error = runErr.Error()
	} else {
		job.Status = models.JobDone
		job.RunID = report.RunID
		job.Error = ""
	}
	if err := s.store.Save(context.WithoutCancel(ctx), job); err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

// Wait blocks until in-process jobs have finished.
func (s *JobService) Wait() { s.wg.Wait() }

// LockKey identifies a run by symbol and date range.
func LockKey(p models.RunParams) string {
	return fmt.Sprintf("%s:%s:%s", p.Symbol, p.Start.Format(util.DateLayout), p.End.Format(util.DateLayout))
}
