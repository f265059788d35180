package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"SentiPull/internal/domain/models"
	drepo "SentiPull/internal/domain/repository"
	pkgkafka "SentiPull/pkg/kafka"
)

// JobHandler consumes job requests from Kafka and executes them.
type JobHandler struct {
	topic   string
	jobs    *JobService
	metrics drepo.Metrics
}

func NewJobHandler(topic string, jobs *JobService, metrics drepo.Metrics) *JobHandler {
	return &JobHandler{topic: topic, jobs: jobs, metrics: metrics}
}

func (h *JobHandler) Topic() string { return h.topic }

// message schema: models.Job as published by JobService.Create
func (h *JobHandler) Handle(ctx context.Context, b []byte) error {
	var job models.Job
	if err := json.Unmarshal(b, &job); err != nil {
		h.recordError("consumer_unmarshal")
		return fmt.Errorf("decode job: %w", err)
	}
	if job.ID == "" || job.Params.Symbol == "" {
		h.recordError("consumer_invalid")
		return fmt.Errorf("job without id or symbol")
	}
	if err := h.jobs.Execute(ctx, &job); err != nil {
		h.recordError("consumer_job")
		return err
	}
	return nil
}

func (h *JobHandler) recordError(kind string) {
	if h.metrics != nil {
		h.metrics.RecordError(kind)
	}
}

var _ pkgkafka.MessageHandler = (*JobHandler)(nil)
