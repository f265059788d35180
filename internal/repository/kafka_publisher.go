package repository

import (
	"context"
	"fmt"

	"SentiPull/internal/domain/models"
	domrepo "SentiPull/internal/domain/repository"
	pkgkafka "SentiPull/pkg/kafka"
	applogger "SentiPull/pkg/logger"
)

// messagePublisher is the part of *kafka.Producer the publisher needs.
type messagePublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaPublisher publishes reports and job requests as JSON.
type KafkaPublisher struct {
	producer     messagePublisher
	resultsTopic string
	jobsTopic    string
	metrics      domrepo.Metrics
}

var (
	_ domrepo.Publisher   = (*KafkaPublisher)(nil)
	_ applogger.Publisher = (*KafkaPublisher)(nil)
	_ messagePublisher    = (*pkgkafka.Producer)(nil)
)

func NewKafkaPublisher(producer *pkgkafka.Producer, resultsTopic, jobsTopic string, metrics domrepo.Metrics) *KafkaPublisher {
	return newKafkaPublisher(producer, resultsTopic, jobsTopic, metrics)
}

func newKafkaPublisher(producer messagePublisher, resultsTopic, jobsTopic string, metrics domrepo.Metrics) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, resultsTopic: resultsTopic, jobsTopic: jobsTopic, metrics: metrics}
}

// PublishReport keys the message by symbol so a symbol's reports stay ordered.
func (p *KafkaPublisher) PublishReport(ctx context.Context, r *models.SentimentReport) error {
	if err := p.producer.Publish(ctx, p.resultsTopic, []byte(r.Symbol), models.NewSentimentReportDTO(r)); err != nil {
		return fmt.Errorf("publish report %s: %w", r.RunID, err)
	}
	p.record("report")
	return nil
}

func (p *KafkaPublisher) PublishJob(ctx context.Context, job *models.Job) error {
	if err := p.producer.Publish(ctx, p.jobsTopic, []byte(job.ID), job); err != nil {
		return fmt.Errorf("publish job %s: %w", job.ID, err)
	}
	p.record("job")
	return nil
}

// PublishMessage ships aggregated log entries for the logger's collector.
func (p *KafkaPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

func (p *KafkaPublisher) record(kind string) {
	if p.metrics != nil {
		p.metrics.RecordPublished("kafka", kind)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
