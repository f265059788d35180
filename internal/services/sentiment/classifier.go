// Package sentiment provides the text classifiers behind service.SentimentClassifier.
package sentiment

import (
	"context"
	"fmt"
	"time"

	"SentiPull/internal/domain/models"
	dservice "SentiPull/internal/domain/service"
	"SentiPull/internal/services/features"
	applogger "SentiPull/pkg/logger"
)

const (
	TypeFinBERT = "finbert"
	TypeVADER   = "vader"
	TypeONNX    = "onnx"
)

// Config selects and tunes a classifier.
type Config struct {
	Type          string
	Endpoint      string
	Model         string
	APIToken      string
	ModelPath     string
	MaxInputChars int
	BatchSize     int
	Timeout       time.Duration
	RetryMax      int
	RetryBackoff  time.Duration
}

// New builds the classifier named by cfg.Type. The returned closer releases model
// resources and is never nil.
func New(cfg Config, l *applogger.Logger) (dservice.SentimentClassifier, func(), error) {
	switch cfg.Type {
	case TypeFinBERT, "":
		return NewFinBERT(cfg, l), func() {}, nil
	case TypeVADER:
		return NewVADER(cfg), func() {}, nil
	case TypeONNX:
		c, err := NewONNX(cfg, l)
		if err != nil {
			return nil, func() {}, err
		}
		return c, c.Close, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown classifier type %q", cfg.Type)
	}
}

type batchFunc func(ctx context.Context, texts []string) ([]models.Classification, error)

// classifyInBatches truncates texts, submits them in order in chunks of size and
// checks every chunk returns exactly one result per input.
func classifyInBatches(ctx context.Context, texts []string, maxChars, size int, fn batchFunc) ([]models.Classification, error) {
	if len(texts) == 0 {
		return []models.Classification{}, nil
	}
	if size <= 0 {
		size = len(texts)
	}

	out := make([]models.Classification, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		chunk := make([]string, end-start)
		for i, t := range texts[start:end] {
			chunk[i] = features.Truncate(t, maxChars)
		}

		res, err := fn(ctx, chunk)
		if err != nil {
			return nil, err
		}
		if len(res) != len(chunk) {
			return nil, fmt.Errorf("classifier returned %d results for %d texts", len(res), len(chunk))
		}
		out = append(out, res...)
	}
	return out, nil
}
