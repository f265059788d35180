//go:build ORT

package sentiment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"SentiPull/internal/domain/models"
	dservice "SentiPull/internal/domain/service"
	applogger "SentiPull/pkg/logger"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

// ONNX runs an exported FinBERT model locally through onnxruntime.
type ONNX struct {
	mu        sync.Mutex
	session   *hugot.Session
	pipeline  *pipelines.TextClassificationPipeline
	maxChars  int
	batchSize int
	log       *applogger.Logger
}

var _ dservice.SentimentClassifier = (*ONNX)(nil)

func NewONNX(cfg Config, l *applogger.Logger) (*ONNX, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("classifier.model_path is required for onnx")
	}
	if l == nil {
		l = applogger.NewNop()
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("onnx session: %w", err)
	}
	pipeline, err := hugot.NewPipeline(session, hugot.TextClassificationConfig{
		ModelPath: cfg.ModelPath,
		Name:      "finbert",
	})
	if err != nil {
		_ = session.Destroy()
		return nil, fmt.Errorf("onnx pipeline: %w", err)
	}

	l.Info("onnx classifier loaded", applogger.String("model_path", cfg.ModelPath))
	return &ONNX{
		session:   session,
		pipeline:  pipeline,
		maxChars:  cfg.MaxInputChars,
		batchSize: cfg.BatchSize,
		log:       l,
	}, nil
}

func (o *ONNX) Name() string { return TypeONNX }

func (o *ONNX) Classify(ctx context.Context, texts []string) ([]models.Classification, error) {
	return classifyInBatches(ctx, texts, o.maxChars, o.batchSize, o.run)
}

func (o *ONNX) run(ctx context.Context, chunk []string) ([]models.Classification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.mu.Lock()
	res, err := o.pipeline.RunPipeline(chunk)
	o.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("onnx inference: %w", err)
	}

	out := make([]models.Classification, len(res.ClassificationOutputs))
	for i, row := range res.ClassificationOutputs {
		for j, c := range row {
			if j == 0 || float64(c.Score) > out[i].Score {
				out[i] = models.Classification{Label: strings.ToLower(c.Label), Score: float64(c.Score)}
			}
		}
	}
	return out, nil
}

// Close releases the onnxruntime session.
func (o *ONNX) Close() {
	if err := o.session.Destroy(); err != nil {
		o.log.Warn("destroy onnx session", applogger.Error(err))
	}
}
