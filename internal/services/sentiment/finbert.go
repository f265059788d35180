package sentiment

import (
	"context"
	"fmt"
	"strings"

	"SentiPull/internal/domain/models"
	dservice "SentiPull/internal/domain/service"
	"SentiPull/pkg/config"
	xhttp "SentiPull/pkg/http"
	applogger "SentiPull/pkg/logger"
)

// FinBERT calls a Hugging Face style text-classification inference endpoint.
type FinBERT struct {
	url       string
	token     string
	model     string
	maxChars  int
	batchSize int
	http      *xhttp.Client
	log       *applogger.Logger
}

var _ dservice.SentimentClassifier = (*FinBERT)(nil)

func NewFinBERT(cfg Config, l *applogger.Logger) *FinBERT {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api-inference.huggingface.co/models"
	}
	if cfg.Model == "" {
		cfg.Model = "ProsusAI/finbert"
	}
	if l == nil {
		l = applogger.NewNop()
	}
	return &FinBERT{
		url:       strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Model,
		token:     cfg.APIToken,
		model:     cfg.Model,
		maxChars:  cfg.MaxInputChars,
		batchSize: cfg.BatchSize,
		http: xhttp.NewClient(
			xhttp.WithTimeout(cfg.Timeout),
			xhttp.WithRetry(cfg.RetryMax, cfg.RetryBackoff),
		),
		log: l.With(applogger.String("classifier", TypeFinBERT)),
	}
}

func (f *FinBERT) Name() string { return TypeFinBERT + ":" + f.model }

type inferenceRequest struct {
	Inputs  []string        `json:"inputs"`
	Options map[string]bool `json:"options,omitempty"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (f *FinBERT) Classify(ctx context.Context, texts []string) ([]models.Classification, error) {
	if err := config.RequireCredential("huggingface api token", f.token); err != nil {
		return nil, err
	}
	return classifyInBatches(ctx, texts, f.maxChars, f.batchSize, f.post)
}

func (f *FinBERT) post(ctx context.Context, chunk []string) ([]models.Classification, error) {
	var rows [][]labelScore
	err := f.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    f.url,
		Headers: map[string]string{
			"Authorization": "Bearer " + f.token,
			"Content-Type":  "application/json",
		},
		Body: inferenceRequest{Inputs: chunk, Options: map[string]bool{"wait_for_model": true}},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("finbert inference: %w", err)
	}

	out := make([]models.Classification, len(rows))
	for i, row := range rows {
		out[i] = best(row)
	}
	return out, nil
}

// best picks the highest scoring label of one row.
func best(row []labelScore) models.Classification {
	var c models.Classification
	for i, ls := range row {
		if i == 0 || ls.Score > c.Score {
			c = models.Classification{Label: strings.ToLower(ls.Label), Score: ls.Score}
		}
	}
	return c
}
