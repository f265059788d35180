package sentiment

import (
	"context"
	"math"

	"SentiPull/internal/domain/models"
	dservice "SentiPull/internal/domain/service"
	"SentiPull/internal/services/features"

	"github.com/jonreiter/govader"
)

// VADER thresholds on the compound score.
const (
	vaderPositive = 0.05
	vaderNegative = -0.05
)

// VADER is an offline lexicon classifier. Input may be markdown; it is rendered to
// plain text first.
type VADER struct {
	analyzer *govader.SentimentIntensityAnalyzer
	maxChars int
}

var _ dservice.SentimentClassifier = (*VADER)(nil)

func NewVADER(cfg Config) *VADER {
	return &VADER{
		analyzer: govader.NewSentimentIntensityAnalyzer(),
		maxChars: cfg.MaxInputChars,
	}
}

func (v *VADER) Name() string { return TypeVADER }

func (v *VADER) Classify(ctx context.Context, texts []string) ([]models.Classification, error) {
	return classifyInBatches(ctx, texts, v.maxChars, 0, func(ctx context.Context, chunk []string) ([]models.Classification, error) {
		out := make([]models.Classification, len(chunk))
		for i, t := range chunk {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = v.classify(t)
		}
		return out, nil
	})
}

func (v *VADER) classify(text string) models.Classification {
	compound := v.analyzer.PolarityScores(features.PlainText(text)).Compound
	label := models.LabelNeutral
	switch {
	case compound >= vaderPositive:
		label = models.LabelPositive
	case compound <= vaderNegative:
		label = models.LabelNegative
	}
	return models.Classification{Label: label, Score: math.Abs(compound)}
}
