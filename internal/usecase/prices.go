package usecase

import (
	"context"
	"fmt"
	"time"

	"SentiPull/internal/domain/models"
	dservice "SentiPull/internal/domain/service"
	"SentiPull/internal/services/features"
)

// PricesUseCase serves daily candles with moving averages.
type PricesUseCase struct {
	source dservice.PriceSource
}

func NewPricesUseCase(source dservice.PriceSource) *PricesUseCase {
	return &PricesUseCase{source: source}
}

func (uc *PricesUseCase) Indicators(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceIndicators, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if from.After(to) {
		return nil, fmt.Errorf("from must be <= to")
	}
	candles, err := uc.source.DailyCandles(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily candles: %w", err)
	}
	return features.ComputeIndicators(candles), nil
}
