package features

import (
	"math"

	"SentiPull/internal/domain/models"
)

// SMA returns the simple moving average of closes over window. Entries before the
// window fills are NaN.
func SMA(closes []float64, window int) []float64 {
	out := make([]float64, len(closes))
	var sum float64
	for i, c := range closes {
		sum += c
		if i >= window {
			sum -= closes[i-window]
		}
		if window <= 0 || i+1 < window {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(window)
	}
	return out
}

// EMA returns the exponential moving average with alpha = 2/(span+1), seeded with
// the first close.
func EMA(closes []float64, span int) []float64 {
	out := make([]float64, len(closes))
	if len(closes) == 0 {
		return out
	}
	alpha := 2 / (float64(span) + 1)
	out[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		out[i] = alpha*closes[i] + (1-alpha)*out[i-1]
	}
	return out
}

// ComputeIndicators decorates ascending daily candles with 10 and 20 day SMA/EMA.
func ComputeIndicators(candles []models.Candle) []models.PriceIndicators {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	sma10, sma20 := SMA(closes, 10), SMA(closes, 20)
	ema10, ema20 := EMA(closes, 10), EMA(closes, 20)

	out := make([]models.PriceIndicators, len(candles))
	for i, c := range candles {
		out[i] = models.PriceIndicators{
			Candle: c,
			SMA10:  sma10[i],
			SMA20:  sma20[i],
			EMA10:  ema10[i],
			EMA20:  ema20[i],
		}
	}
	return out
}
