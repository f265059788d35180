package usecase

import (
	"context"
	"fmt"
	"time"

	"SentiPull/internal/domain/models"
	drepo "SentiPull/internal/domain/repository"
	dservice "SentiPull/internal/domain/service"

	"github.com/shopspring/decimal"
)

// InsiderScorer scores net insider buying over a window.
type InsiderScorer struct {
	source  dservice.InsiderSource
	metrics drepo.Metrics
}

func NewInsiderScorer(source dservice.InsiderSource, metrics drepo.Metrics) *InsiderScorer {
	return &InsiderScorer{source: source, metrics: metrics}
}

// ScoreChanges returns (buy - sell)/(buy + sell) rounded to three decimals, where
// buy sums the positive share changes and sell the absolute negative ones. It is 0
// when there is no activity.
func ScoreChanges(changes []float64) float64 {
	buy, sell := decimal.Zero, decimal.Zero
	for _, c := range changes {
		d := decimal.NewFromFloat(c)
		switch d.Sign() {
		case 1:
			buy = buy.Add(d)
		case -1:
			sell = sell.Add(d.Abs())
		}
	}
	total := buy.Add(sell)
	if total.IsZero() {
		return 0
	}
	score, _ := buy.Sub(sell).DivRound(total, 16).Round(3).Float64()
	return score
}

// Score fetches filings for [from, to] and scores them.
func (s *InsiderScorer) Score(ctx context.Context, symbol string, from, to time.Time) (*models.InsiderScore, error) {
	txs, err := s.source.InsiderTransactions(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("insider transactions: %w", err)
	}

	changes := make([]float64, len(txs))
	var buy, sell float64
	for i, tx := range txs {
		changes[i] = tx.Change
		if tx.Change > 0 {
			buy += tx.Change
		} else {
			sell -= tx.Change
		}
	}

	score := &models.InsiderScore{
		Symbol:       symbol,
		From:         from,
		To:           to,
		Score:        ScoreChanges(changes),
		BuyShares:    buy,
		SellShares:   sell,
		Transactions: len(txs),
	}
	if s.metrics != nil {
		s.metrics.RecordInsiderScore(symbol, score.Score)
	}
	return score, nil
}

// Sentiment returns Finnhub's monthly MSPR series for [from, to].
func (s *InsiderScorer) Sentiment(ctx context.Context, symbol string, from, to time.Time) ([]models.InsiderSentiment, error) {
	out, err := s.source.InsiderSentiment(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("insider sentiment: %w", err)
	}
	return out, nil
}
