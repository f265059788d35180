package usecase

import (
	"context"
	"errors"
	"testing"

	"SentiPull/internal/domain/models"
)

func TestScoreChanges(t *testing.T) {
	cases := []struct {
		name    string
		changes []float64
		want    float64
	}{
		{"mixed", []float64{100, -50, 20}, 0.412},
		{"empty", nil, 0},
		{"balanced", []float64{10, -10}, 0},
		{"only sells", []float64{-5, -7}, -1},
		{"zeros", []float64{0, 0}, 0},
		{"two thirds", []float64{2, -1}, 0.333},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ScoreChanges(tc.changes); got != tc.want {
				t.Fatalf("ScoreChanges(%v) = %v, want %v", tc.changes, got, tc.want)
			}
		})
	}
}

func TestInsiderScorerScore(t *testing.T) {
	m := &fakeMetrics{}
	src := &fakeInsider{txs: []models.InsiderTransaction{{Change: 100}, {Change: -50}, {Change: 20}}}
	s := NewInsiderScorer(src, m)

	got, err := s.Score(context.Background(), "AAPL", day("2024-01-01"), day("2024-01-31"))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if got.Score != 0.412 || got.BuyShares != 120 || got.SellShares != 50 || got.Transactions != 3 {
		t.Fatalf("unexpected score %+v", got)
	}
	if m.insider != 0.412 {
		t.Fatalf("metric not recorded")
	}
}

func TestInsiderScorerPropagatesError(t *testing.T) {
	s := NewInsiderScorer(&fakeInsider{err: errBoom}, nil)
	if _, err := s.Score(context.Background(), "AAPL", day("2024-01-01"), day("2024-01-31")); !errors.Is(err, errBoom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
