package features

import (
	"math"
	"testing"

	"SentiPull/internal/domain/models"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestMeanStdPopulation(t *testing.T) {
	mean, std := MeanStd([]float64{0.9, -0.8, 0})
	if !almost(mean, 0.1/3) {
		t.Fatalf("unexpected mean %v", mean)
	}
	// population variance: ((0.8667)^2 + (-0.8333)^2 + (-0.0333)^2)/3
	want := math.Sqrt((math.Pow(0.9-0.1/3, 2) + math.Pow(-0.8-0.1/3, 2) + math.Pow(0.1/3, 2)) / 3)
	if !almost(std, want) {
		t.Fatalf("expected std %v, got %v", want, std)
	}
}

func TestMeanStdSingleAndEmpty(t *testing.T) {
	mean, std := MeanStd([]float64{0.5})
	if mean != 0.5 || std != 0 {
		t.Fatalf("single value: got %v %v", mean, std)
	}
	mean, std = MeanStd(nil)
	if !math.IsNaN(mean) || !math.IsNaN(std) {
		t.Fatalf("empty: expected NaN, got %v %v", mean, std)
	}
}

func TestSMAWarmup(t *testing.T) {
	got := SMA([]float64{1, 2, 3, 4}, 3)
	if !math.IsNaN(got[0]) || !math.IsNaN(got[1]) {
		t.Fatalf("expected NaN warmup, got %v", got)
	}
	if got[2] != 2 || got[3] != 3 {
		t.Fatalf("unexpected sma %v", got)
	}
}

func TestEMASeededWithFirstClose(t *testing.T) {
	got := EMA([]float64{10, 20}, 3) // alpha 0.5
	if got[0] != 10 || got[1] != 15 {
		t.Fatalf("unexpected ema %v", got)
	}
}

func TestComputeIndicatorsShape(t *testing.T) {
	candles := make([]models.Candle, 25)
	for i := range candles {
		candles[i].Close = float64(i + 1)
	}
	got := ComputeIndicators(candles)
	if len(got) != 25 {
		t.Fatalf("unexpected length %d", len(got))
	}
	if !math.IsNaN(got[8].SMA10) || got[9].SMA10 != 5.5 {
		t.Fatalf("unexpected sma10 around warmup: %v %v", got[8].SMA10, got[9].SMA10)
	}
	if !math.IsNaN(got[18].SMA20) || got[19].SMA20 != 10.5 {
		t.Fatalf("unexpected sma20 around warmup")
	}
}
