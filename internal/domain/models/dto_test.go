package models

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"
)

func TestSignedScore(t *testing.T) {
	cases := []struct {
		c    Classification
		want float64
	}{
		{Classification{Label: "positive", Score: 0.9}, 0.9},
		{Classification{Label: "NEGATIVE", Score: 0.8}, -0.8},
		{Classification{Label: "Neutral", Score: 0.99}, 0},
		{Classification{Label: "LABEL_2", Score: 0.5}, 0},
	}
	for _, tc := range cases {
		if got := SignedScore(tc.c); got != tc.want {
			t.Fatalf("%+v: expected %v, got %v", tc.c, tc.want, got)
		}
	}
}

func TestDailyDTOEncodesNaNAsNull(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	dtos := NewDailySentimentDTOs(DailySentimentSeries{{Date: day, Mean: math.NaN(), Std: math.NaN()}})
	b, err := json.Marshal(dtos)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(b)
	if !strings.Contains(got, `"mean_sentiment":null`) || !strings.Contains(got, `"date":"2024-01-02"`) {
		t.Fatalf("unexpected json %s", got)
	}
}
