package usecase

import (
	"math"
	"sort"

	"SentiPull/internal/domain/models"
)

// Merge inner-joins two daily series on date. Only dates present in both appear,
// ascending. NaN inputs propagate; the disagreement ratio is NaN when the averaged
// std is zero or NaN.
func Merge(a, b models.DailySentimentSeries) []models.MergedSentimentRecord {
	byDate := make(map[int64]models.DailySentimentRecord, len(b))
	for _, r := range b {
		byDate[r.Date.Unix()] = r
	}

	out := make([]models.MergedSentimentRecord, 0, min(len(a), len(b)))
	for _, ra := range a {
		rb, ok := byDate[ra.Date.Unix()]
		if !ok {
			continue
		}
		out = append(out, mergeDay(ra, rb))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func mergeDay(a, b models.DailySentimentRecord) models.MergedSentimentRecord {
	m := models.MergedSentimentRecord{
		Date:            a.Date,
		MeanA:           a.Mean,
		StdA:            a.Std,
		CountA:          a.ArticleCount,
		MeanB:           b.Mean,
		StdB:            b.Std,
		CountB:          b.ArticleCount,
		SentimentAvg:    (a.Mean + b.Mean) / 2,
		ArticleCountAvg: float64(a.ArticleCount+b.ArticleCount) / 2,
		StdAvg:          (a.Std + b.Std) / 2,
	}
	m.SentimentDisagreement = math.Abs(a.Mean - b.Mean)
	m.SentimentDisagreementPct = math.NaN()
	if !math.IsNaN(m.StdAvg) && m.StdAvg != 0 {
		m.SentimentDisagreementPct = m.SentimentDisagreement / m.StdAvg
	}
	return m
}
