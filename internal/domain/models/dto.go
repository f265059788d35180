package models

import (
	"math"
	"time"

	"SentiPull/pkg/util"

	"github.com/guregu/null/v6"
)

// Wire representations. NaN has no JSON form, so every float that can be NaN
// travels as a nullable value.

func nullFloat(f float64) null.Float {
	return null.NewFloat(f, !math.IsNaN(f) && !math.IsInf(f, 0))
}

type DailySentimentDTO struct {
	Date         string     `json:"date"`
	Mean         null.Float `json:"mean_sentiment"`
	Std          null.Float `json:"std_sentiment"`
	ArticleCount int        `json:"article_count"`
}

func NewDailySentimentDTOs(s DailySentimentSeries) []DailySentimentDTO {
	out := make([]DailySentimentDTO, len(s))
	for i, r := range s {
		out[i] = DailySentimentDTO{
			Date:         r.Date.Format(util.DateLayout),
			Mean:         nullFloat(r.Mean),
			Std:          nullFloat(r.Std),
			ArticleCount: r.ArticleCount,
		}
	}
	return out
}

type MergedSentimentDTO struct {
	Date                     string     `json:"date"`
	MeanA                    null.Float `json:"mean_sentiment_a"`
	StdA                     null.Float `json:"std_sentiment_a"`
	CountA                   int        `json:"article_count_a"`
	MeanB                    null.Float `json:"mean_sentiment_b"`
	StdB                     null.Float `json:"std_sentiment_b"`
	CountB                   int        `json:"article_count_b"`
	SentimentAvg             null.Float `json:"sentiment_avg"`
	ArticleCountAvg          float64    `json:"article_count_avg"`
	StdAvg                   null.Float `json:"std_avg"`
	SentimentDisagreement    null.Float `json:"sentiment_disagreement"`
	SentimentDisagreementPct null.Float `json:"sentiment_disagreement_pct"`
}

func NewMergedSentimentDTOs(rows []MergedSentimentRecord) []MergedSentimentDTO {
	out := make([]MergedSentimentDTO, len(rows))
	for i, r := range rows {
		out[i] = MergedSentimentDTO{
			Date:                     r.Date.Format(util.DateLayout),
			MeanA:                    nullFloat(r.MeanA),
			StdA:                     nullFloat(r.StdA),
			CountA:                   r.CountA,
			MeanB:                    nullFloat(r.MeanB),
			StdB:                     nullFloat(r.StdB),
			CountB:                   r.CountB,
			SentimentAvg:             nullFloat(r.SentimentAvg),
			ArticleCountAvg:          r.ArticleCountAvg,
			StdAvg:                   nullFloat(r.StdAvg),
			SentimentDisagreement:    nullFloat(r.SentimentDisagreement),
			SentimentDisagreementPct: nullFloat(r.SentimentDisagreementPct),
		}
	}
	return out
}

type InsiderScoreDTO struct {
	Symbol       string  `json:"symbol"`
	From         string  `json:"from"`
	To           string  `json:"to"`
	Score        float64 `json:"insider_score"`
	BuyShares    float64 `json:"buy_shares"`
	SellShares   float64 `json:"sell_shares"`
	Transactions int     `json:"transactions"`
}

func NewInsiderScoreDTO(s *InsiderScore) *InsiderScoreDTO {
	if s == nil {
		return nil
	}
	return &InsiderScoreDTO{
		Symbol:       s.Symbol,
		From:         s.From.Format(util.DateLayout),
		To:           s.To.Format(util.DateLayout),
		Score:        s.Score,
		BuyShares:    s.BuyShares,
		SellShares:   s.SellShares,
		Transactions: s.Transactions,
	}
}

type SentimentReportDTO struct {
	RunID        string               `json:"run_id"`
	Symbol       string               `json:"symbol"`
	Start        string               `json:"start"`
	End          string               `json:"end"`
	SourceA      string               `json:"source_a"`
	SourceB      string               `json:"source_b"`
	Classifier   string               `json:"classifier"`
	DailyA       []DailySentimentDTO  `json:"daily_a"`
	DailyB       []DailySentimentDTO  `json:"daily_b"`
	Merged       []MergedSentimentDTO `json:"merged"`
	InsiderScore *InsiderScoreDTO     `json:"insider_score,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

func NewSentimentReportDTO(r *SentimentReport) *SentimentReportDTO {
	return &SentimentReportDTO{
		RunID:        r.RunID,
		Symbol:       r.Symbol,
		Start:        r.Start.Format(util.DateLayout),
		End:          r.End.Format(util.DateLayout),
		SourceA:      r.SourceA,
		SourceB:      r.SourceB,
		Classifier:   r.Classifier,
		DailyA:       NewDailySentimentDTOs(r.DailyA),
		DailyB:       NewDailySentimentDTOs(r.DailyB),
		Merged:       NewMergedSentimentDTOs(r.Merged),
		InsiderScore: NewInsiderScoreDTO(r.InsiderScore),
		CreatedAt:    r.CreatedAt,
	}
}

type InsiderSentimentDTO struct {
	Symbol string  `json:"symbol"`
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Change float64 `json:"change"`
	MSPR   float64 `json:"mspr"`
}

func NewInsiderSentimentDTOs(rows []InsiderSentiment) []InsiderSentimentDTO {
	out := make([]InsiderSentimentDTO, len(rows))
	for i, r := range rows {
		out[i] = InsiderSentimentDTO(r)
	}
	return out
}

type PriceIndicatorsDTO struct {
	Date   string     `json:"date"`
	Open   float64    `json:"open"`
	High   float64    `json:"high"`
	Low    float64    `json:"low"`
	Close  float64    `json:"close"`
	Volume float64    `json:"volume"`
	SMA10  null.Float `json:"sma_10"`
	SMA20  null.Float `json:"sma_20"`
	EMA10  null.Float `json:"ema_10"`
	EMA20  null.Float `json:"ema_20"`
}

func NewPriceIndicatorsDTOs(rows []PriceIndicators) []PriceIndicatorsDTO {
	out := make([]PriceIndicatorsDTO, len(rows))
	for i, r := range rows {
		out[i] = PriceIndicatorsDTO{
			Date:   r.Date.Format(util.DateLayout),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
			SMA10:  nullFloat(r.SMA10),
			SMA20:  nullFloat(r.SMA20),
			EMA10:  nullFloat(r.EMA10),
			EMA20:  nullFloat(r.EMA20),
		}
	}
	return out
}
