package models

// Requests for sentiment HTTP endpoints. Dates are YYYY-MM-DD; empty bounds fall
// back to the configured lookback window.

type DailySentimentRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,ticker"`
	Source string `query:"source" json:"source" default:"finnhub" validate:"oneof=finnhub newsapi rss"`
	From   string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type MergedSentimentRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,ticker"`
	From   string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type HistoryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,ticker"`
	Source string `query:"source" json:"source" default:"merged" validate:"oneof=merged finnhub newsapi rss"`
	From   string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type InsiderRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,ticker"`
	From   string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type PriceIndicatorsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,ticker"`
	From   string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type CreateJobRequest struct {
	Symbol         string `json:"symbol" validate:"required,ticker"`
	From           string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To             string `json:"to" validate:"omitempty,datetime=2006-01-02"`
	IncludeInsider bool   `json:"include_insider"`
	Persist        *bool  `json:"persist" default:"true"`
}

type JobIDRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

type DailySentimentResponse struct {
	Symbol string              `json:"symbol"`
	Source string              `json:"source"`
	From   string              `json:"from"`
	To     string              `json:"to"`
	Series []DailySentimentDTO `json:"series"`
}

type MergedSentimentResponse struct {
	Symbol  string               `json:"symbol"`
	SourceA string               `json:"source_a"`
	SourceB string               `json:"source_b"`
	From    string               `json:"from"`
	To      string               `json:"to"`
	Rows    []MergedSentimentDTO `json:"rows"`
}

type InsiderSentimentResponse struct {
	Symbol string                `json:"symbol"`
	From   string                `json:"from"`
	To     string                `json:"to"`
	Rows   []InsiderSentimentDTO `json:"rows"`
}

type PriceIndicatorsResponse struct {
	Symbol string               `json:"symbol"`
	From   string               `json:"from"`
	To     string               `json:"to"`
	Rows   []PriceIndicatorsDTO `json:"rows"`
}
