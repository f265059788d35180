package finnhub

import (
	"context"
	"fmt"
	"strings"
	"time"

	"SentiPull/internal/domain/models"
	drepo "SentiPull/internal/domain/repository"
	dservice "SentiPull/internal/domain/service"
	"SentiPull/internal/service/fetch"
	"SentiPull/internal/service/ratelimit"
	"SentiPull/pkg/config"
	xhttp "SentiPull/pkg/http"
	applogger "SentiPull/pkg/logger"
	"SentiPull/pkg/util"
)

// Name identifies the provider in logs, metrics and stored rows.
const Name = config.ProviderFinnhub

// Config holds REST client settings.
type Config struct {
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	RatePerMinute int
	RetryMax      int
	RetryBackoff  time.Duration
}

// Client is a Finnhub REST client covering company news, insider data and candles.
type Client struct {
	apiKey  string
	baseURL string
	rate    int
	http    *xhttp.Client
	limiter *ratelimit.Limiter
	log     *applogger.Logger
	metrics drepo.Metrics
}

var (
	_ dservice.NewsFetcher   = (*Client)(nil)
	_ dservice.InsiderSource = (*Client)(nil)
	_ dservice.PriceSource   = (*Client)(nil)
)

// New creates a Finnhub client. limiter and metrics may be nil.
func New(cfg Config, limiter *ratelimit.Limiter, l *applogger.Logger, metrics drepo.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://finnhub.io/api/v1"
	}
	if l == nil {
		l = applogger.NewNop()
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		rate:    cfg.RatePerMinute,
		http: xhttp.NewClient(
			xhttp.WithTimeout(cfg.Timeout),
			xhttp.WithRetry(cfg.RetryMax, cfg.RetryBackoff),
		),
		limiter: limiter,
		log:     l.With(applogger.String("provider", Name)),
		metrics: metrics,
	}
}

func (c *Client) Name() string { return Name }

type companyNews struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// FetchArticles returns company news published on day. Failures other than a
// missing key are logged and reported as no articles.
func (c *Client) FetchArticles(ctx context.Context, symbol string, day time.Time) ([]models.RawArticle, error) {
	d := day.Format(util.DateLayout)
	var items []companyNews
	err := c.get(ctx, "/company-news", map[string][]string{
		"symbol": {symbol},
		"from":   {d},
		"to":     {d},
	}, &items)
	if err != nil {
		if hard := fetch.Degrade(ctx, err, c.log, c.metrics, Name, symbol, day); hard != nil {
			return nil, hard
		}
		return []models.RawArticle{}, nil
	}

	out := make([]models.RawArticle, 0, len(items))
	for _, it := range items {
		out = append(out, models.RawArticle{
			Headline:    it.Headline,
			Summary:     it.Summary,
			URL:         it.URL,
			Source:      it.Source,
			PublishedAt: time.Unix(it.Datetime, 0).UTC(),
		})
	}
	return out, nil
}

type insiderTransactionsResponse struct {
	Symbol string `json:"symbol"`
	Data   []struct {
		Name            string  `json:"name"`
		Share           float64 `json:"share"`
		Change          float64 `json:"change"`
		FilingDate      string  `json:"filingDate"`
		TransactionDate string  `json:"transactionDate"`
		TransactionCode string  `json:"transactionCode"`
		Price           float64 `json:"transactionPrice"`
	} `json:"data"`
}

// InsiderTransactions returns insider filings between from and to inclusive.
func (c *Client) InsiderTransactions(ctx context.Context, symbol string, from, to time.Time) ([]models.InsiderTransaction, error) {
	var resp insiderTransactionsResponse
	if err := c.get(ctx, "/stock/insider-transactions", rangeParams(symbol, from, to), &resp); err != nil {
		return nil, fmt.Errorf("finnhub insider transactions %s: %w", symbol, err)
	}

	out := make([]models.InsiderTransaction, 0, len(resp.Data))
	for _, d := range resp.Data {
		tx := models.InsiderTransaction{
			Name:            d.Name,
			Share:           d.Share,
			Change:          d.Change,
			TransactionCode: d.TransactionCode,
			Price:           d.Price,
		}
		tx.FilingDate, _ = time.Parse(util.DateLayout, d.FilingDate)
		tx.TransactionDate, _ = time.Parse(util.DateLayout, d.TransactionDate)
		out = append(out, tx)
	}
	return out, nil
}

type insiderSentimentResponse struct {
	Symbol string `json:"symbol"`
	Data   []struct {
		Symbol string  `json:"symbol"`
		Year   int     `json:"year"`
		Month  int     `json:"month"`
		Change float64 `json:"change"`
		MSPR   float64 `json:"mspr"`
	} `json:"data"`
}

// InsiderSentiment returns monthly MSPR rows between from and to.
func (c *Client) InsiderSentiment(ctx context.Context, symbol string, from, to time.Time) ([]models.InsiderSentiment, error) {
	var resp insiderSentimentResponse
	if err := c.get(ctx, "/stock/insider-sentiment", rangeParams(symbol, from, to), &resp); err != nil {
		return nil, fmt.Errorf("finnhub insider sentiment %s: %w", symbol, err)
	}

	out := make([]models.InsiderSentiment, 0, len(resp.Data))
	for _, d := range resp.Data {
		sym := d.Symbol
		if sym == "" {
			sym = symbol
		}
		out = append(out, models.InsiderSentiment{
			Symbol: sym,
			Year:   d.Year,
			Month:  d.Month,
			Change: d.Change,
			MSPR:   d.MSPR,
		})
	}
	return out, nil
}

type candleResponse struct {
	Close  []float64 `json:"c"`
	High   []float64 `json:"h"`
	Low    []float64 `json:"l"`
	Open   []float64 `json:"o"`
	Status string    `json:"s"`
	Time   []int64   `json:"t"`
	Volume []float64 `json:"v"`
}

// DailyCandles returns daily bars covering [from, to].
func (c *Client) DailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	var resp candleResponse
	err := c.get(ctx, "/stock/candle", map[string][]string{
		"symbol":     {symbol},
		"resolution": {"D"},
		"from":       {fmt.Sprint(util.TruncateDay(from).Unix())},
		"to":         {fmt.Sprint(util.TruncateDay(to).AddDate(0, 0, 1).Unix() - 1)},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("finnhub candles %s: %w", symbol, err)
	}
	if resp.Status != "ok" {
		return []models.Candle{}, nil
	}

	n := len(resp.Time)
	for _, col := range [][]float64{resp.Close, resp.High, resp.Low, resp.Open, resp.Volume} {
		if len(col) != n {
			return nil, fmt.Errorf("finnhub candles %s: ragged response", symbol)
		}
	}
	out := make([]models.Candle, n)
	for i := range n {
		out[i] = models.Candle{
			Date:   util.TruncateDay(time.Unix(resp.Time[i], 0).UTC()),
			Open:   resp.Open[i],
			High:   resp.High[i],
			Low:    resp.Low[i],
			Close:  resp.Close[i],
			Volume: resp.Volume[i],
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string][]string, dest interface{}) error {
	if err := config.RequireCredential("finnhub api key", c.apiKey); err != nil {
		return err
	}
	if err := c.limiter.Wait(ctx, Name, c.rate); err != nil {
		return err
	}
	params["token"] = []string{c.apiKey}
	return c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + path,
		QueryParams: params,
	}, dest)
}

func rangeParams(symbol string, from, to time.Time) map[string][]string {
	return map[string][]string{
		"symbol": {symbol},
		"from":   {from.Format(util.DateLayout)},
		"to":     {to.Format(util.DateLayout)},
	}
}
