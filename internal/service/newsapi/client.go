package newsapi

import (
	"context"
	"fmt"
	"strconv"
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

const Name = config.ProviderNewsAPI

type Config struct {
	APIKey        string
	BaseURL       string
	Language      string
	SortBy        string
	PageSize      int
	KeywordFilter bool
	Timeout       time.Duration
	RatePerMinute int
	RetryMax      int
	RetryBackoff  time.Duration
}

// Client queries the NewsAPI /everything endpoint, one day per request.
type Client struct {
	cfg     Config
	http    *xhttp.Client
	limiter *ratelimit.Limiter
	log     *applogger.Logger
	metrics drepo.Metrics
}

var _ dservice.NewsFetcher = (*Client)(nil)

func New(cfg Config, limiter *ratelimit.Limiter, l *applogger.Logger, metrics drepo.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://newsapi.org/v2"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.SortBy == "" {
		cfg.SortBy = "popularity"
	}
	if cfg.PageSize <= 0 || cfg.PageSize > 100 {
		cfg.PageSize = 100
	}
	if l == nil {
		l = applogger.NewNop()
	}
	return &Client{
		cfg: cfg,
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

type everythingResponse struct {
	Status       string `json:"status"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// FetchArticles returns articles mentioning symbol published on day.
func (c *Client) FetchArticles(ctx context.Context, symbol string, day time.Time) ([]models.RawArticle, error) {
	if err := config.RequireCredential("newsapi api key", c.cfg.APIKey); err != nil {
		return nil, err
	}

	resp, err := c.everything(ctx, symbol, day)
	if err != nil {
		if hard := fetch.Degrade(ctx, err, c.log, c.metrics, Name, symbol, day); hard != nil {
			return nil, hard
		}
		return []models.RawArticle{}, nil
	}

	out := make([]models.RawArticle, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if c.cfg.KeywordFilter && !mentions(symbol, a.Title, a.Description) {
			continue
		}
		published, _ := util.ParseTime(a.PublishedAt)
		out = append(out, models.RawArticle{
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: published,
		})
	}
	return out, nil
}

func (c *Client) everything(ctx context.Context, symbol string, day time.Time) (*everythingResponse, error) {
	if err := c.limiter.Wait(ctx, Name, c.cfg.RatePerMinute); err != nil {
		return nil, err
	}

	d := day.Format(util.DateLayout)
	params := map[string][]string{
		"q":        {symbol},
		"from":     {d},
		"to":       {d},
		"sortBy":   {c.cfg.SortBy},
		"pageSize": {strconv.Itoa(c.cfg.PageSize)},
	}
	if c.cfg.Language != "" {
		params["language"] = []string{c.cfg.Language}
	}

	var resp everythingResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.cfg.BaseURL + "/everything",
		Headers:     map[string]string{"X-Api-Key": c.cfg.APIKey},
		QueryParams: params,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Status != "" && resp.Status != "ok" {
		return nil, fmt.Errorf("newsapi %s: %s", resp.Code, resp.Message)
	}
	return &resp, nil
}

// mentions reports whether keyword appears in the title or description, ignoring case.
func mentions(keyword, title, description string) bool {
	k := strings.ToLower(keyword)
	return strings.Contains(strings.ToLower(title), k) || strings.Contains(strings.ToLower(description), k)
}
