package rss

import (
	"context"
	"net/url"
	"strings"
	"time"

	"SentiPull/internal/domain/models"
	drepo "SentiPull/internal/domain/repository"
	dservice "SentiPull/internal/domain/service"
	"SentiPull/internal/service/fetch"
	"SentiPull/internal/services/features"
	"SentiPull/pkg/config"
	xhttp "SentiPull/pkg/http"
	applogger "SentiPull/pkg/logger"
	"SentiPull/pkg/util"

	"github.com/mmcdole/gofeed"
)

const Name = config.ProviderRSS

type Config struct {
	// URLTemplate must contain {symbol}.
	URLTemplate  string
	Timeout      time.Duration
	RetryMax     int
	RetryBackoff time.Duration
}

// Fetcher reads a per-symbol RSS feed and keeps the items published on the requested day.
// It needs no credential.
type Fetcher struct {
	tmpl    string
	http    *xhttp.Client
	parser  *gofeed.Parser
	log     *applogger.Logger
	metrics drepo.Metrics
}

var _ dservice.NewsFetcher = (*Fetcher)(nil)

func New(cfg Config, l *applogger.Logger, metrics drepo.Metrics) *Fetcher {
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = "https://feeds.finance.yahoo.com/rss/2.0/headline?s={symbol}&region=US&lang=en-US"
	}
	if l == nil {
		l = applogger.NewNop()
	}
	return &Fetcher{
		tmpl: cfg.URLTemplate,
		http: xhttp.NewClient(
			xhttp.WithTimeout(cfg.Timeout),
			xhttp.WithRetry(cfg.RetryMax, cfg.RetryBackoff),
		),
		parser:  gofeed.NewParser(),
		log:     l.With(applogger.String("provider", Name)),
		metrics: metrics,
	}
}

func (f *Fetcher) Name() string { return Name }

func (f *Fetcher) FetchArticles(ctx context.Context, symbol string, day time.Time) ([]models.RawArticle, error) {
	var body string
	err := f.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     strings.ReplaceAll(f.tmpl, "{symbol}", url.QueryEscape(symbol)),
		Headers: map[string]string{"Accept": "application/rss+xml, application/xml, text/xml"},
	}, &body)
	if err != nil {
		if hard := fetch.Degrade(ctx, err, f.log, f.metrics, Name, symbol, day); hard != nil {
			return nil, hard
		}
		return []models.RawArticle{}, nil
	}

	feed, err := f.parser.ParseString(body)
	if err != nil {
		if hard := fetch.Degrade(ctx, err, f.log, f.metrics, Name, symbol, day); hard != nil {
			return nil, hard
		}
		return []models.RawArticle{}, nil
	}

	want := util.TruncateDay(day)
	out := make([]models.RawArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		published := itemTime(item)
		if published.IsZero() || !util.TruncateDay(published.UTC()).Equal(want) {
			continue
		}
		link := item.Link
		if link == "" {
			link = item.GUID
		}
		out = append(out, models.RawArticle{
			Title:       strings.TrimSpace(item.Title),
			Description: features.StripHTML(item.Description),
			Content:     features.StripHTML(item.Content),
			URL:         link,
			Source:      feed.Title,
			PublishedAt: published.UTC(),
		})
	}
	return out, nil
}

func itemTime(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return *item.PublishedParsed
	case item.UpdatedParsed != nil:
		return *item.UpdatedParsed
	default:
		return time.Time{}
	}
}
