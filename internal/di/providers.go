package di

import (
	"context"
	"fmt"
	"time"

	dmodels "SentiPull/internal/domain/models"
	domrepo "SentiPull/internal/domain/repository"
	dservice "SentiPull/internal/domain/service"
	"SentiPull/internal/handler/api"
	internalrepo "SentiPull/internal/repository"
	"SentiPull/internal/service/finnhub"
	"SentiPull/internal/service/newsapi"
	"SentiPull/internal/service/ratelimit"
	"SentiPull/internal/service/rss"
	"SentiPull/internal/services/sentiment"
	"SentiPull/internal/usecase"
	"SentiPull/pkg/cache"
	pkgch "SentiPull/pkg/clickhouse"
	"SentiPull/pkg/config"
	xhttp "SentiPull/pkg/http"
	pkgkafka "SentiPull/pkg/kafka"
	applogger "SentiPull/pkg/logger"
	"SentiPull/pkg/metrics"
	"SentiPull/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// NewsSources are the two providers a run compares.
type NewsSources struct {
	Primary   dservice.NewsFetcher
	Secondary dservice.NewsFetcher
}

// Runner bundles what the one-shot CLI commands need.
type Runner struct {
	Pipeline *usecase.SentimentPipeline
	Insider  *usecase.InsiderScorer
	Logger   *applogger.Logger
}

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates a Prometheus registry with Go and process collectors.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) domrepo.Metrics {
	return metrics.NewWithRegistry(reg)
}

func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideFinnhubClient creates the Finnhub client used for news, insider data and candles.
func ProvideFinnhubClient(cfg *config.Config, rl *ratelimit.Limiter, l *applogger.Logger, m domrepo.Metrics) *finnhub.Client {
	return finnhub.New(finnhub.Config{
		APIKey:        cfg.Finnhub.APIKey,
		BaseURL:       cfg.Finnhub.BaseURL,
		Timeout:       cfg.Finnhub.Timeout,
		RatePerMinute: cfg.Finnhub.RatePerMinute,
		RetryMax:      cfg.Pipeline.RetryMax,
		RetryBackoff:  cfg.Pipeline.RetryBackoff,
	}, rl, l, m)
}

// ProvideNewsSources resolves sources.primary and sources.secondary to fetchers.
func ProvideNewsSources(cfg *config.Config, fh *finnhub.Client, rl *ratelimit.Limiter, l *applogger.Logger, m domrepo.Metrics) (NewsSources, error) {
	build := func(name string) (dservice.NewsFetcher, error) {
		switch name {
		case config.ProviderFinnhub:
			return fh, nil
		case config.ProviderNewsAPI:
			return newsapi.New(newsapi.Config{
				APIKey:        cfg.NewsAPI.APIKey,
				BaseURL:       cfg.NewsAPI.BaseURL,
				Language:      cfg.NewsAPI.Language,
				SortBy:        cfg.NewsAPI.SortBy,
				PageSize:      cfg.NewsAPI.PageSize,
				KeywordFilter: cfg.NewsAPI.KeywordFilter,
				Timeout:       cfg.NewsAPI.Timeout,
				RatePerMinute: cfg.NewsAPI.RatePerMinute,
				RetryMax:      cfg.Pipeline.RetryMax,
				RetryBackoff:  cfg.Pipeline.RetryBackoff,
			}, rl, l, m), nil
		case config.ProviderRSS:
			return rss.New(rss.Config{
				URLTemplate:  cfg.RSS.URLTemplate,
				Timeout:      cfg.RSS.Timeout,
				RetryMax:     cfg.Pipeline.RetryMax,
				RetryBackoff: cfg.Pipeline.RetryBackoff,
			}, l, m), nil
		default:
			return nil, fmt.Errorf("unknown news source %q", name)
		}
	}

	primary, err := build(cfg.Sources.Primary)
	if err != nil {
		return NewsSources{}, err
	}
	secondary, err := build(cfg.Sources.Secondary)
	if err != nil {
		return NewsSources{}, err
	}
	return NewsSources{Primary: primary, Secondary: secondary}, nil
}

// ProvideClassifier builds the configured classifier once per process.
func ProvideClassifier(cfg *config.Config, l *applogger.Logger) (dservice.SentimentClassifier, func(), error) {
	c, closeFn, err := sentiment.New(sentiment.Config{
		Type:          cfg.Classifier.Type,
		Endpoint:      cfg.Classifier.Endpoint,
		Model:         cfg.Classifier.Model,
		APIToken:      cfg.Classifier.APIToken,
		ModelPath:     cfg.Classifier.ModelPath,
		MaxInputChars: cfg.Classifier.MaxInputChars,
		BatchSize:     cfg.Classifier.BatchSize,
		Timeout:       cfg.Classifier.Timeout,
		RetryMax:      cfg.Pipeline.RetryMax,
		RetryBackoff:  cfg.Pipeline.RetryBackoff,
	}, l)
	if err != nil {
		return nil, nil, fmt.Errorf("classifier: %w", err)
	}
	return c, closeFn, nil
}

// ProvideSentimentStore opens the configured store and creates its schema. It is
// nil when storage.type is none.
func ProvideSentimentStore(cfg *config.Config, l *applogger.Logger) (domrepo.SentimentStore, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var store domrepo.SentimentStore
	switch cfg.Storage.Type {
	case "clickhouse":
		client, err := pkgch.NewClient(ctx,
			pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		store = internalrepo.NewCHSentimentStore(client, l)
	case "sqlite":
		s, err := internalrepo.NewSQLiteSentimentStore(cfg.Storage.SQLitePath, l)
		if err != nil {
			return nil, nil, err
		}
		store = s
	default:
		return nil, func() {}, nil
	}

	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("%s schema: %w", cfg.Storage.Type, err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			l.Warn("store close error", applogger.Error(err))
		}
	}
	return store, cleanup, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithProducerRegisterer(reg),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvidePublisher wraps the producer, and attaches the error-log collector when a
// logs topic is configured. It is nil when Kafka is disabled.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config, l *applogger.Logger, m domrepo.Metrics) (domrepo.Publisher, func()) {
	if producer == nil {
		return nil, func() {}
	}
	pub := internalrepo.NewKafkaPublisher(producer, cfg.Kafka.ResultsTopic, cfg.Kafka.JobsTopic, m)
	if cfg.Kafka.LogsTopic == "" {
		return pub, func() {}
	}
	l.AddCollector(&applogger.CollectionConfig{
		Service:        "sentipull",
		TimeInterval:   30 * time.Second,
		CountThreshold: 100,
		Topic:          cfg.Kafka.LogsTopic,
		Publisher:      pub,
	})
	return pub, l.RemoveCollector
}

// ProvideCache returns Redis when enabled and an in-memory cache otherwise.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, func(), error) {
	if !cfg.Redis.Enabled {
		mc := cache.NewMemoryCache()
		return mc, func() { _ = mc.Close() }, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
		cache.WithRedisPool(cfg.Redis.PoolSize, 0, 0),
		cache.WithRedisDialTimeout(cfg.Redis.DialTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	l.Info("redis connected", applogger.String("addr", cfg.Redis.Addr))
	return rc, func() { _ = rc.Close() }, nil
}

func ProvideJobStore(c cache.Service, cfg *config.Config) domrepo.JobStore {
	return internalrepo.NewCacheJobStore(c, cfg.Redis.JobTTL)
}

func ProvideInsiderScorer(fh *finnhub.Client, m domrepo.Metrics) *usecase.InsiderScorer {
	return usecase.NewInsiderScorer(fh, m)
}

func ProvidePricesUseCase(fh *finnhub.Client) *usecase.PricesUseCase {
	return usecase.NewPricesUseCase(fh)
}

// ProvidePipeline builds one aggregator per source around the shared classifier.
func ProvidePipeline(
	cfg *config.Config,
	sources NewsSources,
	classifier dservice.SentimentClassifier,
	insider *usecase.InsiderScorer,
	store domrepo.SentimentStore,
	pub domrepo.Publisher,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.SentimentPipeline {
	aggregator := func(f dservice.NewsFetcher) *usecase.DailyAggregator {
		return usecase.NewDailyAggregator(f, classifier,
			usecase.WithWorkers(cfg.Pipeline.Workers),
			usecase.WithAggregatorLogger(l),
			usecase.WithAggregatorMetrics(m),
		)
	}
	return usecase.NewSentimentPipeline(
		aggregator(sources.Primary),
		aggregator(sources.Secondary),
		classifier.Name(),
		usecase.WithInsiderScorer(insider),
		usecase.WithStore(store),
		usecase.WithPublisher(pub),
		usecase.WithPipelineMetrics(m),
		usecase.WithPipelineLogger(l),
		usecase.WithMaxRangeDays(cfg.Pipeline.MaxRangeDays),
	)
}

func ProvideJobService(store domrepo.JobStore, pub domrepo.Publisher, pipeline *usecase.SentimentPipeline, l *applogger.Logger, cfg *config.Config) *usecase.JobService {
	return usecase.NewJobService(store, pub, pipeline, l, cfg.Redis.LockTTL, cfg.Pipeline.RunTimeout)
}

// ProvideKafkaConsumer creates the job consumer, or nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, reg *prometheus.Registry, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
		pkgkafka.WithConsumerRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

func ProvideJobHandler(cfg *config.Config, jobs *usecase.JobService, m domrepo.Metrics) *usecase.JobHandler {
	return usecase.NewJobHandler(cfg.Kafka.JobsTopic, jobs, m)
}

func ProvideHTTPHandler(
	cfg *config.Config,
	l *applogger.Logger,
	pipeline *usecase.SentimentPipeline,
	insider *usecase.InsiderScorer,
	prices *usecase.PricesUseCase,
	jobs *usecase.JobService,
	store domrepo.SentimentStore,
	rl *ratelimit.Limiter,
) *api.SentimentEchoHandler {
	return api.NewSentimentEchoHandler(l, pipeline, insider, prices, jobs,
		api.WithStore(store),
		api.WithLookback(cfg.Pipeline.DefaultLookbackDays, cfg.Insider.LookbackDays),
		api.WithJobRateLimit(rl, 10),
	)
}

func ProvideHTTPServer(cfg *config.Config, h *api.SentimentEchoHandler, reg *prometheus.Registry, l *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithLogger(l),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsRegistry(reg))
	}
	return xhttp.NewServer([]xhttp.Handler{h}, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	handler *usecase.JobHandler,
	jobs *usecase.JobService,
) *server.App {
	return server.New(cfg, l, srv, consumer, handler, jobs)
}

// ProvideRunner bundles the one-shot dependencies.
func ProvideRunner(pipeline *usecase.SentimentPipeline, insider *usecase.InsiderScorer, l *applogger.Logger) *Runner {
	return &Runner{Pipeline: pipeline, Insider: insider, Logger: l}
}

// RunParams builds pipeline parameters for the one-shot command.
func RunParams(cfg *config.Config, symbol string, start, end time.Time, persist, publish bool) dmodels.RunParams {
	return dmodels.RunParams{
		Symbol:         symbol,
		Start:          start,
		End:            end,
		IncludeInsider: cfg.Pipeline.IncludeInsider,
		Persist:        persist,
		Publish:        publish,
	}
}
