package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingCredential is returned by provider clients on first use when their API key is empty.
var ErrMissingCredential = errors.New("missing api credential")

// RequireCredential returns a wrapped ErrMissingCredential when value is empty.
func RequireCredential(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s", ErrMissingCredential, name)
	}
	return nil
}

// Provider names accepted by sources.primary / sources.secondary.
const (
	ProviderFinnhub = "finnhub"
	ProviderNewsAPI = "newsapi"
	ProviderRSS     = "rss"
)

type Config struct {
	Environment string `yaml:"environment"`
	Log         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		SlowRequest     time.Duration `yaml:"slow_request"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`
	Sources struct {
		Primary   string `yaml:"primary"`
		Secondary string `yaml:"secondary"`
	} `yaml:"sources"`
	Finnhub struct {
		APIKey        string        `yaml:"api_key"`
		BaseURL       string        `yaml:"base_url"`
		Timeout       time.Duration `yaml:"timeout"`
		RatePerMinute int           `yaml:"rate_per_minute"`
	} `yaml:"finnhub"`
	NewsAPI struct {
		APIKey        string        `yaml:"api_key"`
		BaseURL       string        `yaml:"base_url"`
		Language      string        `yaml:"language"`
		SortBy        string        `yaml:"sort_by"`
		PageSize      int           `yaml:"page_size"`
		KeywordFilter bool          `yaml:"keyword_filter"`
		Timeout       time.Duration `yaml:"timeout"`
		RatePerMinute int           `yaml:"rate_per_minute"`
	} `yaml:"newsapi"`
	RSS struct {
		URLTemplate string        `yaml:"url_template"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"rss"`
	Classifier struct {
		Type          string        `yaml:"type"`
		Endpoint      string        `yaml:"endpoint"`
		Model         string        `yaml:"model"`
		APIToken      string        `yaml:"api_token"`
		ModelPath     string        `yaml:"model_path"`
		MaxInputChars int           `yaml:"max_input_chars"`
		BatchSize     int           `yaml:"batch_size"`
		Timeout       time.Duration `yaml:"timeout"`
	} `yaml:"classifier"`
	Pipeline struct {
		Workers             int           `yaml:"workers"`
		RetryMax            int           `yaml:"retry_max"`
		RetryBackoff        time.Duration `yaml:"retry_backoff"`
		DefaultLookbackDays int           `yaml:"default_lookback_days"`
		MaxRangeDays        int           `yaml:"max_range_days"`
		RunTimeout          time.Duration `yaml:"run_timeout"`
		IncludeInsider      bool          `yaml:"include_insider"`
	} `yaml:"pipeline"`
	Insider struct {
		LookbackDays int `yaml:"lookback_days"`
	} `yaml:"insider"`
	Storage struct {
		Type       string `yaml:"type"` // none, clickhouse, sqlite
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"storage"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		ResultsTopic string   `yaml:"results_topic"`
		JobsTopic    string   `yaml:"jobs_topic"`
		LogsTopic    string   `yaml:"logs_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled     bool          `yaml:"enabled"`
		Addr        string        `yaml:"addr"`
		Password    string        `yaml:"password"`
		DB          int           `yaml:"db"`
		Prefix      string        `yaml:"prefix"`
		PoolSize    int           `yaml:"pool_size"`
		DialTimeout time.Duration `yaml:"dial_timeout"`
		JobTTL      time.Duration `yaml:"job_ttl"`
		LockTTL     time.Duration `yaml:"lock_ttl"`
	} `yaml:"redis"`
}

// Default returns a config with every optional setting filled in.
func Default() *Config {
	c := &Config{Environment: "development"}
	c.Log.Level = "info"
	c.Log.Format = "console"
	c.Log.Output = "stdout"

	c.Server.Port = 8080
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 5 * time.Minute
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Server.SlowRequest = 30 * time.Second
	c.Metrics.Enabled = true

	c.Sources.Primary = ProviderFinnhub
	c.Sources.Secondary = ProviderNewsAPI

	c.Finnhub.BaseURL = "https://finnhub.io/api/v1"
	c.Finnhub.Timeout = 10 * time.Second
	c.Finnhub.RatePerMinute = 60

	c.NewsAPI.BaseURL = "https://newsapi.org/v2"
	c.NewsAPI.Language = "en"
	c.NewsAPI.SortBy = "popularity"
	c.NewsAPI.PageSize = 100
	c.NewsAPI.KeywordFilter = true
	c.NewsAPI.Timeout = 10 * time.Second

	c.RSS.URLTemplate = "https://feeds.finance.yahoo.com/rss/2.0/headline?s={symbol}&region=US&lang=en-US"
	c.RSS.Timeout = 10 * time.Second

	c.Classifier.Type = "finbert"
	c.Classifier.Endpoint = "https://api-inference.huggingface.co/models"
	c.Classifier.Model = "ProsusAI/finbert"
	c.Classifier.MaxInputChars = 2000
	c.Classifier.BatchSize = 32
	c.Classifier.Timeout = 60 * time.Second

	c.Pipeline.Workers = 1
	c.Pipeline.RetryBackoff = 500 * time.Millisecond
	c.Pipeline.DefaultLookbackDays = 30
	c.Pipeline.MaxRangeDays = 366
	c.Pipeline.RunTimeout = 30 * time.Minute

	c.Insider.LookbackDays = 365

	c.Storage.Type = "none"
	c.Storage.SQLitePath = "sentipull.db"

	c.ClickHouse.Host = "localhost"
	c.ClickHouse.Port = 9000
	c.ClickHouse.Database = "sentipull"
	c.ClickHouse.User = "default"
	c.ClickHouse.DialTimeout = 5 * time.Second
	c.ClickHouse.ReadTimeout = 10 * time.Second
	c.ClickHouse.WriteTimeout = 10 * time.Second

	c.Kafka.ResultsTopic = "sentipull.sentiment.results"
	c.Kafka.JobsTopic = "sentipull.sentiment.jobs"
	c.Kafka.RequiredAcks = -1
	c.Kafka.Compression = "gzip"
	c.Kafka.Producer.MaxAttempts = 3
	c.Kafka.Producer.Linger = 100 * time.Millisecond
	c.Kafka.Producer.BatchSize = 100
	c.Kafka.Producer.BatchBytes = 1 << 20
	c.Kafka.Producer.WriteTimeout = 10 * time.Second
	c.Kafka.Producer.ReadTimeout = 10 * time.Second
	c.Kafka.Consumer.GroupID = "sentipull"
	c.Kafka.Consumer.Workers = 2
	c.Kafka.Consumer.BufferSize = 16
	c.Kafka.Consumer.BackoffMin = 100 * time.Millisecond
	c.Kafka.Consumer.BackoffMax = 5 * time.Second
	c.Kafka.Consumer.MinBytes = 1
	c.Kafka.Consumer.MaxBytes = 10e6

	c.Redis.Addr = "localhost:6379"
	c.Redis.Prefix = "sentipull"
	c.Redis.PoolSize = 10
	c.Redis.DialTimeout = 5 * time.Second
	c.Redis.JobTTL = 24 * time.Hour
	c.Redis.LockTTL = 30 * time.Minute
	return c
}

// Load reads and parses a YAML configuration file on top of Default().
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads an optional .env file, the YAML config, then applies environment overrides.
// A missing config file falls back to defaults so the CLI works with env vars alone.
func LoadWithEnv(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	var c *Config
	if _, statErr := os.Stat(path); statErr == nil {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		c = loaded
	} else if errors.Is(statErr, os.ErrNotExist) {
		c = Default()
	} else {
		return nil, fmt.Errorf("stat config: %w", statErr)
	}

	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// loadDotEnv reads ENV_FILE (default .env). Existing process variables win.
func loadDotEnv() error {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := gotenv.Load(envFile); err != nil {
		return fmt.Errorf("load env file %s: %w", envFile, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := firstEnv("FINNHUB_API_KEY", "VITE_FINNHUB"); v != "" {
		c.Finnhub.APIKey = v
	}
	if v := firstEnv("NEWS_API_KEY", "VITE_NEWS_API"); v != "" {
		c.NewsAPI.APIKey = v
	}
	if v := os.Getenv("HF_API_TOKEN"); v != "" {
		c.Classifier.APIToken = v
	}
	if v := os.Getenv("CLASSIFIER_TYPE"); v != "" {
		c.Classifier.Type = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("PIPELINE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Pipeline.Workers = n
		}
	}
}

// Validate checks structural settings. API keys are checked by each client on first use.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if !validProvider(c.Sources.Primary) {
		return fmt.Errorf("sources.primary must be one of finnhub, newsapi, rss, got '%s'", c.Sources.Primary)
	}
	if !validProvider(c.Sources.Secondary) {
		return fmt.Errorf("sources.secondary must be one of finnhub, newsapi, rss, got '%s'", c.Sources.Secondary)
	}
	if c.Sources.Primary == c.Sources.Secondary {
		return fmt.Errorf("sources.primary and sources.secondary must differ")
	}
	switch c.Classifier.Type {
	case "finbert", "vader", "onnx":
	default:
		return fmt.Errorf("classifier.type must be 'finbert', 'vader' or 'onnx', got '%s'", c.Classifier.Type)
	}
	if c.Classifier.MaxInputChars <= 0 {
		return fmt.Errorf("classifier.max_input_chars must be positive")
	}
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline.workers must be at least 1")
	}
	if c.Pipeline.RetryMax < 0 {
		return fmt.Errorf("pipeline.retry_max cannot be negative")
	}
	switch c.Storage.Type {
	case "none", "clickhouse", "sqlite":
	default:
		return fmt.Errorf("storage.type must be 'none', 'clickhouse' or 'sqlite', got '%s'", c.Storage.Type)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}

func validProvider(p string) bool {
	switch p {
	case ProviderFinnhub, ProviderNewsAPI, ProviderRSS:
		return true
	}
	return false
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
