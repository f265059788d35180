package di

import (
	"context"
	"path/filepath"
	"testing"

	"SentiPull/internal/service/newsapi"
	"SentiPull/internal/service/rss"
	"SentiPull/pkg/config"
	applogger "SentiPull/pkg/logger"
)

func TestProvideNewsSourcesByName(t *testing.T) {
	cfg := config.Default()
	cfg.Sources.Primary = config.ProviderNewsAPI
	cfg.Sources.Secondary = config.ProviderRSS

	l := applogger.NewNop()
	reg := ProvideRegistry()
	m := ProvideMetrics(reg)
	rl := ProvideRateLimiter()
	fh := ProvideFinnhubClient(cfg, rl, l, m)

	sources, err := ProvideNewsSources(cfg, fh, rl, l, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sources.Primary.Name() != newsapi.Name || sources.Secondary.Name() != rss.Name {
		t.Fatalf("unexpected sources %s/%s", sources.Primary.Name(), sources.Secondary.Name())
	}

	cfg.Sources.Secondary = "reddit"
	if _, err := ProvideNewsSources(cfg, fh, rl, l, m); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}

func TestProvideSentimentStoreDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Type = "none"

	store, cleanup, err := ProvideSentimentStore(cfg, applogger.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()
	if store != nil {
		t.Fatalf("expected nil store, got %T", store)
	}
}

func TestProvideSentimentStoreSQLite(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Type = "sqlite"
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "sentipull.db")

	store, cleanup, err := ProvideSentimentStore(cfg, applogger.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()
	if err := store.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestKafkaDisabledYieldsNilPublisher(t *testing.T) {
	cfg := config.Default()
	cfg.Kafka.Enabled = false
	l := applogger.NewNop()

	producer, cleanup, err := ProvideKafkaProducer(cfg, ProvideRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()
	if producer != nil {
		t.Fatalf("expected nil producer")
	}

	pub, pcleanup := ProvidePublisher(producer, cfg, l, ProvideMetrics(ProvideRegistry()))
	defer pcleanup()
	if pub != nil {
		t.Fatalf("expected nil publisher interface, got %T", pub)
	}

	consumer, err := ProvideKafkaConsumer(cfg, ProvideRegistry(), l)
	if err != nil || consumer != nil {
		t.Fatalf("expected no consumer, got %v, %v", consumer, err)
	}
}

func TestProvideClassifierVADER(t *testing.T) {
	cfg := config.Default()
	cfg.Classifier.Type = "vader"

	c, cleanup, err := ProvideClassifier(cfg, applogger.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()
	if c.Name() != "vader" {
		t.Fatalf("unexpected classifier %q", c.Name())
	}
}
