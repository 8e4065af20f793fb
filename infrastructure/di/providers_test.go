package di

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agenda-sync/infrastructure/appsync"
	"agenda-sync/infrastructure/config"
	feedsource "agenda-sync/infrastructure/feed"
	"agenda-sync/infrastructure/memory"
	"agenda-sync/pkg/observability"
)

func memoryConfig() *config.Config {
	return &config.Config{
		ServerAddress:    ":0",
		Environment:      "test",
		AWSRegion:        "us-east-1",
		StorageMode:      config.StorageModeMemory,
		SessionizeURL:    "file:///tmp/agenda.json",
		HTTPTimeout:      time.Second,
		UserAgent:        "AgendaFetcher/1.0",
		LockName:         "agenda-sync",
		LogLevel:         "info",
		MetricsNamespace: "AgendaFetcher",
		EnableMetrics:    true,
		EnableRunLock:    true,
	}
}

func TestProvideLogger(t *testing.T) {
	cfg := memoryConfig()
	logger, err := ProvideLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg.LogLevel = "loud"
	_, err = ProvideLogger(cfg)
	assert.Error(t, err)
}

func TestProvideStores_Memory(t *testing.T) {
	stores := ProvideStores(memoryConfig(), nil, nil, zap.NewNop())

	assert.IsType(t, &memory.DigestStore{}, stores.Digests)
	assert.Same(t, stores.Digests, stores.Hashes)
	assert.Same(t, stores.Snapshots, stores.Reader)
	assert.NotNil(t, stores.Lock)
}

func TestProvideStores_LockDisabled(t *testing.T) {
	cfg := memoryConfig()
	cfg.EnableRunLock = false

	stores := ProvideStores(cfg, nil, nil, zap.NewNop())

	assert.Nil(t, stores.Lock)
}

func TestProvideFeedSource(t *testing.T) {
	cfg := memoryConfig()
	assert.IsType(t, &memory.FileFeed{}, ProvideFeedSource(cfg, http.DefaultClient, zap.NewNop()))

	cfg.SessionizeURL = "https://sessionize.com/api/v2/abc/view/All"
	assert.IsType(t, &feedsource.HTTPSource{}, ProvideFeedSource(cfg, http.DefaultClient, zap.NewNop()))
}

func TestProvidePublisher(t *testing.T) {
	cfg := memoryConfig()
	assert.IsType(t, &memory.Publisher{}, ProvidePublisher(cfg, http.DefaultClient, zap.NewNop()))

	cfg.AppSyncURL = "https://example.appsync-api.us-east-1.amazonaws.com/graphql"
	cfg.AppSyncAPIKey = "key"
	assert.IsType(t, &appsync.Publisher{}, ProvidePublisher(cfg, http.DefaultClient, zap.NewNop()))
}

func TestProvideMetrics(t *testing.T) {
	cfg := memoryConfig()

	prom := ProvidePrometheus(cfg)
	require.NotNil(t, prom)
	assert.Same(t, prom, ProvideMetrics(nil, prom, cfg, zap.NewNop()))

	cfg.IsLambda = true
	assert.Nil(t, ProvidePrometheus(cfg))
	assert.IsType(t, &observability.Metrics{}, ProvideMetrics(nil, nil, cfg, zap.NewNop()))

	cfg.EnableMetrics = false
	assert.Equal(t, observability.NoopMetrics{}, ProvideMetrics(nil, nil, cfg, zap.NewNop()))
}

func TestProvideEventPublisher_DisabledInMemoryMode(t *testing.T) {
	cfg := memoryConfig()
	cfg.EnableEvents = true

	assert.Nil(t, ProvideEventPublisher(nil, cfg, zap.NewNop()))
}

func TestInitializeContainer_Memory(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	container, err := InitializeContainer(context.Background(), memoryConfig())

	require.NoError(t, err)
	assert.NotNil(t, container.Pipeline)
	assert.NotNil(t, container.Queries)
	assert.NotNil(t, container.Prometheus)
	container.Flush(context.Background())
}
