package di

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/aws/aws-xray-sdk-go/xray"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"agenda-sync/application/pipeline"
	"agenda-sync/application/ports"
	"agenda-sync/application/queries"
	"agenda-sync/domain/feed"
	"agenda-sync/infrastructure/appsync"
	"agenda-sync/infrastructure/config"
	feedsource "agenda-sync/infrastructure/feed"
	"agenda-sync/infrastructure/memory"
	"agenda-sync/infrastructure/messaging/eventbridge"
	"agenda-sync/infrastructure/persistence/dynamodb"
	"agenda-sync/infrastructure/storage/s3"
	"agenda-sync/pkg/observability"
)

// Stores groups the persistence adapters. In memory mode every field is
// backed by the same in-process maps.
type Stores struct {
	Digests   ports.DigestStore
	Hashes    ports.HashReader
	Snapshots ports.SnapshotWriter
	Reader    ports.SnapshotReader
	Lock      ports.RunLock
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() || cfg.IsLambda {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	if cfg.LambdaFunctionName != "" {
		logger = logger.With(zap.String("function", cfg.LambdaFunctionName))
	}
	return logger, nil
}

// ProvideAWSConfig creates AWS configuration. SDK calls are traced when
// tracing is enabled.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, err
	}
	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideS3Client creates an S3 client
func ProvideS3Client(awsCfg aws.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideHTTPClient creates the client shared by the feed source and the
// publisher.
func ProvideHTTPClient(cfg *config.Config) *http.Client {
	client := &http.Client{Timeout: cfg.HTTPTimeout}
	if cfg.EnableTracing {
		return xray.Client(client)
	}
	return client
}

// ProvideRules loads the feed rules.
func ProvideRules(cfg *config.Config) (feed.Rules, error) {
	return config.LoadRules(cfg.RulesFile)
}

// ProvideFeedSource creates the feed source. A file:// URL reads a local
// payload instead of calling the upstream API.
func ProvideFeedSource(cfg *config.Config, client *http.Client, logger *zap.Logger) ports.FeedSource {
	if path, ok := strings.CutPrefix(cfg.SessionizeURL, "file://"); ok {
		return memory.NewFileFeed(path)
	}
	return feedsource.NewHTTPSource(cfg.SessionizeURL, cfg.UserAgent, client, logger)
}

// ProvideStores creates the digest, snapshot and lock adapters for the
// configured storage mode.
func ProvideStores(
	cfg *config.Config,
	dynamoClient *awsdynamodb.Client,
	s3Client *awss3.Client,
	logger *zap.Logger,
) *Stores {
	if cfg.UsesMemoryStorage() {
		digests := memory.NewDigestStore()
		snapshots := memory.NewSnapshotStore()
		stores := &Stores{Digests: digests, Hashes: digests, Snapshots: snapshots, Reader: snapshots}
		if cfg.EnableRunLock {
			stores.Lock = memory.NewRunLock()
		}
		return stores
	}

	digests := dynamodb.NewDigestStore(dynamoClient, cfg.DynamoDBTable, logger)
	snapshots := s3.NewSnapshotStore(s3Client, cfg.S3Bucket, logger)
	stores := &Stores{Digests: digests, Hashes: digests, Snapshots: snapshots, Reader: snapshots}
	if cfg.EnableRunLock {
		stores.Lock = dynamodb.NewRunLock(dynamoClient, cfg.DynamoDBTable, cfg.LockName, cfg.LockTTL, logger)
	}
	return stores
}

// ProvidePublisher creates the live-update publisher. Without an endpoint
// publications are only logged.
func ProvidePublisher(cfg *config.Config, client *http.Client, logger *zap.Logger) ports.Publisher {
	if cfg.AppSyncURL == "" {
		logger.Warn("APPSYNC_ENDPOINT not set, live updates are logged only")
		return memory.NewPublisher(logger)
	}
	return appsync.NewPublisher(
		cfg.AppSyncURL,
		cfg.AppSyncAPIKey,
		cfg.UserAgent,
		client,
		appsync.DefaultBreakerSettings(),
		logger,
	)
}

// ProvideEventPublisher creates the sync-completed publisher, or nil when
// events are disabled.
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if !cfg.EnableEvents || cfg.UsesMemoryStorage() {
		return nil
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvidePrometheus creates the scrape registry for long-running servers.
// Lambda functions report to CloudWatch instead and get nil.
func ProvidePrometheus(cfg *config.Config) *observability.PrometheusMetrics {
	if cfg.IsLambda || !cfg.EnableMetrics {
		return nil
	}
	return observability.NewPrometheusMetrics("agenda_sync")
}

// ProvideMetrics selects the metrics sink.
func ProvideMetrics(
	client *awscloudwatch.Client,
	prom *observability.PrometheusMetrics,
	cfg *config.Config,
	logger *zap.Logger,
) ports.Metrics {
	switch {
	case !cfg.EnableMetrics:
		return observability.NoopMetrics{}
	case prom != nil:
		return prom
	default:
		return observability.NewMetrics(cfg.MetricsNamespace, client, cfg.Environment, logger)
	}
}

// ProvideTracer creates a tracer, or nil when tracing is disabled.
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	return observability.NewTracer("agenda-sync")
}

// ProvidePipeline wires the sync pipeline.
func ProvidePipeline(
	stores *Stores,
	source ports.FeedSource,
	publisher ports.Publisher,
	events ports.EventPublisher,
	metrics ports.Metrics,
	tracer *observability.Tracer,
	rules feed.Rules,
	logger *zap.Logger,
) *pipeline.Pipeline {
	return pipeline.New(pipeline.Dependencies{
		Source:    source,
		Digests:   stores.Digests,
		Snapshots: stores.Snapshots,
		Publisher: publisher,
		Events:    events,
		Lock:      stores.Lock,
		Metrics:   metrics,
		Tracer:    tracer,
		Logger:    logger,
	}, rules)
}

// ProvideAgendaQueries wires the read side.
func ProvideAgendaQueries(stores *Stores, logger *zap.Logger) *queries.AgendaQueries {
	return queries.NewAgendaQueries(stores.Reader, stores.Hashes, logger)
}
