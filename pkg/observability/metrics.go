package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Counter names emitted by the sync pipeline.
const (
	MetricFetchAttempt      = "FetchAttempt"
	MetricS3Writes          = "S3Writes"
	MetricHashUpdates       = "HashUpdates"
	MetricBroadcasts        = "Broadcasts"
	MetricGraphQLSuccess    = "GraphQLSuccess"
	MetricGraphQLError      = "GraphQLError"
	MetricProcessingSuccess = "ProcessingSuccess"
	MetricProcessingError   = "ProcessingError"
	MetricRoomsUpdated      = "RoomsUpdated"
	MetricRoomsSkipped      = "RoomsSkipped"
	MetricRoomsFailed       = "RoomsFailed"
	MetricSessionsRejected  = "SessionsRejected"
)

// PutMetricData accepts at most this many datums per call.
const maxDatumsPerCall = 1000

// CloudWatchAPI is the subset of the CloudWatch client used here.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics buffers counters in memory and sends them to CloudWatch on Flush,
// so a Lambda invocation makes one PutMetricData call instead of one per
// event.
type Metrics struct {
	namespace  string
	client     CloudWatchAPI
	dimensions []types.Dimension
	logger     *zap.Logger

	mu      sync.Mutex
	pending []types.MetricDatum
}

// NewMetrics creates a new metrics instance. A nil client turns every call
// into a no-op.
func NewMetrics(namespace string, client CloudWatchAPI, environment string, logger *zap.Logger) *Metrics {
	m := &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
	if environment != "" {
		m.dimensions = []types.Dimension{
			{Name: aws.String("Environment"), Value: aws.String(environment)},
		}
	}
	return m
}

// Count buffers a counter datum.
func (m *Metrics) Count(_ context.Context, name string, value float64) {
	if m.client == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, types.MetricDatum{
		MetricName: aws.String(name),
		Dimensions: m.dimensions,
		Value:      aws.Float64(value),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(time.Now()),
	})
}

// Flush sends all buffered datums. The buffer is cleared even when the call
// fails; metrics are never allowed to block the next run.
func (m *Metrics) Flush(ctx context.Context) error {
	if m.client == nil {
		return nil
	}

	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	for start := 0; start < len(pending); start += maxDatumsPerCall {
		end := start + maxDatumsPerCall
		if end > len(pending) {
			end = len(pending)
		}

		_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(m.namespace),
			MetricData: pending[start:end],
		})
		if err != nil {
			if m.logger != nil {
				m.logger.Warn("Failed to send metrics", zap.Int("datums", end-start), zap.Error(err))
			}
			return err
		}
	}
	return nil
}

// NoopMetrics discards every datum.
type NoopMetrics struct{}

func (NoopMetrics) Count(context.Context, string, float64) {}

func (NoopMetrics) Flush(context.Context) error { return nil }
