package observability

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockCloudWatch struct {
	mock.Mock
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*cloudwatch.PutMetricDataOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestMetrics_FlushSendsBufferedDatums(t *testing.T) {
	ctx := context.Background()
	client := new(mockCloudWatch)
	client.On("PutMetricData", ctx, mock.MatchedBy(func(in *cloudwatch.PutMetricDataInput) bool {
		return *in.Namespace == "AgendaFetcher" && len(in.MetricData) == 2 &&
			*in.MetricData[0].MetricName == MetricRoomsUpdated &&
			*in.MetricData[0].Dimensions[0].Value == "test"
	})).Return(&cloudwatch.PutMetricDataOutput{}, nil).Once()

	m := NewMetrics("AgendaFetcher", client, "test", zap.NewNop())
	m.Count(ctx, MetricRoomsUpdated, 3)
	m.Count(ctx, MetricRoomsSkipped, 1)

	require.NoError(t, m.Flush(ctx))
	require.NoError(t, m.Flush(ctx))
	client.AssertExpectations(t)
}

func TestMetrics_FlushErrorClearsBuffer(t *testing.T) {
	ctx := context.Background()
	client := new(mockCloudWatch)
	client.On("PutMetricData", ctx, mock.Anything).Return(nil, errors.New("throttled")).Once()

	m := NewMetrics("AgendaFetcher", client, "", zap.NewNop())
	m.Count(ctx, MetricFetchAttempt, 1)

	assert.Error(t, m.Flush(ctx))
	assert.NoError(t, m.Flush(ctx))
	client.AssertNumberOfCalls(t, "PutMetricData", 1)
}

func TestMetrics_NilClientIsNoop(t *testing.T) {
	m := NewMetrics("AgendaFetcher", nil, "dev", zap.NewNop())
	m.Count(context.Background(), MetricFetchAttempt, 1)
	assert.NoError(t, m.Flush(context.Background()))
}

func TestPrometheusMetrics_ExposesCounters(t *testing.T) {
	p := NewPrometheusMetrics("agenda_sync")
	p.Count(context.Background(), MetricRoomsUpdated, 2)
	p.Count(context.Background(), MetricRoomsUpdated, 1)
	p.Count(context.Background(), MetricGraphQLError, 1)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "agenda_sync_rooms_updated_total 3")
	assert.True(t, strings.Contains(body, "agenda_sync_graph_qlerror_total 1"))
}

func TestTracer_WithoutSegmentRunsFunction(t *testing.T) {
	called := false
	err := NewTracer("agenda-sync").TraceFunction(context.Background(), "step", func(context.Context) error {
		called = true
		return nil
	})

	assert.NoError(t, err)
	assert.True(t, called)
}
