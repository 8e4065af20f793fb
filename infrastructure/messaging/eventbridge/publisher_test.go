package eventbridge

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agenda-sync/domain/agenda"
)

type mockEventBridge struct {
	mock.Mock
}

func (m *mockEventBridge) PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*eventbridge.PutEventsOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestPublisher_PublishSyncCompleted(t *testing.T) {
	ctx := context.Background()
	client := new(mockEventBridge)
	client.On("PutEvents", ctx, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
		if len(in.Entries) != 1 {
			return false
		}
		entry := in.Entries[0]
		var detail map[string]any
		if err := json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail); err != nil {
			return false
		}
		return aws.ToString(entry.EventBusName) == "agenda-bus" &&
			aws.ToString(entry.Source) == Source &&
			aws.ToString(entry.DetailType) == agenda.EventTypeSyncCompleted &&
			detail["runId"] == "run-1" &&
			detail["roomsUpdated"] == float64(2)
	})).Return(&eventbridge.PutEventsOutput{}, nil)

	err := NewPublisher(client, "agenda-bus", zap.NewNop()).PublishSyncCompleted(ctx, agenda.SyncCompleted{
		RunID:        "run-1",
		RoomsUpdated: 2,
		CompletedAt:  time.Now(),
	})

	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestPublisher_FailedEntries(t *testing.T) {
	ctx := context.Background()
	client := new(mockEventBridge)
	client.On("PutEvents", ctx, mock.Anything).Return(&eventbridge.PutEventsOutput{
		FailedEntryCount: 1,
		Entries: []types.PutEventsResultEntry{
			{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("boom")},
		},
	}, nil)

	err := NewPublisher(client, "agenda-bus", zap.NewNop()).PublishSyncCompleted(ctx, agenda.SyncCompleted{RunID: "run-2"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 events failed")
}
