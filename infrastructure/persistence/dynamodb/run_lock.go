package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"agenda-sync/application/ports"
)

const lockSK = "LOCK"

// lockRecord is stored under PK=LOCK#<name>. ExpiresAt is RFC3339 UTC so
// string comparison orders it; TTL lets DynamoDB reap abandoned locks.
type lockRecord struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	LockID     string `dynamodbav:"LockID"`
	Owner      string `dynamodbav:"Owner"`
	AcquiredAt string `dynamodbav:"AcquiredAt"`
	ExpiresAt  string `dynamodbav:"ExpiresAt"`
	TTL        int64  `dynamodbav:"TTL"`
}

// RunLock is a lease on a named resource taken with a conditional write. An
// expired lease can be taken over, so a crashed run blocks others for at
// most the lease duration.
type RunLock struct {
	client    API
	tableName string
	name      string
	ttl       time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewRunLock creates a lock on name with the given lease duration.
func NewRunLock(client API, tableName, name string, ttl time.Duration, logger *zap.Logger) *RunLock {
	return &RunLock{
		client:    client,
		tableName: tableName,
		name:      name,
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
	}
}

// Acquire takes the lease for owner or returns ports.ErrRunInProgress.
func (l *RunLock) Acquire(ctx context.Context, owner string) (ports.Unlocker, error) {
	now := l.now().UTC()
	expiresAt := now.Add(l.ttl)
	lockID := fmt.Sprintf("%s_%d", owner, now.UnixNano())

	item, err := attributevalue.MarshalMap(lockRecord{
		PK:         l.pk(),
		SK:         lockSK,
		LockID:     lockID,
		Owner:      owner,
		AcquiredAt: now.Format(time.RFC3339),
		ExpiresAt:  expiresAt.Format(time.RFC3339),
		TTL:        expiresAt.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lock: %w", err)
	}

	cond := expression.AttributeNotExists(expression.Name("PK")).
		Or(expression.Name("ExpiresAt").LessThan(expression.Value(now.Format(time.RFC3339))))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build lock condition: %w", err)
	}

	_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(l.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			l.logger.Info("Run lock already held",
				zap.String("resource", l.name),
				zap.String("owner", owner),
			)
			return nil, ports.ErrRunInProgress
		}
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	l.logger.Debug("Run lock acquired",
		zap.String("resource", l.name),
		zap.String("lockID", lockID),
		zap.Duration("ttl", l.ttl),
	)
	return &heldLock{lock: l, lockID: lockID}, nil
}

func (l *RunLock) release(ctx context.Context, lockID string) error {
	cond := expression.Name("LockID").Equal(expression.Value(lockID))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build release condition: %w", err)
	}

	_, err = l.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(l.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: l.pk()},
			"SK": &types.AttributeValueMemberS{Value: lockSK},
		},
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			// Lease expired and was taken over; nothing of ours to delete.
			l.logger.Warn("Run lock already released or taken over",
				zap.String("resource", l.name),
				zap.String("lockID", lockID),
			)
			return nil
		}
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

func (l *RunLock) pk() string {
	return "LOCK#" + l.name
}

type heldLock struct {
	lock   *RunLock
	lockID string
}

// Release deletes the lease if it is still ours.
func (h *heldLock) Release(ctx context.Context) error {
	return h.lock.release(ctx, h.lockID)
}
