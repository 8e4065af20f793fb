// Package dynamodb stores per-partition content digests and the run lock in a
// single DynamoDB table keyed by PK/SK.
package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"agenda-sync/domain/agenda"
	apperrors "agenda-sync/pkg/errors"
)

const (
	digestPKPrefix = "AGENDA#"
	digestSK       = "HASH"
)

// API is the subset of the DynamoDB client used by this package.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type digestItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Hash      string `dynamodbav:"hash"`
	UpdatedAt string `dynamodbav:"updatedAt"`
}

// DigestStore is the change-detection store. Writes are unconditional; the
// run lock provides single-writer semantics.
type DigestStore struct {
	client    API
	tableName string
	logger    *zap.Logger
	now       func() time.Time
}

// NewDigestStore creates a digest store on tableName.
func NewDigestStore(client API, tableName string, logger *zap.Logger) *DigestStore {
	return &DigestStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
		now:       time.Now,
	}
}

// GetDigest returns the stored digest, or "" when the partition has never
// been written.
func (s *DigestStore) GetDigest(ctx context.Context, partitionKey string) (string, error) {
	record, err := s.GetHashRecord(ctx, partitionKey)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return record.Hash, nil
}

// GetHashRecord returns the full record or a NotFound error.
func (s *DigestStore) GetHashRecord(ctx context.Context, partitionKey string) (*agenda.HashRecord, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       digestKey(partitionKey),
	})
	if err != nil {
		return nil, apperrors.NewStoreError("GetItem", err).WithDetail("partitionKey", partitionKey)
	}
	if out.Item == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("hash for %s", partitionKey))
	}

	var item digestItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.NewStoreError("UnmarshalMap", err).WithDetail("partitionKey", partitionKey)
	}

	record := &agenda.HashRecord{PartitionKey: partitionKey, Hash: item.Hash}
	if item.UpdatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, item.UpdatedAt); err == nil {
			record.UpdatedAt = ts
		} else {
			s.logger.Warn("Unparseable digest timestamp",
				zap.String("partitionKey", partitionKey),
				zap.String("updatedAt", item.UpdatedAt),
			)
		}
	}
	return record, nil
}

// PutDigest overwrites the partition's digest.
func (s *DigestStore) PutDigest(ctx context.Context, partitionKey, digest string) error {
	item, err := attributevalue.MarshalMap(digestItem{
		PK:        digestPKPrefix + partitionKey,
		SK:        digestSK,
		Hash:      digest,
		UpdatedAt: s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return apperrors.NewStoreError("MarshalMap", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return apperrors.NewStoreError("PutItem", err).WithDetail("partitionKey", partitionKey)
	}

	s.logger.Debug("Stored digest",
		zap.String("partitionKey", partitionKey),
		zap.String("hash", digest),
	)
	return nil
}

func digestKey(partitionKey string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: digestPKPrefix + partitionKey},
		"SK": &types.AttributeValueMemberS{Value: digestSK},
	}
}
