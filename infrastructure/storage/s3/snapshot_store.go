// Package s3 persists agenda snapshots as JSON objects.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	apperrors "agenda-sync/pkg/errors"
)

// API is the subset of the S3 client used here.
type API interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
}

// SnapshotStore writes and reads snapshots in one bucket. Writes overwrite
// unconditionally; the latest write wins.
type SnapshotStore struct {
	client API
	bucket string
	logger *zap.Logger
}

// NewSnapshotStore creates a snapshot store for bucket.
func NewSnapshotStore(client API, bucket string, logger *zap.Logger) *SnapshotStore {
	return &SnapshotStore{
		client: client,
		bucket: bucket,
		logger: logger,
	}
}

// WriteSnapshot stores data as indented JSON under key.
func (s *SnapshotStore) WriteSnapshot(ctx context.Context, key string, data any) error {
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return apperrors.NewSnapshotError(key, err)
	}

	_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return apperrors.NewSnapshotError(key, err).WithDetail("bucket", s.bucket)
	}

	s.logger.Debug("Wrote snapshot", zap.String("bucket", s.bucket), zap.String("key", key), zap.Int("bytes", len(body)))
	return nil
}

// ReadSnapshot decodes the object at key into out. A missing object is
// reported as found=false without error.
func (s *SnapshotStore) ReadSnapshot(ctx context.Context, key string, out any) (bool, error) {
	resp, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isMissingObject(err) {
			return false, nil
		}
		return false, apperrors.NewSnapshotError(key, err).WithDetail("bucket", s.bucket)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, apperrors.NewSnapshotError(key, err).WithDetail("bucket", s.bucket)
	}
	return true, nil
}

// isMissingObject reports whether err means the key does not exist. Without
// s3:ListBucket the service answers a generic NotFound instead of NoSuchKey.
func isMissingObject(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
