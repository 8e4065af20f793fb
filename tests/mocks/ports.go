// Package mocks holds testify mocks of the application ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"agenda-sync/application/ports"
	"agenda-sync/domain/agenda"
	"agenda-sync/domain/feed"
)

type FeedSource struct {
	mock.Mock
}

func (m *FeedSource) Fetch(ctx context.Context) (feed.Payload, error) {
	args := m.Called(ctx)
	return args.Get(0).(feed.Payload), args.Error(1)
}

type DigestStore struct {
	mock.Mock
}

func (m *DigestStore) GetDigest(ctx context.Context, partitionKey string) (string, error) {
	args := m.Called(ctx, partitionKey)
	return args.String(0), args.Error(1)
}

func (m *DigestStore) PutDigest(ctx context.Context, partitionKey, digest string) error {
	args := m.Called(ctx, partitionKey, digest)
	return args.Error(0)
}

type HashReader struct {
	mock.Mock
}

func (m *HashReader) GetHashRecord(ctx context.Context, partitionKey string) (*agenda.HashRecord, error) {
	args := m.Called(ctx, partitionKey)
	if record := args.Get(0); record != nil {
		return record.(*agenda.HashRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

type SnapshotWriter struct {
	mock.Mock
}

func (m *SnapshotWriter) WriteSnapshot(ctx context.Context, key string, data any) error {
	args := m.Called(ctx, key, data)
	return args.Error(0)
}

type SnapshotReader struct {
	mock.Mock
}

func (m *SnapshotReader) ReadSnapshot(ctx context.Context, key string, out any) (bool, error) {
	args := m.Called(ctx, key, out)
	return args.Bool(0), args.Error(1)
}

type Publisher struct {
	mock.Mock
}

func (m *Publisher) Publish(ctx context.Context, location string, sessions []agenda.Session) error {
	args := m.Called(ctx, location, sessions)
	return args.Error(0)
}

type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) PublishSyncCompleted(ctx context.Context, event agenda.SyncCompleted) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type RunLock struct {
	mock.Mock
}

func (m *RunLock) Acquire(ctx context.Context, owner string) (ports.Unlocker, error) {
	args := m.Called(ctx, owner)
	if unlocker := args.Get(0); unlocker != nil {
		return unlocker.(ports.Unlocker), args.Error(1)
	}
	return nil, args.Error(1)
}

type Unlocker struct {
	mock.Mock
}

func (m *Unlocker) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type Metrics struct {
	mock.Mock
}

func (m *Metrics) Count(ctx context.Context, name string, value float64) {
	m.Called(ctx, name, value)
}

func (m *Metrics) Flush(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var (
	_ ports.FeedSource     = (*FeedSource)(nil)
	_ ports.DigestStore    = (*DigestStore)(nil)
	_ ports.HashReader     = (*HashReader)(nil)
	_ ports.SnapshotWriter = (*SnapshotWriter)(nil)
	_ ports.SnapshotReader = (*SnapshotReader)(nil)
	_ ports.Publisher      = (*Publisher)(nil)
	_ ports.EventPublisher = (*EventPublisher)(nil)
	_ ports.RunLock        = (*RunLock)(nil)
	_ ports.Unlocker       = (*Unlocker)(nil)
	_ ports.Metrics        = (*Metrics)(nil)
)
