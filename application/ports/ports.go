package ports

import (
	"context"
	"errors"

	"agenda-sync/domain/agenda"
	"agenda-sync/domain/feed"
)

// ErrRunInProgress is returned by RunLock.Acquire while another run holds the lock.
var ErrRunInProgress = errors.New("agenda sync already in progress")

// FeedSource retrieves the raw schedule payload.
type FeedSource interface {
	Fetch(ctx context.Context) (feed.Payload, error)
}

// DigestStore keeps the last-known-good digest per partition key.
// GetDigest returns "" without error when nothing has been stored yet.
type DigestStore interface {
	GetDigest(ctx context.Context, partitionKey string) (string, error)
	PutDigest(ctx context.Context, partitionKey, digest string) error
}

// HashReader exposes full digest records to the read side.
type HashReader interface {
	GetHashRecord(ctx context.Context, partitionKey string) (*agenda.HashRecord, error)
}

// SnapshotWriter persists agenda snapshots under a key.
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, key string, data any) error
}

// SnapshotReader loads a snapshot into out. found is false when the key does
// not exist.
type SnapshotReader interface {
	ReadSnapshot(ctx context.Context, key string, out any) (found bool, err error)
}

// Publisher pushes a room's new agenda to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, location string, sessions []agenda.Session) error
}

// EventPublisher announces completed runs.
type EventPublisher interface {
	PublishSyncCompleted(ctx context.Context, event agenda.SyncCompleted) error
}

// Unlocker releases a held run lock.
type Unlocker interface {
	Release(ctx context.Context) error
}

// RunLock guarantees a single writer per partition across overlapping runs.
type RunLock interface {
	Acquire(ctx context.Context, owner string) (Unlocker, error)
}

// Metrics records run counters.
type Metrics interface {
	Count(ctx context.Context, name string, value float64)
	Flush(ctx context.Context) error
}
