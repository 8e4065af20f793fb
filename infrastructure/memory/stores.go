// Package memory provides in-process adapters for local runs and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"agenda-sync/application/ports"
	"agenda-sync/domain/agenda"
	apperrors "agenda-sync/pkg/errors"
)

// DigestStore keeps digests in a map.
type DigestStore struct {
	mu      sync.RWMutex
	records map[string]agenda.HashRecord
	now     func() time.Time
}

// NewDigestStore creates an empty digest store.
func NewDigestStore() *DigestStore {
	return &DigestStore{
		records: make(map[string]agenda.HashRecord),
		now:     time.Now,
	}
}

func (s *DigestStore) GetDigest(_ context.Context, partitionKey string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[partitionKey].Hash, nil
}

func (s *DigestStore) PutDigest(_ context.Context, partitionKey, digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[partitionKey] = agenda.HashRecord{
		PartitionKey: partitionKey,
		Hash:         digest,
		UpdatedAt:    s.now().UTC(),
	}
	return nil
}

func (s *DigestStore) GetHashRecord(_ context.Context, partitionKey string) (*agenda.HashRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[partitionKey]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("hash for %s", partitionKey))
	}
	return &record, nil
}

// SnapshotStore keeps JSON-encoded snapshots in a map so readers observe the
// same serialization as the S3 adapter.
type SnapshotStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewSnapshotStore creates an empty snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{objects: make(map[string][]byte)}
}

func (s *SnapshotStore) WriteSnapshot(_ context.Context, key string, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return apperrors.NewSnapshotError(key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = body
	return nil
}

func (s *SnapshotStore) ReadSnapshot(_ context.Context, key string, out any) (bool, error) {
	s.mu.RLock()
	body, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, apperrors.NewSnapshotError(key, err)
	}
	return true, nil
}

// Keys lists stored object keys in order.
func (s *SnapshotStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RunLock is a process-local lock with the same contract as the DynamoDB one.
type RunLock struct {
	mu   sync.Mutex
	held bool
}

func NewRunLock() *RunLock {
	return &RunLock{}
}

func (l *RunLock) Acquire(_ context.Context, _ string) (ports.Unlocker, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return nil, ports.ErrRunInProgress
	}
	l.held = true
	return unlockFunc(func() {
		l.mu.Lock()
		l.held = false
		l.mu.Unlock()
	}), nil
}

type unlockFunc func()

func (f unlockFunc) Release(context.Context) error {
	f()
	return nil
}
