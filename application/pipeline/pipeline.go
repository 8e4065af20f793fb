// Package pipeline runs one agenda synchronization: fetch the feed,
// normalize it, and propagate changed partitions to snapshots, digests and
// live subscribers.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agenda-sync/application/ports"
	"agenda-sync/domain/agenda"
	"agenda-sync/domain/feed"
	"agenda-sync/pkg/canonical"
	"agenda-sync/pkg/observability"
)

// Dependencies are the adapters a pipeline drives. Lock and Events are
// optional.
type Dependencies struct {
	Source    ports.FeedSource
	Digests   ports.DigestStore
	Snapshots ports.SnapshotWriter
	Publisher ports.Publisher
	Events    ports.EventPublisher
	Lock      ports.RunLock
	Metrics   ports.Metrics
	Tracer    *observability.Tracer
	Logger    *zap.Logger
}

// Pipeline is safe to reuse across runs. Runs themselves are sequential:
// partitions are processed one after another.
type Pipeline struct {
	deps Dependencies

	mu         sync.RWMutex
	normalizer *feed.Normalizer

	now      func() time.Time
	newRunID func() string
}

// New creates a pipeline using rules for normalization.
func New(deps Dependencies, rules feed.Rules) *Pipeline {
	if deps.Metrics == nil {
		deps.Metrics = observability.NoopMetrics{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Pipeline{
		deps:       deps,
		normalizer: feed.NewNormalizer(rules),
		now:        time.Now,
		newRunID:   uuid.NewString,
	}
}

// UpdateRules swaps the normalization rules used by subsequent runs.
func (p *Pipeline) UpdateRules(rules feed.Rules) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.normalizer = feed.NewNormalizer(rules)
}

// Run performs one sync. Only lock contention and fetch failures are
// returned as errors; partition failures are recorded in the Result.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := p.newRunID()
	start := p.now()
	logger := p.deps.Logger.With(zap.String("runId", runID))

	if p.deps.Lock != nil {
		unlocker, err := p.deps.Lock.Acquire(ctx, runID)
		if err != nil {
			if errors.Is(err, ports.ErrRunInProgress) {
				logger.Info("Skipping run, another sync holds the lock")
			}
			return nil, err
		}
		defer func() {
			if err := unlocker.Release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("Failed to release run lock", zap.Error(err))
			}
		}()
	}

	defer func() {
		if err := p.deps.Metrics.Flush(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Failed to flush metrics", zap.Error(err))
		}
	}()

	p.deps.Tracer.AddAnnotation(ctx, "runId", runID)
	result := &Result{RunID: runID}

	p.deps.Metrics.Count(ctx, observability.MetricFetchAttempt, 1)
	var payload feed.Payload
	err := p.deps.Tracer.TraceFunction(ctx, "FetchSchedule", func(ctx context.Context) error {
		var err error
		payload, err = p.deps.Source.Fetch(ctx)
		return err
	})
	if err != nil {
		p.deps.Metrics.Count(ctx, observability.MetricProcessingError, 1)
		logger.Error("Failed to fetch schedule", zap.Error(err))
		return nil, err
	}

	sessions := p.normalize(ctx, logger, payload, result)
	result.TotalSessions = len(sessions)

	if err := p.deps.Tracer.TraceFunction(ctx, "ProcessGlobal", func(ctx context.Context) error {
		return p.processGlobal(ctx, logger, sessions, result)
	}); err != nil {
		result.GlobalError = err
		p.deps.Metrics.Count(ctx, observability.MetricProcessingError, 1)
		logger.Error("Failed to process full agenda", zap.Error(err))
	}

	rooms := agenda.PartitionByRoom(sessions)
	result.TotalRooms = len(rooms)

	for _, room := range rooms {
		var (
			outcome roomOutcome
			digest  string
		)
		err := p.deps.Tracer.TraceFunction(ctx, "ProcessRoom", func(ctx context.Context) error {
			var err error
			outcome, digest, err = p.processRoom(ctx, logger, room)
			return err
		})

		switch {
		case err != nil:
			result.RoomsFailed++
			result.FailedRooms = append(result.FailedRooms, room.Location)
			logger.Error("Failed to process room",
				zap.String("location", room.Location),
				zap.String("hash", digest),
				zap.Error(err),
			)
		case outcome == roomUpdated:
			result.RoomsUpdated++
		default:
			result.RoomsSkipped++
		}
	}

	p.deps.Metrics.Count(ctx, observability.MetricRoomsUpdated, float64(result.RoomsUpdated))
	p.deps.Metrics.Count(ctx, observability.MetricRoomsSkipped, float64(result.RoomsSkipped))
	p.deps.Metrics.Count(ctx, observability.MetricRoomsFailed, float64(result.RoomsFailed))
	p.deps.Metrics.Count(ctx, observability.MetricProcessingSuccess, 1)

	result.Duration = p.now().Sub(start)
	logger.Info("Agenda sync completed",
		zap.Int("totalSessions", result.TotalSessions),
		zap.Int("sessionsRejected", result.SessionsRejected),
		zap.Int("totalRooms", result.TotalRooms),
		zap.Int("roomsUpdated", result.RoomsUpdated),
		zap.Int("roomsSkipped", result.RoomsSkipped),
		zap.Int("roomsFailed", result.RoomsFailed),
		zap.Bool("globalUpdated", result.GlobalUpdated),
		zap.Duration("duration", result.Duration),
	)

	if p.deps.Events != nil {
		if err := p.deps.Events.PublishSyncCompleted(ctx, result.Event(p.now())); err != nil {
			logger.Warn("Failed to publish sync completed event", zap.Error(err))
		}
	}

	return result, nil
}

func (p *Pipeline) normalize(ctx context.Context, logger *zap.Logger, payload feed.Payload, result *Result) []agenda.Session {
	p.mu.RLock()
	normalizer := p.normalizer
	p.mu.RUnlock()

	for _, rejected := range payload.Rejected {
		if rejected.Collection == feed.CollectionSessions {
			continue
		}
		logger.Warn("Ignoring malformed feed entry",
			zap.String("collection", rejected.Collection),
			zap.Int("index", rejected.Index),
			zap.String("id", rejected.ID),
			zap.Error(rejected.Err),
		)
	}

	sessions, err := normalizer.Normalize(payload)
	if err != nil {
		rejected := splitJoined(err)
		for _, e := range rejected {
			logger.Error("Rejected feed entry", zap.Error(e))
		}
		result.SessionsRejected = len(rejected)
		p.deps.Metrics.Count(ctx, observability.MetricSessionsRejected, float64(len(rejected)))
	}

	for _, s := range sessions {
		if s.Duration < 0 {
			logger.Warn("Session ends before it starts",
				zap.String("sessionId", s.ID),
				zap.String("dateStart", s.DateStart),
				zap.String("dateEnd", s.DateEnd),
				zap.Int("duration", s.Duration),
			)
		}
	}
	return sessions
}

// processGlobal writes the full agenda snapshot when its digest changed. The
// digest is stored only after the snapshot write succeeded.
func (p *Pipeline) processGlobal(ctx context.Context, logger *zap.Logger, sessions []agenda.Session, result *Result) error {
	data := agenda.AgendaData{Sessions: sessions}
	digest, err := canonical.Digest(data)
	if err != nil {
		return err
	}

	previous, err := p.deps.Digests.GetDigest(ctx, agenda.GlobalPartition)
	if err != nil {
		return err
	}
	if previous == digest {
		logger.Debug("Full agenda unchanged", zap.String("hash", digest))
		return nil
	}

	if err := p.deps.Snapshots.WriteSnapshot(ctx, agenda.SnapshotKeyAll, data); err != nil {
		return err
	}
	p.deps.Metrics.Count(ctx, observability.MetricS3Writes, 1)

	if err := p.deps.Digests.PutDigest(ctx, agenda.GlobalPartition, digest); err != nil {
		return err
	}
	p.deps.Metrics.Count(ctx, observability.MetricHashUpdates, 1)

	result.GlobalUpdated = true
	logger.Info("Full agenda updated", zap.String("hash", digest), zap.Int("sessions", len(sessions)))
	return nil
}

type roomOutcome int

const (
	roomSkipped roomOutcome = iota
	roomUpdated
)

// processRoom propagates one room. Order is snapshot, publish, digest: a
// failure before the digest write leaves the old digest in place so the next
// run retries the room.
func (p *Pipeline) processRoom(ctx context.Context, logger *zap.Logger, room agenda.RoomAgendaData) (roomOutcome, string, error) {
	digest, err := canonical.Digest(room)
	if err != nil {
		return roomSkipped, "", err
	}

	previous, err := p.deps.Digests.GetDigest(ctx, room.Location)
	if err != nil {
		return roomSkipped, digest, err
	}
	if previous == digest {
		logger.Debug("Room unchanged", zap.String("location", room.Location))
		return roomSkipped, digest, nil
	}

	if err := p.deps.Snapshots.WriteSnapshot(ctx, agenda.RoomSnapshotKey(room.Location), room); err != nil {
		return roomSkipped, digest, err
	}
	p.deps.Metrics.Count(ctx, observability.MetricS3Writes, 1)

	if err := p.deps.Publisher.Publish(ctx, room.Location, room.Sessions); err != nil {
		p.deps.Metrics.Count(ctx, observability.MetricGraphQLError, 1)
		return roomSkipped, digest, err
	}
	p.deps.Metrics.Count(ctx, observability.MetricGraphQLSuccess, 1)
	p.deps.Metrics.Count(ctx, observability.MetricBroadcasts, 1)

	if err := p.deps.Digests.PutDigest(ctx, room.Location, digest); err != nil {
		return roomSkipped, digest, err
	}
	p.deps.Metrics.Count(ctx, observability.MetricHashUpdates, 1)

	logger.Info("Room updated",
		zap.String("location", room.Location),
		zap.String("hash", digest),
		zap.Int("sessions", len(room.Sessions)),
	)
	return roomUpdated, digest, nil
}

func splitJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
