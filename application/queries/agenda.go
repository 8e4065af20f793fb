// Package queries serves the snapshots and digests written by the sync
// pipeline.
package queries

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"agenda-sync/application/ports"
	"agenda-sync/domain/agenda"
	apperrors "agenda-sync/pkg/errors"
)

// AgendaQueries reads the published agenda. Missing snapshots are an empty
// agenda, not an error: the first sync may not have run yet.
type AgendaQueries struct {
	snapshots ports.SnapshotReader
	hashes    ports.HashReader
	logger    *zap.Logger
}

// NewAgendaQueries creates the read side.
func NewAgendaQueries(snapshots ports.SnapshotReader, hashes ports.HashReader, logger *zap.Logger) *AgendaQueries {
	return &AgendaQueries{
		snapshots: snapshots,
		hashes:    hashes,
		logger:    logger,
	}
}

// GetAgenda returns the full agenda.
func (q *AgendaQueries) GetAgenda(ctx context.Context) (*agenda.AgendaData, error) {
	var data agenda.AgendaData
	found, err := q.snapshots.ReadSnapshot(ctx, agenda.SnapshotKeyAll, &data)
	if err != nil {
		return nil, err
	}
	if !found {
		q.logger.Warn("No agenda snapshot found")
	}
	if data.Sessions == nil {
		data.Sessions = []agenda.Session{}
	}
	return &data, nil
}

// GetRoomAgenda returns one room's agenda.
func (q *AgendaQueries) GetRoomAgenda(ctx context.Context, location string) (*agenda.RoomAgendaData, error) {
	if strings.TrimSpace(location) == "" {
		return nil, apperrors.NewValidationError("location is required")
	}

	var data agenda.RoomAgendaData
	key := agenda.RoomSnapshotKey(location)
	found, err := q.snapshots.ReadSnapshot(ctx, key, &data)
	if err != nil {
		return nil, apperrors.Wrapf(err, "room %s", location)
	}
	if !found {
		q.logger.Warn("No room snapshot found", zap.String("location", location), zap.String("key", key))
	}
	if data.Location == "" {
		data.Location = location
	}
	if data.Sessions == nil {
		data.Sessions = []agenda.Session{}
	}
	return &data, nil
}

// GetHash returns the stored digest record of a partition ("ALL" or a room).
func (q *AgendaQueries) GetHash(ctx context.Context, key string) (*agenda.HashRecord, error) {
	if strings.TrimSpace(key) == "" {
		return nil, apperrors.NewValidationError("key is required")
	}
	return q.hashes.GetHashRecord(ctx, key)
}
