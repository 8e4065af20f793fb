package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agenda-sync/domain/agenda"
	"agenda-sync/infrastructure/memory"
	apperrors "agenda-sync/pkg/errors"
	"agenda-sync/tests/fixtures"
	"agenda-sync/tests/mocks"
)

func TestGetRoomAgenda_MissingSnapshotIsEmpty(t *testing.T) {
	q := NewAgendaQueries(memory.NewSnapshotStore(), memory.NewDigestStore(), zap.NewNop())

	data, err := q.GetRoomAgenda(context.Background(), "Room A")

	require.NoError(t, err)
	assert.Equal(t, "Room A", data.Location)
	assert.NotNil(t, data.Sessions)
	assert.Empty(t, data.Sessions)
}

func TestGetRoomAgenda_ReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	snapshots := memory.NewSnapshotStore()
	require.NoError(t, snapshots.WriteSnapshot(ctx, "room-Room A.json", agenda.RoomAgendaData{
		Location: "Room A",
		Sessions: []agenda.Session{fixtures.Session("s1", "Room A")},
	}))
	q := NewAgendaQueries(snapshots, memory.NewDigestStore(), zap.NewNop())

	data, err := q.GetRoomAgenda(ctx, "Room A")

	require.NoError(t, err)
	require.Len(t, data.Sessions, 1)
	assert.Equal(t, "s1", data.Sessions[0].ID)
}

func TestGetRoomAgenda_RequiresLocation(t *testing.T) {
	q := NewAgendaQueries(memory.NewSnapshotStore(), memory.NewDigestStore(), zap.NewNop())

	_, err := q.GetRoomAgenda(context.Background(), " ")

	assert.True(t, apperrors.IsValidation(err))
}

func TestGetAgenda(t *testing.T) {
	ctx := context.Background()
	snapshots := memory.NewSnapshotStore()
	q := NewAgendaQueries(snapshots, memory.NewDigestStore(), zap.NewNop())

	data, err := q.GetAgenda(ctx)
	require.NoError(t, err)
	assert.Empty(t, data.Sessions)

	require.NoError(t, snapshots.WriteSnapshot(ctx, agenda.SnapshotKeyAll, agenda.AgendaData{
		Sessions: []agenda.Session{fixtures.Session("s1", "Room A"), fixtures.Session("s2", "Room B")},
	}))
	data, err = q.GetAgenda(ctx)
	require.NoError(t, err)
	assert.Len(t, data.Sessions, 2)
}

func TestGetAgenda_ReadErrorPropagates(t *testing.T) {
	snapshots := new(mocks.SnapshotReader)
	snapshots.On("ReadSnapshot", mock.Anything, agenda.SnapshotKeyAll, mock.Anything).
		Return(false, apperrors.NewSnapshotError(agenda.SnapshotKeyAll, errors.New("denied")))
	q := NewAgendaQueries(snapshots, new(mocks.HashReader), zap.NewNop())

	_, err := q.GetAgenda(context.Background())

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeSnapshot))
}

func TestGetHash(t *testing.T) {
	hashes := new(mocks.HashReader)
	record := &agenda.HashRecord{PartitionKey: "ALL", Hash: "abc", UpdatedAt: time.Now()}
	hashes.On("GetHashRecord", mock.Anything, "ALL").Return(record, nil)
	hashes.On("GetHashRecord", mock.Anything, "Nowhere").Return(nil, apperrors.NewNotFoundError("hash for Nowhere"))
	q := NewAgendaQueries(new(mocks.SnapshotReader), hashes, zap.NewNop())

	got, err := q.GetHash(context.Background(), "ALL")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Hash)

	_, err = q.GetHash(context.Background(), "Nowhere")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = q.GetHash(context.Background(), "")
	assert.True(t, apperrors.IsValidation(err))
}
