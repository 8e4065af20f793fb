package agenda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionByRoom_GroupsPreservingOrder(t *testing.T) {
	sessions := []Session{
		{ID: "1", Location: "Room A"},
		{ID: "2", Location: "Room B"},
		{ID: "3", Location: "Room A"},
		{ID: "4", Location: UnknownLocation},
		{ID: "5", Location: "Room B"},
	}

	rooms := PartitionByRoom(sessions)

	require.Len(t, rooms, 3)
	assert.Equal(t, "Room A", rooms[0].Location)
	assert.Equal(t, []string{"1", "3"}, ids(rooms[0].Sessions))
	assert.Equal(t, "Room B", rooms[1].Location)
	assert.Equal(t, []string{"2", "5"}, ids(rooms[1].Sessions))
	assert.Equal(t, UnknownLocation, rooms[2].Location)
	assert.Equal(t, []string{"4"}, ids(rooms[2].Sessions))
}

func TestPartitionByRoom_EmptyLocationIsUnknown(t *testing.T) {
	rooms := PartitionByRoom([]Session{{ID: "1"}})

	require.Len(t, rooms, 1)
	assert.Equal(t, UnknownLocation, rooms[0].Location)
}

func TestPartitionByRoom_DoesNotMutateInput(t *testing.T) {
	sessions := []Session{{ID: "1", Location: "Room A"}, {ID: "2", Location: "Room A"}}

	_ = PartitionByRoom(sessions)
	_ = PartitionByRoom(sessions)

	assert.Equal(t, []string{"1", "2"}, ids(sessions))
}

func TestPartitionByRoom_Empty(t *testing.T) {
	assert.Empty(t, PartitionByRoom(nil))
}

func TestRoomSnapshotKey(t *testing.T) {
	assert.Equal(t, "room-Room A.json", RoomSnapshotKey("Room A"))
}

func ids(sessions []Session) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.ID)
	}
	return out
}
