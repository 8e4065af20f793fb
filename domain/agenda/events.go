package agenda

import "time"

// EventTypeSyncCompleted is the detail-type of the run completion event.
const EventTypeSyncCompleted = "AgendaSyncCompleted"

// SyncCompleted summarises a finished sync run for downstream consumers.
type SyncCompleted struct {
	RunID            string    `json:"runId"`
	TotalRooms       int       `json:"totalRooms"`
	RoomsUpdated     int       `json:"roomsUpdated"`
	RoomsSkipped     int       `json:"roomsSkipped"`
	RoomsFailed      int       `json:"roomsFailed"`
	FailedRooms      []string  `json:"failedRooms"`
	TotalSessions    int       `json:"totalSessions"`
	SessionsRejected int       `json:"sessionsRejected"`
	GlobalUpdated    bool      `json:"globalUpdated"`
	DurationMillis   int64     `json:"durationMs"`
	CompletedAt      time.Time `json:"completedAt"`
}

// EventType returns the event's detail-type.
func (e SyncCompleted) EventType() string {
	return EventTypeSyncCompleted
}
