package pipeline

import (
	"time"

	"agenda-sync/domain/agenda"
)

// Result summarises one run.
type Result struct {
	RunID            string        `json:"runId"`
	TotalRooms       int           `json:"totalRooms"`
	RoomsUpdated     int           `json:"roomsUpdated"`
	RoomsSkipped     int           `json:"roomsSkipped"`
	RoomsFailed      int           `json:"roomsFailed"`
	FailedRooms      []string      `json:"failedRooms,omitempty"`
	TotalSessions    int           `json:"totalSessions"`
	SessionsRejected int           `json:"sessionsRejected"`
	GlobalUpdated    bool          `json:"globalUpdated"`
	GlobalError      error         `json:"-"`
	Duration         time.Duration `json:"-"`
}

// Event converts the result into the run-completion event.
func (r *Result) Event(completedAt time.Time) agenda.SyncCompleted {
	return agenda.SyncCompleted{
		RunID:            r.RunID,
		TotalRooms:       r.TotalRooms,
		RoomsUpdated:     r.RoomsUpdated,
		RoomsSkipped:     r.RoomsSkipped,
		RoomsFailed:      r.RoomsFailed,
		FailedRooms:      r.FailedRooms,
		TotalSessions:    r.TotalSessions,
		SessionsRejected: r.SessionsRejected,
		GlobalUpdated:    r.GlobalUpdated,
		DurationMillis:   r.Duration.Milliseconds(),
		CompletedAt:      completedAt.UTC(),
	}
}
