// Package agenda holds the canonical agenda model shared by the sync pipeline,
// the snapshot readers and the live-update publisher.
package agenda

import (
	"fmt"
	"time"
)

const (
	// GlobalPartition is the digest partition key for the full agenda blob.
	GlobalPartition = "ALL"

	// UnknownLocation is used when a session's room cannot be resolved.
	UnknownLocation = "UNKNOWN"

	// SnapshotKeyAll is the object key of the full agenda snapshot.
	SnapshotKeyAll = "all-sessions.json"
)

// RoomSnapshotKey returns the object key of a room's agenda snapshot.
func RoomSnapshotKey(location string) string {
	return fmt.Sprintf("room-%s.json", location)
}

// SocialMedia is the fixed-shape set of speaker links we recognise.
type SocialMedia struct {
	Twitter  *string `json:"twitter"`
	LinkedIn *string `json:"linkedin"`
	Company  *string `json:"company"`
}

// IsEmpty reports whether no link was recognised.
func (s SocialMedia) IsEmpty() bool {
	return s.Twitter == nil && s.LinkedIn == nil && s.Company == nil
}

// Speaker is a resolved session speaker.
type Speaker struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	AvatarURL   *string      `json:"avatarUrl"`
	Company     *string      `json:"company"`
	Bio         *string      `json:"bio"`
	Nationality *string      `json:"nationality"`
	SocialMedia *SocialMedia `json:"socialMedia"`
}

// Session is the canonical agenda entry. Optional fields are pointers so they
// serialize as null, which keeps snapshots and digests stable across runs.
type Session struct {
	ID                  string    `json:"id"`
	Name                *string   `json:"name"`
	Description         *string   `json:"description"`
	ExtendedDescription *string   `json:"extendedDescription"`
	Speakers            []Speaker `json:"speakers"`
	Time                string    `json:"time"`
	DateStart           string    `json:"dateStart"`
	DateEnd             string    `json:"dateEnd"`
	Duration            int       `json:"duration"`
	Location            string    `json:"location"`
	Nationality         *string   `json:"nationality"`
	Level               *string   `json:"level"`
	Language            *string   `json:"language"`
	Category            *string   `json:"category"`
	Capacity            *int      `json:"capacity"`
	Status              *string   `json:"status"`
	LiveURL             *string   `json:"liveUrl"`
	RecordingURL        *string   `json:"recordingUrl"`
}

// AgendaData is the full, unpartitioned agenda for the event.
type AgendaData struct {
	Sessions []Session `json:"sessions"`
}

// RoomAgendaData is the agenda of a single room.
type RoomAgendaData struct {
	Location string    `json:"location"`
	Sessions []Session `json:"sessions"`
}

// HashRecord is the last-known-good digest of a partition.
type HashRecord struct {
	PartitionKey string    `json:"partitionKey"`
	Hash         string    `json:"hash"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// StringPtr returns nil for empty strings, mirroring how the feed treats
// blank values as absent.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
