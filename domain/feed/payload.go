// Package feed models the Sessionize schedule payload and turns it into the
// canonical agenda model.
package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexibleID is an upstream identifier. Sessionize uses strings for session and
// speaker ids and numbers for rooms, questions and category items; both decode
// into the same string form so lookups do not depend on the JSON type.
type FlexibleID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("feed id must be a string or number: %w", err)
	}
	*id = FlexibleID(n.String())
	return nil
}

// String returns the identifier as a plain string.
func (id FlexibleID) String() string {
	return string(id)
}

// Payload is the raw "view/All" response of the schedule feed. Every field is
// treated as untrusted: absent or null values decode to zero values, and an
// entry that does not decode is set aside in Rejected instead of failing the
// whole payload.
type Payload struct {
	Sessions   []RawSession  `json:"sessions"`
	Speakers   []RawSpeaker  `json:"speakers"`
	Rooms      []RawRoom     `json:"rooms"`
	Questions  []RawQuestion `json:"questions"`
	Categories []RawCategory `json:"categories"`

	Rejected []RejectedEntry `json:"-"`
}

// Collection names used in RejectedEntry.
const (
	CollectionSessions   = "sessions"
	CollectionSpeakers   = "speakers"
	CollectionRooms      = "rooms"
	CollectionQuestions  = "questions"
	CollectionCategories = "categories"
)

// RejectedEntry is a payload entry whose JSON did not match the feed schema.
type RejectedEntry struct {
	Collection string
	Index      int
	ID         string
	Err        error
}

// UnmarshalJSON decodes each collection entry independently. Only a payload
// whose top-level shape is wrong is an error.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var raw struct {
		Sessions   []json.RawMessage `json:"sessions"`
		Speakers   []json.RawMessage `json:"speakers"`
		Rooms      []json.RawMessage `json:"rooms"`
		Questions  []json.RawMessage `json:"questions"`
		Categories []json.RawMessage `json:"categories"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out Payload
	out.Sessions = decodeEntries[RawSession](raw.Sessions, CollectionSessions, &out.Rejected)
	out.Speakers = decodeEntries[RawSpeaker](raw.Speakers, CollectionSpeakers, &out.Rejected)
	out.Rooms = decodeEntries[RawRoom](raw.Rooms, CollectionRooms, &out.Rejected)
	out.Questions = decodeEntries[RawQuestion](raw.Questions, CollectionQuestions, &out.Rejected)
	out.Categories = decodeEntries[RawCategory](raw.Categories, CollectionCategories, &out.Rejected)
	*p = out
	return nil
}

func decodeEntries[T any](entries []json.RawMessage, collection string, rejected *[]RejectedEntry) []T {
	if entries == nil {
		return nil
	}
	out := make([]T, 0, len(entries))
	for i, entry := range entries {
		var v T
		if err := json.Unmarshal(entry, &v); err != nil {
			*rejected = append(*rejected, RejectedEntry{
				Collection: collection,
				Index:      i,
				ID:         entryID(entry),
				Err:        err,
			})
			continue
		}
		out = append(out, v)
	}
	return out
}

// entryID recovers the id of an entry that failed to decode, if it has a
// usable one.
func entryID(entry json.RawMessage) string {
	var head struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(entry, &head); err != nil {
		return ""
	}
	var id FlexibleID
	if err := json.Unmarshal(head.ID, &id); err != nil {
		return ""
	}
	return id.String()
}

type RawSession struct {
	ID                  FlexibleID   `json:"id"`
	Title               string       `json:"title"`
	Description         string       `json:"description"`
	ExtendedDescription string       `json:"extendedDescription"`
	StartsAt            string       `json:"startsAt"`
	EndsAt              string       `json:"endsAt"`
	IsServiceSession    bool         `json:"isServiceSession"`
	IsPlenumSession     bool         `json:"isPlenumSession"`
	Speakers            []FlexibleID `json:"speakers"`
	CategoryItems       []FlexibleID `json:"categoryItems"`
	RoomID              FlexibleID   `json:"roomId"`
	LiveURL             string       `json:"liveUrl"`
	RecordingURL        string       `json:"recordingUrl"`
	Status              string       `json:"status"`
}

type RawSpeaker struct {
	ID              FlexibleID          `json:"id"`
	FirstName       string              `json:"firstName"`
	LastName        string              `json:"lastName"`
	FullName        string              `json:"fullName"`
	Bio             string              `json:"bio"`
	TagLine         string              `json:"tagLine"`
	ProfilePicture  string              `json:"profilePicture"`
	Links           []RawLink           `json:"links"`
	QuestionAnswers []RawQuestionAnswer `json:"questionAnswers"`
}

type RawLink struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	LinkType string `json:"linkType"`
}

type RawQuestionAnswer struct {
	QuestionID  FlexibleID `json:"questionId"`
	AnswerValue string     `json:"answerValue"`
}

type RawRoom struct {
	ID   FlexibleID `json:"id"`
	Name string     `json:"name"`
}

type RawQuestion struct {
	ID           FlexibleID `json:"id"`
	Question     string     `json:"question"`
	QuestionType string     `json:"questionType"`
}

type RawCategory struct {
	ID    FlexibleID        `json:"id"`
	Title string            `json:"title"`
	Items []RawCategoryItem `json:"items"`
}

type RawCategoryItem struct {
	ID   FlexibleID `json:"id"`
	Name string     `json:"name"`
}
