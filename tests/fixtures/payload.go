// Package fixtures builds schedule payloads and sessions for tests.
package fixtures

import (
	"agenda-sync/domain/agenda"
	"agenda-sync/domain/feed"
)

const (
	QuestionNationalityID = "43"
	CategoryLevelL100ID   = "101"
	CategoryLevelL300ID   = "103"
	CategoryEnglishID     = "201"
	CategorySpanishID     = "202"
	CategoryBreakoutID    = "301"
	CategoryLightningID   = "302"
)

// SessionOption customises a raw session.
type SessionOption func(*feed.RawSession)

// WithRoom sets the session's room id.
func WithRoom(id string) SessionOption {
	return func(s *feed.RawSession) { s.RoomID = feed.FlexibleID(id) }
}

// WithSpeakers sets the session's speaker ids.
func WithSpeakers(ids ...string) SessionOption {
	return func(s *feed.RawSession) {
		s.Speakers = nil
		for _, id := range ids {
			s.Speakers = append(s.Speakers, feed.FlexibleID(id))
		}
	}
}

// WithCategories sets the session's category item ids.
func WithCategories(ids ...string) SessionOption {
	return func(s *feed.RawSession) {
		s.CategoryItems = nil
		for _, id := range ids {
			s.CategoryItems = append(s.CategoryItems, feed.FlexibleID(id))
		}
	}
}

// WithTimes sets startsAt and endsAt.
func WithTimes(start, end string) SessionOption {
	return func(s *feed.RawSession) {
		s.StartsAt = start
		s.EndsAt = end
	}
}

// WithTitle sets the session title.
func WithTitle(title string) SessionOption {
	return func(s *feed.RawSession) { s.Title = title }
}

// AsServiceSession marks the session as a service session (breaks, lunch).
func AsServiceSession() SessionOption {
	return func(s *feed.RawSession) { s.IsServiceSession = true }
}

// RawSession returns a valid raw session in room "1" running 10:00-10:30.
func RawSession(id string, opts ...SessionOption) feed.RawSession {
	s := feed.RawSession{
		ID:          feed.FlexibleID(id),
		Title:       "Session " + id,
		Description: "About session " + id,
		StartsAt:    "2024-09-20T10:00:00",
		EndsAt:      "2024-09-20T10:30:00",
		RoomID:      "1",
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// RawSpeaker returns a speaker with a nationality answer and a Twitter link.
func RawSpeaker(id, fullName, nationality string) feed.RawSpeaker {
	sp := feed.RawSpeaker{
		ID:       feed.FlexibleID(id),
		FullName: fullName,
		TagLine:  "Engineer at Example",
		Bio:      "Speaker bio",
		Links: []feed.RawLink{
			{Title: "X (Twitter)", URL: "https://twitter.com/" + id, LinkType: "Twitter"},
		},
	}
	if nationality != "" {
		sp.QuestionAnswers = []feed.RawQuestionAnswer{
			{QuestionID: QuestionNationalityID, AnswerValue: nationality},
		}
	}
	return sp
}

// Payload returns a payload with two rooms, the standard questions and
// categories, and the given sessions and speakers.
func Payload(sessions []feed.RawSession, speakers ...feed.RawSpeaker) feed.Payload {
	return feed.Payload{
		Sessions: sessions,
		Speakers: speakers,
		Rooms: []feed.RawRoom{
			{ID: "1", Name: "Room A"},
			{ID: "2", Name: "Room B"},
		},
		Questions: []feed.RawQuestion{
			{ID: QuestionNationalityID, Question: "Nationality", QuestionType: "Short_Text"},
			{ID: "44", Question: "T-shirt size", QuestionType: "Short_Text"},
		},
		Categories: []feed.RawCategory{
			{ID: "10", Title: "Level", Items: []feed.RawCategoryItem{
				{ID: CategoryLevelL100ID, Name: "L100 (Beginner)"},
				{ID: CategoryLevelL300ID, Name: "L300 (Advanced)"},
			}},
			{ID: "20", Title: "Language", Items: []feed.RawCategoryItem{
				{ID: CategoryEnglishID, Name: "English"},
				{ID: CategorySpanishID, Name: "Spanish"},
			}},
			{ID: "30", Title: "Session format", Items: []feed.RawCategoryItem{
				{ID: CategoryBreakoutID, Name: "Breakout Session"},
				{ID: CategoryLightningID, Name: "Lightning Talk"},
			}},
		},
	}
}

// Session returns a canonical session for orchestrator and adapter tests.
func Session(id, location string) agenda.Session {
	return agenda.Session{
		ID:        id,
		Name:      agenda.StringPtr("Session " + id),
		Speakers:  []agenda.Speaker{},
		Time:      "10:00:00 - 10:30:00",
		DateStart: "2024-09-20T10:00:00",
		DateEnd:   "2024-09-20T10:30:00",
		Duration:  30,
		Location:  location,
	}
}
