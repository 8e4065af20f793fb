package feed

import (
	"sort"
	"strings"
)

// Rules tune how the normalizer reads a particular event's feed. The zero
// value is not useful; start from DefaultRules.
type Rules struct {
	// Substring literals tested against category-item names.
	LevelPatterns    []string `yaml:"level_patterns"`
	LanguagePatterns []string `yaml:"language_patterns"`
	CategoryPatterns []string `yaml:"category_patterns"`

	// LevelTranslations renames matched level items, e.g. "L100 (Beginner)" -> "Principiante".
	LevelTranslations map[string]string `yaml:"level_translations"`

	// NationalityQuestion is the question label whose answer holds a speaker's nationality.
	NationalityQuestion string `yaml:"nationality_question"`

	ExcludeServiceSessions bool     `yaml:"exclude_service_sessions"`
	ExcludedSessionIDs     []string `yaml:"excluded_session_ids"`
	ExcludedTitleKeywords  []string `yaml:"excluded_title_keywords"`
	ExcludedRoomKeywords   []string `yaml:"excluded_room_keywords"`

	// RoomCapacities maps lower-case room-name keywords to seat estimates.
	RoomCapacities  map[string]int `yaml:"room_capacities"`
	DefaultCapacity int            `yaml:"default_capacity"`
}

// DefaultRules returns the matching behaviour the agenda has always had.
func DefaultRules() Rules {
	return Rules{
		LevelPatterns:          []string{"L"},
		LanguagePatterns:       []string{"English", "Spanish"},
		CategoryPatterns:       []string{"Breakout", "Lightning"},
		NationalityQuestion:    "Nationality",
		ExcludeServiceSessions: true,
	}
}

// excluded reports whether a raw session is dropped before normalization.
func (r Rules) excluded(raw RawSession, roomName string) bool {
	if r.ExcludeServiceSessions && raw.IsServiceSession {
		return true
	}
	for _, id := range r.ExcludedSessionIDs {
		if raw.ID.String() == id {
			return true
		}
	}
	for _, keyword := range r.ExcludedTitleKeywords {
		if keyword != "" && strings.Contains(raw.Title, keyword) {
			return true
		}
	}
	room := strings.ToLower(roomName)
	for _, keyword := range r.ExcludedRoomKeywords {
		if keyword != "" && strings.Contains(room, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// capacity estimates a room's capacity from its name. Keywords are tried in
// lexical order so the result does not depend on map iteration.
func (r Rules) capacity(roomName string) *int {
	room := strings.ToLower(roomName)

	keywords := make([]string, 0, len(r.RoomCapacities))
	for keyword := range r.RoomCapacities {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)

	for _, keyword := range keywords {
		if keyword != "" && strings.Contains(room, strings.ToLower(keyword)) {
			c := r.RoomCapacities[keyword]
			return &c
		}
	}
	if r.DefaultCapacity > 0 {
		c := r.DefaultCapacity
		return &c
	}
	return nil
}
