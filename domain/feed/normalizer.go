package feed

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"agenda-sync/domain/agenda"
	apperrors "agenda-sync/pkg/errors"
)

const (
	linkTypeTwitter  = "Twitter"
	linkTypeLinkedIn = "LinkedIn"
	linkTypeCompany  = "Company_Website"
)

// Timestamps arrive as local event time without a zone; zoned values are
// accepted as well.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// Normalizer converts feed payloads into canonical sessions.
type Normalizer struct {
	rules Rules
}

// NewNormalizer creates a normalizer with the given rules.
func NewNormalizer(rules Rules) *Normalizer {
	return &Normalizer{rules: rules}
}

// Normalize maps every raw session independently. Entries that did not
// decode or that miss their identity fields are reported in the returned
// error (one NormalizationError per entry, joined) while all valid entries
// are still returned.
func (n *Normalizer) Normalize(payload Payload) ([]agenda.Session, error) {
	maps := BuildLookupMaps(payload)

	sessions := make([]agenda.Session, 0, len(payload.Sessions))
	var errs []error

	for _, rejected := range payload.Rejected {
		if rejected.Collection != CollectionSessions {
			continue
		}
		var err error = apperrors.NewNormalizationError(rejected.ID, "malformed entry").WithCause(rejected.Err)
		if rejected.ID == "" {
			err = fmt.Errorf("entry #%d: %w", rejected.Index, err)
		}
		errs = append(errs, err)
	}

	for i, raw := range payload.Sessions {
		if n.rules.excluded(raw, maps.Room(raw.RoomID)) {
			continue
		}

		session, err := n.ToSession(raw, maps)
		if err != nil {
			if raw.ID == "" {
				err = fmt.Errorf("entry #%d: %w", i, err)
			}
			errs = append(errs, err)
			continue
		}
		sessions = append(sessions, session)
	}

	return sessions, errors.Join(errs...)
}

// ToSession converts one raw session using the payload's lookup maps.
func (n *Normalizer) ToSession(raw RawSession, maps LookupMaps) (agenda.Session, error) {
	entry := raw.ID.String()
	switch {
	case raw.ID == "":
		return agenda.Session{}, apperrors.NewNormalizationError(entry, "missing id")
	case raw.StartsAt == "":
		return agenda.Session{}, apperrors.NewNormalizationError(entry, "missing startsAt")
	case raw.EndsAt == "":
		return agenda.Session{}, apperrors.NewNormalizationError(entry, "missing endsAt")
	}

	start, err := parseTimestamp(raw.StartsAt)
	if err != nil {
		return agenda.Session{}, apperrors.NewNormalizationError(entry, "unparseable startsAt").WithCause(err)
	}
	end, err := parseTimestamp(raw.EndsAt)
	if err != nil {
		return agenda.Session{}, apperrors.NewNormalizationError(entry, "unparseable endsAt").WithCause(err)
	}

	speakers := make([]agenda.Speaker, 0, len(raw.Speakers))
	for _, speakerID := range raw.Speakers {
		rawSpeaker, ok := maps.Speaker(speakerID)
		if !ok {
			continue
		}
		speakers = append(speakers, n.toSpeaker(rawSpeaker, maps))
	}

	var nationality *string
	if len(speakers) > 0 {
		nationality = speakers[0].Nationality
	}

	location := maps.Room(raw.RoomID)

	description := agenda.StringPtr(raw.Description)
	extended := agenda.StringPtr(raw.ExtendedDescription)
	if extended == nil {
		extended = description
	}

	return agenda.Session{
		ID:                  entry,
		Name:                agenda.StringPtr(raw.Title),
		Description:         description,
		ExtendedDescription: extended,
		Speakers:            speakers,
		Time:                fmt.Sprintf("%s - %s", clockPart(raw.StartsAt), clockPart(raw.EndsAt)),
		DateStart:           raw.StartsAt,
		DateEnd:             raw.EndsAt,
		Duration:            int(math.Round(end.Sub(start).Minutes())),
		Location:            location,
		Nationality:         nationality,
		Level:               matchCategoryItems(raw.CategoryItems, maps, n.rules.LevelPatterns, n.rules.LevelTranslations),
		Language:            matchCategoryItems(raw.CategoryItems, maps, n.rules.LanguagePatterns, nil),
		Category:            matchCategoryItems(raw.CategoryItems, maps, n.rules.CategoryPatterns, nil),
		Capacity:            n.rules.capacity(location),
		Status:              agenda.StringPtr(raw.Status),
		LiveURL:             agenda.StringPtr(raw.LiveURL),
		RecordingURL:        agenda.StringPtr(raw.RecordingURL),
	}, nil
}

func (n *Normalizer) toSpeaker(raw RawSpeaker, maps LookupMaps) agenda.Speaker {
	name := raw.FullName
	if name == "" {
		name = strings.TrimSpace(raw.FirstName + " " + raw.LastName)
	}

	var social agenda.SocialMedia
	for _, link := range raw.Links {
		url := link.URL
		switch link.LinkType {
		case linkTypeTwitter:
			social.Twitter = &url
		case linkTypeLinkedIn:
			social.LinkedIn = &url
		case linkTypeCompany:
			social.Company = &url
		}
	}

	speaker := agenda.Speaker{
		ID:          raw.ID.String(),
		Name:        name,
		AvatarURL:   agenda.StringPtr(raw.ProfilePicture),
		Company:     agenda.StringPtr(raw.TagLine),
		Bio:         agenda.StringPtr(raw.Bio),
		Nationality: n.nationality(raw, maps),
	}
	if !social.IsEmpty() {
		speaker.SocialMedia = &social
	}
	return speaker
}

// nationality finds the answer to the nationality question. Answers such as
// "Mexico / USA" keep only the first country.
func (n *Normalizer) nationality(raw RawSpeaker, maps LookupMaps) *string {
	for _, qa := range raw.QuestionAnswers {
		label, ok := maps.Question(qa.QuestionID)
		if !ok || label != n.rules.NationalityQuestion {
			continue
		}
		value := qa.AnswerValue
		if i := strings.Index(value, "/"); i >= 0 {
			value = strings.TrimSpace(value[:i])
		}
		return agenda.StringPtr(value)
	}
	return nil
}

// matchCategoryItems collects, in declaration order, the names of the
// session's category items that contain one of the patterns. Each item is
// counted once. Several matches are joined with ", "; none yields nil.
func matchCategoryItems(items []FlexibleID, maps LookupMaps, patterns []string, translations map[string]string) *string {
	var matches []string
	for _, id := range items {
		name, ok := maps.CategoryItem(id)
		if !ok {
			continue
		}
		for _, pattern := range patterns {
			if pattern == "" || !strings.Contains(name, pattern) {
				continue
			}
			if translated, ok := translations[name]; ok {
				name = translated
			}
			matches = append(matches, name)
			break
		}
	}
	if len(matches) == 0 {
		return nil
	}
	joined := strings.Join(matches, ", ")
	return &joined
}

// clockPart returns the time-of-day half of an ISO timestamp as-is.
func clockPart(timestamp string) string {
	if i := strings.Index(timestamp, "T"); i >= 0 {
		return timestamp[i+1:]
	}
	return timestamp
}

func parseTimestamp(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
