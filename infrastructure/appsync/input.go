package appsync

import "agenda-sync/domain/agenda"

// sessionInput mirrors the SessionInput type of the GraphQL schema. Zero
// durations and capacities are sent as null.
type sessionInput struct {
	ID                  string         `json:"id"`
	Name                *string        `json:"name"`
	Description         *string        `json:"description"`
	ExtendedDescription *string        `json:"extendedDescription"`
	Speakers            []speakerInput `json:"speakers"`
	Time                string         `json:"time"`
	DateStart           string         `json:"dateStart"`
	DateEnd             string         `json:"dateEnd"`
	Duration            *int           `json:"duration"`
	Location            *string        `json:"location"`
	Nationality         *string        `json:"nationality"`
	Level               *string        `json:"level"`
	Language            *string        `json:"language"`
	Category            *string        `json:"category"`
	Capacity            *int           `json:"capacity"`
	Status              *string        `json:"status"`
	LiveURL             *string        `json:"liveUrl"`
	RecordingURL        *string        `json:"recordingUrl"`
}

type speakerInput struct {
	ID          *string           `json:"id"`
	Name        string            `json:"name"`
	AvatarURL   *string           `json:"avatarUrl"`
	Company     *string           `json:"company"`
	Bio         *string           `json:"bio"`
	Nationality *string           `json:"nationality"`
	SocialMedia *socialMediaInput `json:"socialMedia"`
}

type socialMediaInput struct {
	Twitter  *string `json:"twitter"`
	LinkedIn *string `json:"linkedin"`
	Company  *string `json:"company"`
}

func toSessionInput(s agenda.Session) sessionInput {
	var speakers []speakerInput
	if s.Speakers != nil {
		speakers = make([]speakerInput, 0, len(s.Speakers))
		for _, sp := range s.Speakers {
			speakers = append(speakers, toSpeakerInput(sp))
		}
	}

	return sessionInput{
		ID:                  s.ID,
		Name:                s.Name,
		Description:         s.Description,
		ExtendedDescription: s.ExtendedDescription,
		Speakers:            speakers,
		Time:                s.Time,
		DateStart:           s.DateStart,
		DateEnd:             s.DateEnd,
		Duration:            nonZero(s.Duration),
		Location:            agenda.StringPtr(s.Location),
		Nationality:         s.Nationality,
		Level:               s.Level,
		Language:            s.Language,
		Category:            s.Category,
		Capacity:            positive(s.Capacity),
		Status:              s.Status,
		LiveURL:             s.LiveURL,
		RecordingURL:        s.RecordingURL,
	}
}

func toSpeakerInput(sp agenda.Speaker) speakerInput {
	in := speakerInput{
		ID:          agenda.StringPtr(sp.ID),
		Name:        sp.Name,
		AvatarURL:   sp.AvatarURL,
		Company:     sp.Company,
		Bio:         sp.Bio,
		Nationality: sp.Nationality,
	}
	if sp.SocialMedia != nil {
		in.SocialMedia = &socialMediaInput{
			Twitter:  sp.SocialMedia.Twitter,
			LinkedIn: sp.SocialMedia.LinkedIn,
			Company:  sp.SocialMedia.Company,
		}
	}
	return in
}

func nonZero(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func positive(v *int) *int {
	if v == nil || *v == 0 {
		return nil
	}
	return v
}
