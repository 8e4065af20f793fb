package feed

import "agenda-sync/domain/agenda"

// LookupMaps are the per-payload indexes used to resolve foreign-key style
// references. They are rebuilt for every payload and never shared.
type LookupMaps struct {
	Speakers      map[string]RawSpeaker
	Rooms         map[string]string
	Questions     map[string]string
	CategoryItems map[string]string
}

// BuildLookupMaps indexes the payload in a single pass over each collection.
func BuildLookupMaps(payload Payload) LookupMaps {
	maps := LookupMaps{
		Speakers:      make(map[string]RawSpeaker, len(payload.Speakers)),
		Rooms:         make(map[string]string, len(payload.Rooms)),
		Questions:     make(map[string]string, len(payload.Questions)),
		CategoryItems: make(map[string]string),
	}

	for _, speaker := range payload.Speakers {
		maps.Speakers[speaker.ID.String()] = speaker
	}
	for _, room := range payload.Rooms {
		maps.Rooms[room.ID.String()] = room.Name
	}
	for _, question := range payload.Questions {
		maps.Questions[question.ID.String()] = question.Question
	}
	for _, category := range payload.Categories {
		for _, item := range category.Items {
			maps.CategoryItems[item.ID.String()] = item.Name
		}
	}

	return maps
}

// Room resolves a room id to its display name, or agenda.UnknownLocation.
func (m LookupMaps) Room(id FlexibleID) string {
	if name, ok := m.Rooms[id.String()]; ok && name != "" {
		return name
	}
	return agenda.UnknownLocation
}

// Speaker returns the raw speaker for id, if present.
func (m LookupMaps) Speaker(id FlexibleID) (RawSpeaker, bool) {
	speaker, ok := m.Speakers[id.String()]
	return speaker, ok
}

// CategoryItem returns the display name of a category item, if present.
func (m LookupMaps) CategoryItem(id FlexibleID) (string, bool) {
	name, ok := m.CategoryItems[id.String()]
	return name, ok
}

// Question returns the label of a question, if present.
func (m LookupMaps) Question(id FlexibleID) (string, bool) {
	label, ok := m.Questions[id.String()]
	return label, ok
}
