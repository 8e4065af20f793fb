package agenda

// PartitionByRoom groups sessions by their resolved location in a single pass.
// Rooms are returned in first-seen order and sessions keep their input order.
// UnknownLocation is an ordinary partition. An empty location is folded into it.
func PartitionByRoom(sessions []Session) []RoomAgendaData {
	index := make(map[string]int)
	rooms := make([]RoomAgendaData, 0)

	for _, session := range sessions {
		location := session.Location
		if location == "" {
			location = UnknownLocation
		}

		i, ok := index[location]
		if !ok {
			i = len(rooms)
			index[location] = i
			rooms = append(rooms, RoomAgendaData{Location: location})
		}
		rooms[i].Sessions = append(rooms[i].Sessions, session)
	}

	return rooms
}
