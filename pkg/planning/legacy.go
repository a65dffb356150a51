package planning

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/moveplan/moveplan/pkg/collection"
)

// Room checklists used to be stored as one map of room to items, with ids only
// unique inside a room. The flat list scopes those ids by room.
func decodeLegacyRooms(raw []byte) ([]Item, error) {
	var rooms map[string][]Item
	if err := json.Unmarshal(raw, &rooms); err != nil {
		return nil, err
	}
	return flattenRooms(rooms), nil
}

func flattenRooms(rooms map[string][]Item) []Item {
	order := Rooms()
	for _, room := range slices.Sorted(maps.Keys(rooms)) {
		if !slices.Contains(order, room) {
			order = append(order, room)
		}
	}

	items := []Item{}
	for _, room := range order {
		for i, item := range rooms[room] {
			item.Room = room
			if item.ID == "" {
				item.ID = roomScopedID(room, i+1)
			} else {
				item.ID = collection.ID(room + "-" + string(item.ID))
			}
			items = append(items, item)
		}
	}
	return items
}

// DecodeRooms accepts either the flat item list or the legacy room map.
func DecodeRooms(raw []byte) ([]Item, error) {
	var flat []Item
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}
	items, err := decodeLegacyRooms(raw)
	if err != nil {
		return nil, fmt.Errorf("room data is neither a list nor a room map: %w", err)
	}
	return items, nil
}

func roomScopedID(room string, n int) collection.ID {
	return collection.ID(fmt.Sprintf("%s-%d", room, n))
}
