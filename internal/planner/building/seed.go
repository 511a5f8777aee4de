package building

import (
	"floorplan/internal/planner/geometry"
	"floorplan/internal/planner/models"
)

// Seed возвращает L-образную планировку по умолчанию: Room 1 слева, Room 2 справа и ниже.
func Seed() models.RoomMap {
	return models.RoomMap{
		"room1": {
			ID:   "room1",
			Name: "Room 1",
			Vertices: []geometry.Point{
				{X: 0, Z: 0}, {X: 4.5, Z: 0}, {X: 4.5, Z: 6}, {X: 0, Z: 6},
			},
		},
		"room2": {
			ID:   "room2",
			Name: "Room 2",
			Vertices: []geometry.Point{
				{X: 4.5, Z: 0}, {X: 9, Z: 0}, {X: 9, Z: 9}, {X: 4.5, Z: 9}, {X: 4.5, Z: 6},
			},
		},
	}
}
