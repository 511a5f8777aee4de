package walls

import (
	"testing"

	"floorplan/internal/planner/geometry"
	"floorplan/internal/planner/models"

	"github.com/stretchr/testify/require"
)

func pts(coords ...float64) []geometry.Point {
	out := make([]geometry.Point, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, geometry.Point{X: coords[i], Z: coords[i+1]})
	}
	return out
}

func rectRoom(id string, x0, z0, x1, z1 float64) *models.Room {
	return &models.Room{ID: id, Name: id, Vertices: pts(x0, z0, x1, z0, x1, z1, x0, z1)}
}

// seedRooms: L-образная планировка по умолчанию.
func seedRooms() models.RoomMap {
	return models.RoomMap{
		"room1": {ID: "room1", Name: "Room 1", Vertices: pts(0, 0, 4.5, 0, 4.5, 6, 0, 6)},
		"room2": {ID: "room2", Name: "Room 2", Vertices: pts(4.5, 0, 9, 0, 9, 9, 4.5, 9, 4.5, 6)},
	}
}

func mustWall(t *testing.T, walls []models.DerivedWall, id string) models.DerivedWall {
	t.Helper()
	w, ok := FindWall(walls, id)
	require.Truef(t, ok, "wall %s not derived; got %v", id, wallIDs(walls))
	return w
}

func wallIDs(walls []models.DerivedWall) []string {
	ids := make([]string, len(walls))
	for i, w := range walls {
		ids[i] = w.ID
	}
	return ids
}

func requireValidRooms(t *testing.T, rooms models.RoomMap) {
	t.Helper()
	for id, room := range rooms {
		require.NoErrorf(t, geometry.ValidatePolygon(room.Vertices), "room %s: %v", id, room.Vertices)
	}
}
