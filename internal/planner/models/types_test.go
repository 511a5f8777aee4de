package models

import (
	"testing"

	"floorplan/internal/planner/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"up", "down", "left", "right"} {
		d, err := ParseDirection(s)
		require.NoError(t, err)
		assert.Equal(t, Direction(s), d)
	}

	_, err := ParseDirection("north")
	assert.Error(t, err)
}

func TestDirectionSignAndFits(t *testing.T) {
	assert.Equal(t, -1.0, Up.Sign())
	assert.Equal(t, -1.0, Left.Sign())
	assert.Equal(t, 1.0, Down.Sign())
	assert.Equal(t, 1.0, Right.Sign())
	assert.Equal(t, 0.0, Direction("north").Sign())

	assert.True(t, Up.Fits(geometry.Horizontal))
	assert.True(t, Down.Fits(geometry.Horizontal))
	assert.False(t, Left.Fits(geometry.Horizontal))
	assert.True(t, Right.Fits(geometry.Vertical))
	assert.False(t, Down.Fits(geometry.Vertical))
}

func TestWallTypeConstants(t *testing.T) {
	assert.Equal(t, 0.3, Exterior.Step())
	assert.Equal(t, 0.1, Interior.Step())
	assert.Equal(t, 0.3, Exterior.Thickness())
	assert.Equal(t, 0.1, Interior.Thickness())
}

func TestDerivedWallGeometry(t *testing.T) {
	w := DerivedWall{
		Orientation: geometry.Vertical,
		Start:       geometry.Point{X: 4.5, Z: 6},
		End:         geometry.Point{X: 4.5, Z: 0},
		RoomIDs:     []string{"room1", "room2"},
	}

	lo, hi := w.Range()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 6.0, hi)
	assert.Equal(t, 4.5, w.Position())
	assert.Equal(t, 6.0, w.Length())
	assert.True(t, w.HasRoom("room2"))
	assert.False(t, w.HasRoom("room3"))

	assert.InDelta(t, 1.0, w.DistanceTo(geometry.Point{X: 5.5, Z: 3}), 1e-9)
	assert.InDelta(t, 5.0, w.DistanceTo(geometry.Point{X: 7.5, Z: 10}), 1e-9)
}

func TestRoomMapCloneIsDeep(t *testing.T) {
	m := RoomMap{
		"b": {ID: "b", Vertices: []geometry.Point{{X: 0, Z: 0}}},
		"a": {ID: "a", Vertices: []geometry.Point{{X: 1, Z: 1}}},
	}
	c := m.Clone()
	c["a"].Vertices[0].X = 42

	assert.Equal(t, 1.0, m["a"].Vertices[0].X)
	assert.Equal(t, []string{"a", "b"}, m.SortedIDs())
}
