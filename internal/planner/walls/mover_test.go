package walls

import (
	"testing"

	"floorplan/internal/planner/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveWall_SeedInteriorRightIsBlocked(t *testing.T) {
	rooms := seedRooms()
	before := rooms.Clone()

	id, err := MoveWall(rooms, "wall_v_4.500_0.000_6.000", models.Right)

	assert.ErrorIs(t, err, ErrBlocked)
	assert.Empty(t, id)
	assert.Equal(t, before, rooms)
}

func TestMoveWall_SharedFullEdgeMovesBothRooms(t *testing.T) {
	rooms := models.RoomMap{
		"room1": rectRoom("room1", 0, 0, 4.5, 6),
		"room2": rectRoom("room2", 4.5, 0, 9, 6),
	}

	id, err := MoveWall(rooms, "wall_v_4.500_0.000_6.000", models.Right)
	require.NoError(t, err)
	assert.Equal(t, "wall_v_4.600_0.000_6.000", id)

	assert.Equal(t, pts(0, 0, 4.6, 0, 4.6, 6, 0, 6), rooms["room1"].Vertices)
	assert.Equal(t, pts(4.6, 0, 9, 0, 9, 6, 4.6, 6), rooms["room2"].Vertices)

	moved := mustWall(t, DeriveWalls(rooms), id)
	assert.Equal(t, models.Interior, moved.Type)
	assert.Equal(t, []string{"room1", "room2"}, moved.RoomIDs)
}

func TestMoveWall_ExteriorTopOfRoom1Down(t *testing.T) {
	rooms := seedRooms()
	room2Before := rooms["room2"].Clone()

	id, err := MoveWall(rooms, "wall_h_0.000_0.000_4.500", models.Down)
	require.NoError(t, err)
	assert.Equal(t, "wall_h_0.300_0.000_4.500", id)

	assert.Equal(t, pts(0, 0.3, 4.5, 0.3, 4.5, 6, 0, 6), rooms["room1"].Vertices)
	assert.Equal(t, room2Before, rooms["room2"])

	walls := DeriveWalls(rooms)
	mustWall(t, walls, "wall_h_0.000_4.500_9.000")
	assert.Equal(t, models.Exterior, mustWall(t, walls, "wall_v_4.500_0.000_0.300").Type)
	assert.Equal(t, models.Interior, mustWall(t, walls, "wall_v_4.500_0.300_6.000").Type)
}

func TestMoveWall_ExteriorTopOfRoom2Up(t *testing.T) {
	rooms := seedRooms()

	id, err := MoveWall(rooms, "wall_h_0.000_4.500_9.000", models.Up)
	require.NoError(t, err)
	assert.Equal(t, "wall_h_-0.300_4.500_9.000", id)

	assert.Equal(t, pts(4.5, -0.3, 9, -0.3, 9, 9, 4.5, 9), rooms["room2"].Vertices)
	assert.Equal(t, seedRooms()["room1"], rooms["room1"])
}

func TestMoveWall_ExteriorLeftShrinksAdjoiningWalls(t *testing.T) {
	rooms := seedRooms()

	id, err := MoveWall(rooms, "wall_v_0.000_0.000_6.000", models.Right)
	require.NoError(t, err)
	assert.Equal(t, "wall_v_0.300_0.000_6.000", id)
	assert.Equal(t, pts(0.3, 0, 4.5, 0, 4.5, 6, 0.3, 6), rooms["room1"].Vertices)

	walls := DeriveWalls(rooms)
	top := mustWall(t, walls, "wall_h_0.000_0.300_4.500")
	assert.Equal(t, 0.3, top.Start.X)
	bottom := mustWall(t, walls, "wall_h_6.000_0.300_4.500")
	assert.Equal(t, 0.3, bottom.Start.X)

	_, stale := FindWall(walls, "wall_h_0.000_0.000_4.500")
	assert.False(t, stale)
}

func TestMoveWall_InteriorLeftInsertsStepInExpandingRoom(t *testing.T) {
	rooms := seedRooms()

	id, err := MoveWall(rooms, "wall_v_4.500_0.000_6.000", models.Left)
	require.NoError(t, err)
	assert.Equal(t, "wall_v_4.400_0.000_6.000", id)

	assert.Equal(t, pts(0, 0, 4.4, 0, 4.4, 6, 0, 6), rooms["room1"].Vertices)
	assert.Equal(t, pts(4.5, 9, 4.5, 6, 4.4, 6, 4.4, 0, 9, 0, 9, 9), rooms["room2"].Vertices)
	requireValidRooms(t, rooms)

	walls := DeriveWalls(rooms)
	shared := mustWall(t, walls, id)
	assert.Equal(t, models.Interior, shared.Type)
	assert.Equal(t, models.Exterior, mustWall(t, walls, "wall_h_6.000_4.400_4.500").Type)

	// обратный сдвиг убирает ступеньку
	back, err := MoveWall(rooms, id, models.Right)
	require.NoError(t, err)
	assert.Equal(t, "wall_v_4.500_0.000_6.000", back)
	assert.Equal(t, pts(0, 0, 4.5, 0, 4.5, 6, 0, 6), rooms["room1"].Vertices)
	assert.Equal(t, pts(4.5, 9, 4.5, 0, 9, 0, 9, 9), rooms["room2"].Vertices)
}

func TestMoveWall_ExteriorPartialEdgeCarvesNotch(t *testing.T) {
	rooms := seedRooms()

	id, err := MoveWall(rooms, "wall_v_4.500_6.000_9.000", models.Right)
	require.NoError(t, err)
	assert.Equal(t, "wall_v_4.800_6.000_9.000", id)

	assert.Equal(t, pts(4.8, 9, 4.8, 6, 4.5, 6, 4.5, 0, 9, 0, 9, 9), rooms["room2"].Vertices)
	requireValidRooms(t, rooms)

	walls := DeriveWalls(rooms)
	assert.Equal(t, models.Interior, mustWall(t, walls, "wall_v_4.500_0.000_6.000").Type)
	assert.Equal(t, models.Exterior, mustWall(t, walls, "wall_h_6.000_4.500_4.800").Type)
}

func TestMoveWall_TJunctionExpandingSideGetsStep(t *testing.T) {
	rooms := models.RoomMap{
		"a": rectRoom("a", 0, 0, 4, 6),
		"b": rectRoom("b", 4, 0, 8, 3),
		"c": rectRoom("c", 4, 3, 8, 6),
	}

	_, err := MoveWall(rooms, "wall_v_4.000_0.000_3.000", models.Left)
	assert.ErrorIs(t, err, ErrBlocked, "room a borders the wall only partially and would shrink")

	id, err := MoveWall(rooms, "wall_v_4.000_0.000_3.000", models.Right)
	require.NoError(t, err)
	assert.Equal(t, "wall_v_4.100_0.000_3.000", id)
	assert.Equal(t, pts(0, 0, 4.1, 0, 4.1, 3, 4, 3, 4, 6, 0, 6), rooms["a"].Vertices)
	assert.Equal(t, pts(4.1, 0, 8, 0, 8, 3, 4.1, 3), rooms["b"].Vertices)
	assert.Equal(t, pts(4, 3, 8, 3, 8, 6, 4, 6), rooms["c"].Vertices)
	requireValidRooms(t, rooms)
}

func TestMoveWall_Validation(t *testing.T) {
	t.Run("unknown id", func(t *testing.T) {
		_, err := MoveWall(seedRooms(), "wall_v_1.000_0.000_1.000", models.Left)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("stale id after move", func(t *testing.T) {
		rooms := seedRooms()
		_, err := MoveWall(rooms, "wall_v_9.000_0.000_9.000", models.Right)
		require.NoError(t, err)
		_, err = MoveWall(rooms, "wall_v_9.000_0.000_9.000", models.Right)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("horizontal wall moved sideways", func(t *testing.T) {
		rooms := seedRooms()
		_, err := MoveWall(rooms, "wall_h_0.000_0.000_4.500", models.Left)
		assert.ErrorIs(t, err, ErrInvalidDirection)
		assert.Equal(t, seedRooms(), rooms)
	})

	t.Run("vertical wall moved up", func(t *testing.T) {
		_, err := MoveWall(seedRooms(), "wall_v_4.500_0.000_6.000", models.Up)
		assert.ErrorIs(t, err, ErrInvalidDirection)
	})

	t.Run("unknown direction", func(t *testing.T) {
		_, err := MoveWall(seedRooms(), "wall_v_4.500_0.000_6.000", models.Direction("north"))
		assert.ErrorIs(t, err, ErrInvalidDirection)
	})
}

func TestMoveWall_CollapsingRoomIsRejected(t *testing.T) {
	rooms := models.RoomMap{"thin": rectRoom("thin", 0, 0, 0.3, 6)}
	before := rooms.Clone()

	_, err := MoveWall(rooms, "wall_v_0.000_0.000_6.000", models.Right)

	assert.ErrorIs(t, err, ErrDegenerateResult)
	assert.Equal(t, before, rooms)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "moved", Outcome(nil))
	assert.Equal(t, "not_found", Outcome(ErrNotFound))
	assert.Equal(t, "invalid_direction", Outcome(ErrInvalidDirection))
	assert.Equal(t, "blocked", Outcome(ErrBlocked))
	assert.Equal(t, "degenerate", Outcome(ErrDegenerateResult))
	assert.Equal(t, "failed", Outcome(assert.AnError))
}
