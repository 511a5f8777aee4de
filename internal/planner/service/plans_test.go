package service

import (
	"testing"

	"floorplan/internal/planner/building"
	"floorplan/internal/planner/geometry"
	"floorplan/internal/planner/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanStore_Lifecycle(t *testing.T) {
	store := NewPlanStore()

	id, state := store.Create()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, building.Seed(), state.Rooms())

	got, err := store.Get(id)
	require.NoError(t, err)
	assert.Same(t, state, got)
	assert.Equal(t, []string{id}, store.IDs())

	require.NoError(t, store.Delete(id))
	_, err = store.Get(id)
	assert.ErrorIs(t, err, ErrPlanNotFound)
	assert.ErrorIs(t, store.Delete(id), ErrPlanNotFound)
	assert.Empty(t, store.IDs())
}

func TestPlanStore_PlansAreIndependent(t *testing.T) {
	store := NewPlanStore()
	idA, a := store.Create()
	idB, b := store.Create()
	require.NotEqual(t, idA, idB)

	_, err := a.MoveWall("wall_v_9.000_0.000_9.000", models.Right)
	require.NoError(t, err)

	assert.NotEqual(t, a.Rooms(), b.Rooms())
	assert.Equal(t, building.Seed(), b.Rooms())
}

func TestPlanStore_CreateWithRooms(t *testing.T) {
	store := NewPlanStore()

	_, state, err := store.CreateWithRooms(models.RoomMap{
		"box": {ID: "box", Name: "Box", Vertices: []geometry.Point{{X: 0, Z: 0}, {X: 3, Z: 0}, {X: 3, Z: 3}, {X: 0, Z: 3}}},
	})
	require.NoError(t, err)
	assert.Len(t, state.Walls(), 4)

	_, _, err = store.CreateWithRooms(models.RoomMap{})
	assert.ErrorIs(t, err, building.ErrEmptyPlan)
	assert.Len(t, store.IDs(), 1)
}
