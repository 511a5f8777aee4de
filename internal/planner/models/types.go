package models

import (
	"fmt"
	"math"
	"sort"

	"floorplan/internal/planner/geometry"
)

// ============================================================
// Rooms
// ============================================================

type Room struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Vertices []geometry.Point `json:"vertices"`
}

func (r *Room) Clone() *Room {
	return &Room{
		ID:       r.ID,
		Name:     r.Name,
		Vertices: append([]geometry.Point(nil), r.Vertices...),
	}
}

// RoomMap: хранилище комнат: id → контур.
type RoomMap map[string]*Room

func (m RoomMap) Clone() RoomMap {
	out := make(RoomMap, len(m))
	for id, room := range m {
		out[id] = room.Clone()
	}
	return out
}

func (m RoomMap) SortedIDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ============================================================
// Walls
// ============================================================

type WallType string

const (
	Exterior WallType = "exterior"
	Interior WallType = "interior"
)

const (
	ExteriorStep      = 0.3
	InteriorStep      = 0.1
	ExteriorThickness = 0.3
	InteriorThickness = 0.1
	WallHeight        = 2.7
)

// Step: шаг сдвига стены данного типа.
func (t WallType) Step() float64 {
	if t == Interior {
		return InteriorStep
	}
	return ExteriorStep
}

func (t WallType) Thickness() float64 {
	if t == Interior {
		return InteriorThickness
	}
	return ExteriorThickness
}

type DerivedWall struct {
	ID          string               `json:"id"`
	Type        WallType             `json:"type"`
	Orientation geometry.Orientation `json:"orientation"`
	Start       geometry.Point       `json:"start"`
	End         geometry.Point       `json:"end"`
	RoomIDs     []string             `json:"roomIds"`
}

// Position: координата линии стены (z для горизонтальных, x для вертикальных).
func (w DerivedWall) Position() float64 {
	return w.Start.Fixed(w.Orientation)
}

func (w DerivedWall) Range() (float64, float64) {
	return geometry.NormalizedRange(w.Start.Along(w.Orientation), w.End.Along(w.Orientation))
}

func (w DerivedWall) Length() float64 {
	lo, hi := w.Range()
	return hi - lo
}

func (w DerivedWall) HasRoom(id string) bool {
	for _, roomID := range w.RoomIDs {
		if roomID == id {
			return true
		}
	}
	return false
}

// DistanceTo: расстояние от точки до отрезка стены.
func (w DerivedWall) DistanceTo(p geometry.Point) float64 {
	lo, hi := w.Range()
	along := math.Max(lo, math.Min(hi, p.Along(w.Orientation)))
	closest := geometry.OnLine(w.Orientation, along, w.Position())
	return math.Hypot(p.X-closest.X, p.Z-closest.Z)
}

// ============================================================
// Directions
// ============================================================

type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Up, Down, Left, Right:
		return d, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// Sign: up/left уменьшают координату, down/right увеличивают.
func (d Direction) Sign() float64 {
	switch d {
	case Up, Left:
		return -1
	case Down, Right:
		return 1
	}
	return 0
}

// Fits: горизонтальные стены двигаются только up/down, вертикальные left/right.
func (d Direction) Fits(o geometry.Orientation) bool {
	switch o {
	case geometry.Horizontal:
		return d == Up || d == Down
	case geometry.Vertical:
		return d == Left || d == Right
	}
	return false
}
