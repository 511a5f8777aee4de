package building

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"floorplan/internal/planner/geometry"
	"floorplan/internal/planner/models"
	"floorplan/internal/planner/walls"
)

var (
	ErrNoSelection = errors.New("no wall selected")
	ErrEmptyPlan   = errors.New("plan has no rooms")
	ErrInvalidRoom = errors.New("invalid room")
)

// ============================================================
// Building State
// ============================================================

// Selection: выбранная и подсвеченная стены; пустая строка означает «нет».
type Selection struct {
	SelectedWallID string `json:"selectedWallId"`
	HoveredWallID  string `json:"hoveredWallId"`
}

// Snapshot: согласованный срез состояния, снятый под одной блокировкой.
type Snapshot struct {
	Rooms     models.RoomMap       `json:"rooms"`
	Walls     []models.DerivedWall `json:"walls"`
	Selection Selection            `json:"selection"`
}

// State хранит комнаты одной планировки. Все чтения и изменения идут под mu,
// поэтому операции сдвига стены атомарны относительно друг друга.
type State struct {
	mu        sync.Mutex
	rooms     models.RoomMap
	selection Selection
}

// New создаёт состояние с планировкой по умолчанию.
func New() *State {
	return &State{rooms: Seed()}
}

// NewWithRooms принимает произвольный набор комнат. Контуры против часовой стрелки
// разворачиваются, остальные нарушения возвращаются как ErrInvalidRoom.
func NewWithRooms(rooms models.RoomMap) (*State, error) {
	if len(rooms) == 0 {
		return nil, ErrEmptyPlan
	}

	out := make(models.RoomMap, len(rooms))
	for _, id := range rooms.SortedIDs() {
		room := rooms[id].Clone()
		if room.ID == "" {
			room.ID = id
		}
		if room.ID != id {
			return nil, fmt.Errorf("%w: key %q holds room %q", ErrInvalidRoom, id, room.ID)
		}
		if len(room.Vertices) >= 3 {
			room.Vertices = geometry.EnsureClockwise(room.Vertices)
		}
		if err := geometry.ValidatePolygon(room.Vertices); err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrInvalidRoom, id, err)
		}
		out[id] = room
	}
	return &State{rooms: out}, nil
}

func (s *State) Rooms() models.RoomMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms.Clone()
}

func (s *State) Walls() []models.DerivedWall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return walls.DeriveWalls(s.rooms)
}

func (s *State) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Rooms:     s.rooms.Clone(),
		Walls:     walls.DeriveWalls(s.rooms),
		Selection: s.selection,
	}
}

// SelectedWall: выбранная стена. Если id больше не соответствует ни одной стене,
// считается, что ничего не выбрано.
func (s *State) SelectedWall() (models.DerivedWall, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(s.selection.SelectedWallID)
}

func (s *State) HoveredWall() (models.DerivedWall, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(s.selection.HoveredWallID)
}

func (s *State) lookup(id string) (models.DerivedWall, bool) {
	if id == "" {
		return models.DerivedWall{}, false
	}
	return walls.FindWall(walls.DeriveWalls(s.rooms), id)
}

// ============================================================
// Selection
// ============================================================

// SelectWall запоминает id без проверки: устаревший id просто ничего не выделяет.
func (s *State) SelectWall(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.SelectedWallID = id
}

func (s *State) ClearSelection() {
	s.SelectWall("")
}

func (s *State) SetHoveredWall(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.HoveredWallID = id
}

// PickWall ищет стену под точкой p в радиусе tolerance.
func (s *State) PickWall(p geometry.Point, tolerance float64) (models.DerivedWall, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return walls.NewIndex(walls.DeriveWalls(s.rooms)).WallAt(p, tolerance)
}

// HoverAt подсвечивает стену под точкой; промах снимает подсветку.
func (s *State) HoverAt(p geometry.Point, tolerance float64) (models.DerivedWall, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := walls.NewIndex(walls.DeriveWalls(s.rooms)).WallAt(p, tolerance)
	s.selection.HoveredWallID = w.ID
	return w, ok
}

// SelectAt выбирает стену под точкой; промах снимает выделение.
func (s *State) SelectAt(p geometry.Point, tolerance float64) (models.DerivedWall, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := walls.NewIndex(walls.DeriveWalls(s.rooms)).WallAt(p, tolerance)
	s.selection.SelectedWallID = w.ID
	return w, ok
}

// ============================================================
// Mutations
// ============================================================

// MoveWall сдвигает стену и возвращает её новый id. Выделение не меняется.
func (s *State) MoveWall(id string, dir models.Direction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	newID, err := walls.MoveWall(s.rooms, id, dir)
	if err != nil {
		return "", err
	}
	log.Printf("[BUILDING] moved %s %s -> %s", id, dir, newID)
	return newID, nil
}

// MoveSelectedWall сдвигает выбранную стену и возвращает id, который был выбран
// на момент сдвига, и новый id. При успехе выделение переходит на новый id.
func (s *State) MoveSelectedWall(dir models.Direction) (movedID, newID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	movedID = s.selection.SelectedWallID
	if movedID == "" {
		return "", "", ErrNoSelection
	}

	newID, err = walls.MoveWall(s.rooms, movedID, dir)
	if err != nil {
		return movedID, "", err
	}
	s.selection.SelectedWallID = newID
	log.Printf("[BUILDING] moved selected %s %s -> %s", movedID, dir, newID)
	return movedID, newID, nil
}

// Reset возвращает планировку по умолчанию и сбрасывает выделение и подсветку.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms = Seed()
	s.selection = Selection{}
}
