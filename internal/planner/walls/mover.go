package walls

import (
	"errors"
	"fmt"

	"floorplan/internal/planner/geometry"
	"floorplan/internal/planner/models"
)

// ============================================================
// Errors
// ============================================================

var (
	ErrNotFound         = errors.New("wall not found")
	ErrInvalidDirection = errors.New("direction does not match wall orientation")
	ErrBlocked          = errors.New("wall move blocked by corner-safety constraint")
	ErrDegenerateResult = errors.New("wall move produces an invalid room")
)

// Outcome переводит результат сдвига в метку для журнала и API.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "moved"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidDirection):
		return "invalid_direction"
	case errors.Is(err, ErrBlocked):
		return "blocked"
	case errors.Is(err, ErrDegenerateResult):
		return "degenerate"
	}
	return "failed"
}

// ============================================================
// Wall Mover
// ============================================================

// MoveWall сдвигает стену wallID на один шаг в направлении dir и возвращает новый id стены.
// Транзакция: проверки и угловое ограничение выполняются до изменений, новые контуры
// собираются на копиях и записываются в rooms только если все они корректны.
func MoveWall(rooms models.RoomMap, wallID string, dir models.Direction) (string, error) {
	wall, ok := FindWall(DeriveWalls(rooms), wallID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, wallID)
	}
	if !dir.Fits(wall.Orientation) {
		return "", fmt.Errorf("%w: %s wall cannot move %q", ErrInvalidDirection, wall.Orientation, dir)
	}

	delta := dir.Sign() * wall.Type.Step()
	position := wall.Position()
	target := geometry.Snap(position + delta)
	start, end := wall.Range()

	type affected struct {
		room *models.Room
		run  boundaryRun
	}
	var owners []affected
	for _, roomID := range wall.RoomIDs {
		room, ok := rooms[roomID]
		if !ok {
			continue
		}
		run, ok := runOnLine(room, wall.Orientation, position, start, end)
		if !ok {
			continue
		}
		owners = append(owners, affected{room: room, run: run})
	}

	if wall.Type == models.Interior {
		for _, o := range owners {
			shrinking := float64(o.run.interiorSide()) == dir.Sign()
			if shrinking && !o.run.matches(start, end) {
				return "", fmt.Errorf("%w: room %s only partially borders %s", ErrBlocked, o.room.ID, wallID)
			}
		}
	}

	staged := make(map[string][]geometry.Point, len(owners))
	for _, o := range owners {
		var vertices []geometry.Point
		if o.run.matches(start, end) {
			vertices = shiftRun(o.room.Vertices, o.run, target)
		} else {
			vertices = insertStep(o.room.Vertices, o.run, start, end, target)
		}

		vertices = geometry.Normalize(vertices)
		if err := geometry.ValidatePolygon(vertices); err != nil {
			return "", fmt.Errorf("%w: room %s: %v", ErrDegenerateResult, o.room.ID, err)
		}
		staged[o.room.ID] = vertices
	}

	for id, vertices := range staged {
		rooms[id].Vertices = vertices
	}

	return relocate(DeriveWalls(rooms), wall, target), nil
}

// shiftRun: полное совпадение: весь участок переносится на новую координату линии.
func shiftRun(vertices []geometry.Point, run boundaryRun, target float64) []geometry.Point {
	out := append([]geometry.Point(nil), vertices...)
	n := len(out)
	for k := 0; k < run.vertexCount(n); k++ {
		i := (run.first + k) % n
		if run.orientation == geometry.Horizontal {
			out[i].Z = target
		} else {
			out[i].X = target
		}
	}
	return out
}

// insertStep: частичное совпадение: участок заменяется ступенькой
// (неподвижное начало, угол, сдвинутый отрезок, угол, неподвижный хвост) в порядке обхода.
func insertStep(vertices []geometry.Point, run boundaryRun, start, end, target float64) []geometry.Point {
	n := len(vertices)
	o := run.orientation
	p := run.fixed

	step := []geometry.Point{geometry.OnLine(o, run.min, p)}
	if start > run.min+geometry.Epsilon {
		step = append(step, geometry.OnLine(o, start, p))
	}
	step = append(step, geometry.OnLine(o, start, target), geometry.OnLine(o, end, target))
	if end < run.max-geometry.Epsilon {
		step = append(step, geometry.OnLine(o, end, p))
	}
	step = append(step, geometry.OnLine(o, run.max, p))

	if run.dir < 0 {
		for i, j := 0, len(step)-1; i < j; i, j = i+1, j-1 {
			step[i], step[j] = step[j], step[i]
		}
	}
	step[0] = vertices[run.first]
	step[len(step)-1] = vertices[run.last]

	count := run.vertexCount(n)
	if run.first+count <= n {
		out := make([]geometry.Point, 0, n+len(step))
		out = append(out, vertices[:run.first]...)
		out = append(out, step...)
		return append(out, vertices[run.first+count:]...)
	}

	// участок проходит через нулевой индекс, собираем контур, начиная с него
	out := make([]geometry.Point, 0, n+len(step))
	out = append(out, step...)
	for k := count; k < n; k++ {
		out = append(out, vertices[(run.first+k)%n])
	}
	return out
}

// relocate ищет стену на новой позиции: сначала точное совпадение диапазона,
// затем стену на новой линии, содержащую диапазон; иначе возвращает исходный id.
func relocate(walls []models.DerivedWall, moved models.DerivedWall, target float64) string {
	start, end := moved.Range()
	id := WallID(moved.Orientation, target, start, end)
	if _, ok := FindWall(walls, id); ok {
		return id
	}

	for _, w := range walls {
		if w.Orientation != moved.Orientation || !geometry.Near(w.Position(), target) {
			continue
		}
		lo, hi := w.Range()
		if lo <= start+geometry.Epsilon && hi >= end-geometry.Epsilon {
			return w.ID
		}
	}
	return moved.ID
}
