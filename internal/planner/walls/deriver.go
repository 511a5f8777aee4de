package walls

import (
	"sort"
	"strings"

	"floorplan/internal/planner/geometry"
	"floorplan/internal/planner/models"

	"github.com/zyedidia/generic/mapset"
)

// ============================================================
// Wall Deriver
// ============================================================

// DeriveWalls строит список стен из контуров комнат.
// Чистая функция: одинаковые контуры дают одинаковый (и одинаково упорядоченный) результат.
func DeriveWalls(rooms models.RoomMap) []models.DerivedWall {
	var runs []boundaryRun
	for _, id := range rooms.SortedIDs() {
		runs = append(runs, roomRuns(rooms[id])...)
	}
	if len(runs) == 0 {
		return nil
	}

	sort.Slice(runs, func(i, j int) bool {
		a, b := runs[i], runs[j]
		if a.orientation != b.orientation {
			return a.orientation < b.orientation
		}
		if a.fixed != b.fixed {
			return a.fixed < b.fixed
		}
		if a.min != b.min {
			return a.min < b.min
		}
		return a.roomID < b.roomID
	})

	var walls []models.DerivedWall
	for _, group := range groupByLine(runs) {
		walls = append(walls, deriveLine(group)...)
	}

	sort.SliceStable(walls, func(i, j int) bool {
		a, b := walls[i], walls[j]
		if a.Orientation != b.Orientation {
			return a.Orientation < b.Orientation
		}
		if pa, pb := a.Position(), b.Position(); pa != pb {
			return pa < pb
		}
		sa, _ := a.Range()
		sb, _ := b.Range()
		return sa < sb
	})
	return walls
}

// groupByLine объединяет участки, лежащие на одной бесконечной прямой. Вход отсортирован.
func groupByLine(runs []boundaryRun) [][]boundaryRun {
	var groups [][]boundaryRun
	begin := 0
	for i := 1; i <= len(runs); i++ {
		if i < len(runs) && runs[i].onLine(runs[begin].orientation, runs[begin].fixed) {
			continue
		}
		groups = append(groups, runs[begin:i])
		begin = i
	}
	return groups
}

func deriveLine(group []boundaryRun) []models.DerivedWall {
	orientation := group[0].orientation
	fixed := group[0].fixed

	points := make([]float64, 0, len(group)*2)
	for _, r := range group {
		points = append(points, r.min, r.max)
	}
	sort.Float64s(points)
	points = uniquePoints(points)

	var walls []models.DerivedWall
	for i := 0; i+1 < len(points); i++ {
		segStart, segEnd := points[i], points[i+1]

		positive := mapset.New[string]()
		negative := mapset.New[string]()
		covering := mapset.New[string]()
		for _, r := range group {
			if !r.covers(segStart, segEnd) {
				continue
			}
			covering.Put(r.roomID)
			if r.dir > 0 {
				positive.Put(r.roomID)
			} else {
				negative.Put(r.roomID)
			}
		}
		if covering.Size() == 0 {
			continue
		}

		// комната, покрывающая отрезок в обе стороны (самокасание), общей границей не считается
		covering.Each(func(id string) {
			if positive.Has(id) && negative.Has(id) {
				positive.Remove(id)
				negative.Remove(id)
			}
		})

		wallType := models.Exterior
		if facing(positive, negative) {
			wallType = models.Interior
		}

		walls = append(walls, models.DerivedWall{
			ID:          WallID(orientation, fixed, segStart, segEnd),
			Type:        wallType,
			Orientation: orientation,
			Start:       geometry.OnLine(orientation, segStart, fixed),
			End:         geometry.OnLine(orientation, segEnd, fixed),
			RoomIDs:     sortedKeys(covering),
		})
	}
	return walls
}

// facing: внутренности двух разных комнат смотрят друг на друга через линию.
func facing(positive, negative mapset.Set[string]) bool {
	found := false
	positive.Each(func(p string) {
		negative.Each(func(n string) {
			if p != n {
				found = true
			}
		})
	})
	return found
}

func sortedKeys(set mapset.Set[string]) []string {
	keys := make([]string, 0, set.Size())
	set.Each(func(k string) {
		keys = append(keys, k)
	})
	sort.Strings(keys)
	return keys
}

func uniquePoints(points []float64) []float64 {
	if len(points) == 0 {
		return points
	}
	out := points[:1]
	for i := 1; i < len(points); i++ {
		if !geometry.Near(points[i], out[len(out)-1]) {
			out = append(out, points[i])
		}
	}
	return out
}

// ============================================================
// Wall IDs
// ============================================================

// WallID кодирует геометрию стены: ориентацию, координату линии и диапазон.
// После сдвига стена получает новый id.
func WallID(o geometry.Orientation, fixed, start, end float64) string {
	prefix := "v"
	if o == geometry.Horizontal {
		prefix = "h"
	}
	start, end = geometry.NormalizedRange(start, end)
	return strings.Join([]string{
		"wall",
		prefix,
		geometry.FormatCoord(fixed),
		geometry.FormatCoord(start),
		geometry.FormatCoord(end),
	}, "_")
}

// FindWall ищет стену по id; промах означает «нет такой стены».
func FindWall(walls []models.DerivedWall, id string) (models.DerivedWall, bool) {
	for _, w := range walls {
		if w.ID == id {
			return w, true
		}
	}
	return models.DerivedWall{}, false
}
