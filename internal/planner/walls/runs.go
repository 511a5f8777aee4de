package walls

import (
	"math"

	"floorplan/internal/planner/geometry"
	"floorplan/internal/planner/models"
)

// ============================================================
// Boundary runs
// ============================================================

// boundaryRun: максимальный коллинеарный участок контура комнаты, пройденный в одном направлении.
type boundaryRun struct {
	roomID      string
	orientation geometry.Orientation
	fixed       float64
	min         float64
	max         float64
	dir         int // +1: вдоль оси по возрастанию, -1: по убыванию
	first       int // индекс начальной вершины в порядке обхода
	last        int // индекс конечной вершины, может быть меньше first при переходе через 0
}

func (r boundaryRun) covers(start, end float64) bool {
	return r.min <= start+geometry.Epsilon && r.max >= end-geometry.Epsilon
}

func (r boundaryRun) matches(start, end float64) bool {
	return geometry.Near(r.min, start) && geometry.Near(r.max, end)
}

func (r boundaryRun) onLine(o geometry.Orientation, fixed float64) bool {
	return r.orientation == o && geometry.Near(r.fixed, fixed)
}

// interiorSide: с какой стороны линии лежит комната: -1 (меньшие координаты) или +1.
// При обходе по часовой стрелке (x вправо, z вниз) внутренность справа по ходу.
func (r boundaryRun) interiorSide() int {
	if r.orientation == geometry.Horizontal {
		return r.dir
	}
	return -r.dir
}

// vertexCount: сколько вершин контура входит в участок, включая оба конца.
func (r boundaryRun) vertexCount(n int) int {
	return (r.last-r.first+n)%n + 1
}

type edgeInfo struct {
	orientation geometry.Orientation
	fixed       float64
	dir         int
}

func describeEdge(a, b geometry.Point) edgeInfo {
	o := geometry.OrientationOf(a, b)
	dir := 1
	if b.Along(o) < a.Along(o) {
		dir = -1
	}
	return edgeInfo{orientation: o, fixed: a.Fixed(o), dir: dir}
}

func (e edgeInfo) continues(next edgeInfo) bool {
	return e.orientation == next.orientation && e.dir == next.dir && geometry.Near(e.fixed, next.fixed)
}

// roomRuns разбивает контур комнаты на участки. Обход начинается с угловой вершины,
// поэтому результат не зависит от того, какая вершина хранится первой.
func roomRuns(room *models.Room) []boundaryRun {
	vertices := room.Vertices
	n := len(vertices)
	if n < 2 {
		return nil
	}

	edges := make([]edgeInfo, n)
	for i := 0; i < n; i++ {
		edges[i] = describeEdge(vertices[i], vertices[(i+1)%n])
	}

	start := -1
	for i := 0; i < n; i++ {
		if !edges[(i-1+n)%n].continues(edges[i]) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	var runs []boundaryRun
	for k := 0; k < n; k++ {
		i := (start + k) % n
		a, b := vertices[i], vertices[(i+1)%n]
		if a.Equal(b) {
			continue
		}
		lo, hi := geometry.NormalizedRange(a.Along(edges[i].orientation), b.Along(edges[i].orientation))

		if len(runs) > 0 {
			cur := &runs[len(runs)-1]
			if cur.last == i && (edgeInfo{cur.orientation, cur.fixed, cur.dir}).continues(edges[i]) {
				cur.min = math.Min(cur.min, lo)
				cur.max = math.Max(cur.max, hi)
				cur.last = (i + 1) % n
				continue
			}
		}

		runs = append(runs, boundaryRun{
			roomID:      room.ID,
			orientation: edges[i].orientation,
			fixed:       edges[i].fixed,
			min:         lo,
			max:         hi,
			dir:         edges[i].dir,
			first:       i,
			last:        (i + 1) % n,
		})
	}
	return runs
}

// runOnLine находит участок комнаты на линии стены, покрывающий её диапазон.
func runOnLine(room *models.Room, o geometry.Orientation, fixed, start, end float64) (boundaryRun, bool) {
	for _, r := range roomRuns(room) {
		if r.onLine(o, fixed) && geometry.RangesOverlap(r.min, r.max, start, end) && r.covers(start, end) {
			return r, true
		}
	}
	return boundaryRun{}, false
}
