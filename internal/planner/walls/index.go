package walls

import (
	"math"

	"floorplan/internal/planner/geometry"
	"floorplan/internal/planner/models"

	"github.com/dhconnelly/rtreego"
)

// ============================================================
// Wall picking index
// ============================================================

// minPickTolerance: минимальный радиус поиска, rtreego не принимает вырожденные прямоугольники.
const minPickTolerance = 1e-3

type Index struct {
	tree *rtreego.Rtree
}

type spatialWall struct {
	wall models.DerivedWall
	rect rtreego.Rect
}

func (s *spatialWall) Bounds() rtreego.Rect {
	return s.rect
}

// NewIndex строит R-дерево по «следам» стен: отрезок, расширенный на половину толщины стены.
func NewIndex(walls []models.DerivedWall) *Index {
	objs := make([]rtreego.Spatial, 0, len(walls))
	for _, w := range walls {
		rect, err := footprint(w)
		if err != nil {
			continue
		}
		objs = append(objs, &spatialWall{wall: w, rect: rect})
	}
	return &Index{tree: rtreego.NewTree(2, 25, 50, objs...)}
}

func footprint(w models.DerivedWall) (rtreego.Rect, error) {
	half := w.Type.Thickness() / 2
	minX, maxX := geometry.NormalizedRange(w.Start.X, w.End.X)
	minZ, maxZ := geometry.NormalizedRange(w.Start.Z, w.End.Z)
	return rtreego.NewRect(
		rtreego.Point{minX - half, minZ - half},
		[]float64{maxX - minX + 2*half, maxZ - minZ + 2*half},
	)
}

// WallAt возвращает ближайшую к точке стену, чей след попадает в радиус tolerance.
func (i *Index) WallAt(p geometry.Point, tolerance float64) (models.DerivedWall, bool) {
	tol := math.Max(tolerance, minPickTolerance)
	hits := i.tree.SearchIntersect(rtreego.Point{p.X, p.Z}.ToRect(tol))
	if len(hits) == 0 {
		return models.DerivedWall{}, false
	}

	var best *spatialWall
	bestDist := math.MaxFloat64
	for _, hit := range hits {
		sw := hit.(*spatialWall)
		d := sw.wall.DistanceTo(p)
		if d < bestDist || (d == bestDist && best != nil && sw.wall.ID < best.wall.ID) {
			best = sw
			bestDist = d
		}
	}
	return best.wall, true
}

func (i *Index) Size() int {
	return i.tree.Size()
}
