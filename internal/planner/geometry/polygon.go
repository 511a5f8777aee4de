package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ============================================================
// Polygon helpers
// ============================================================

var (
	ErrTooFewVertices   = errors.New("polygon needs at least 3 vertices")
	ErrZeroLengthEdge   = errors.New("polygon has a zero-length edge")
	ErrNotAxisAligned   = errors.New("polygon edge is not axis-aligned")
	ErrSelfIntersecting = errors.New("polygon edges intersect")
	ErrZeroArea         = errors.New("polygon has no area")
	ErrWinding          = errors.New("polygon is not clockwise")
)

// touchTolerance: допуск касания несмежных рёбер; координаты прижаты к Snap, так что хватает малого.
const touchTolerance = 1e-7

// Ring переводит контур комнаты в замкнутое кольцо orb (z идёт во вторую координату).
func Ring(vertices []Point) orb.Ring {
	ring := make(orb.Ring, 0, len(vertices)+1)
	for _, p := range vertices {
		ring = append(ring, orb.Point{p.X, p.Z})
	}
	if len(ring) > 0 {
		ring = append(ring, ring[0])
	}
	return ring
}

// IsClockwise проверяет обход по часовой стрелке на экране (x вправо, z вниз).
// Ось z направлена вниз, поэтому экранный обход по часовой соответствует CCW в терминах orb.
func IsClockwise(vertices []Point) bool {
	return Ring(vertices).Orientation() == orb.CCW
}

// Area: площадь контура без знака; знак planar.Area зависит от направления обхода.
func Area(vertices []Point) float64 {
	return math.Abs(planar.Area(Ring(vertices)))
}

func Bound(vertices []Point) orb.Bound {
	return Ring(vertices).Bound()
}

// EnsureClockwise возвращает копию контура, развернув его при обратном обходе.
func EnsureClockwise(vertices []Point) []Point {
	out := append([]Point(nil), vertices...)
	if Ring(out).Orientation() == orb.CW {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// ValidatePolygon проверяет инварианты комнаты: ≥3 вершин, осевые рёбра, простой контур, обход по часовой.
func ValidatePolygon(vertices []Point) error {
	n := len(vertices)
	if n < 3 {
		return fmt.Errorf("%w: got %d", ErrTooFewVertices, n)
	}

	for i := 0; i < n; i++ {
		a, b := vertices[i], vertices[(i+1)%n]
		if a.Equal(b) {
			return fmt.Errorf("%w: edge %d", ErrZeroLengthEdge, i)
		}
		if !Near(a.X, b.X) && !Near(a.Z, b.Z) {
			return fmt.Errorf("%w: edge %d (%v → %v)", ErrNotAxisAligned, i, a, b)
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			if segmentsTouch(vertices[i], vertices[(i+1)%n], vertices[j], vertices[(j+1)%n]) {
				return fmt.Errorf("%w: edges %d and %d", ErrSelfIntersecting, i, j)
			}
		}
	}

	if Area(vertices) < Epsilon*Epsilon {
		return ErrZeroArea
	}
	if !IsClockwise(vertices) {
		return ErrWinding
	}
	return nil
}

// segmentsTouch: для осевых отрезков пересечение совпадает с пересечением их bounding box.
func segmentsTouch(a1, a2, b1, b2 Point) bool {
	aMinX, aMaxX := NormalizedRange(a1.X, a2.X)
	aMinZ, aMaxZ := NormalizedRange(a1.Z, a2.Z)
	bMinX, bMaxX := NormalizedRange(b1.X, b2.X)
	bMinZ, bMaxZ := NormalizedRange(b1.Z, b2.Z)

	return math.Max(aMinX, bMinX) <= math.Min(aMaxX, bMaxX)+touchTolerance &&
		math.Max(aMinZ, bMinZ) <= math.Min(aMaxZ, bMaxZ)+touchTolerance
}

// ============================================================
// Normalization
// ============================================================

// Normalize убирает подряд идущие дубли (включая дубль замыкания) и средние вершины коллинеарных участков.
func Normalize(vertices []Point) []Point {
	out := dedupe(vertices)

	for len(out) >= 3 {
		idx := collinearIndex(out)
		if idx < 0 {
			break
		}
		out = append(out[:idx], out[idx+1:]...)
		out = dedupe(out)
	}
	return out
}

func dedupe(vertices []Point) []Point {
	out := make([]Point, 0, len(vertices))
	for _, p := range vertices {
		if len(out) > 0 && out[len(out)-1].Equal(p) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[len(out)-1].Equal(out[0]) {
		out = out[:len(out)-1]
	}
	return out
}

func collinearIndex(vertices []Point) int {
	n := len(vertices)
	for i := 0; i < n; i++ {
		prev, cur, next := vertices[(i-1+n)%n], vertices[i], vertices[(i+1)%n]
		if Near(prev.Z, cur.Z) && Near(cur.Z, next.Z) {
			return i
		}
		if Near(prev.X, cur.X) && Near(cur.X, next.X) {
			return i
		}
	}
	return -1
}
