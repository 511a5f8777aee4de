package geometry

import (
	"math"
	"strconv"
)

// ============================================================
// Geometry primitives
// ============================================================

// Epsilon: допуск сравнения координат (в метрах), соответствует минимальному шагу стены.
const Epsilon = 1e-2

// snapScale: координаты после сдвига прижимаются к сетке 1/snapScale м (0.1 мм).
const snapScale = 1e4

type Point struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Equal сравнивает точки с допуском Epsilon.
func (p Point) Equal(q Point) bool {
	return Near(p.X, q.X) && Near(p.Z, q.Z)
}

func Near(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// OrientationOf определяет ориентацию ребра p1→p2. Ребро должно быть осевым.
func OrientationOf(p1, p2 Point) Orientation {
	if math.Abs(p1.Z-p2.Z) < Epsilon {
		return Horizontal
	}
	return Vertical
}

// Fixed возвращает координату, постоянную вдоль ребра заданной ориентации.
func (p Point) Fixed(o Orientation) float64 {
	if o == Horizontal {
		return p.Z
	}
	return p.X
}

// Along возвращает координату, меняющуюся вдоль ребра заданной ориентации.
func (p Point) Along(o Orientation) float64 {
	if o == Horizontal {
		return p.X
	}
	return p.Z
}

// OnLine строит точку на линии ориентации o: along по варьируемой оси, fixed по постоянной.
func OnLine(o Orientation, along, fixed float64) Point {
	if o == Horizontal {
		return Point{X: along, Z: fixed}
	}
	return Point{X: fixed, Z: along}
}

func NormalizedRange(a, b float64) (float64, float64) {
	if a > b {
		return b, a
	}
	return a, b
}

// RangesOverlap: строгое пересечение внутренностей двух отрезков с допуском.
func RangesOverlap(min1, max1, min2, max2 float64) bool {
	return max1 > min2+Epsilon && max2 > min1+Epsilon
}

// Snap прижимает координату к сетке 0.1 мм, чтобы повторные сдвиги не накапливали погрешность.
func Snap(v float64) float64 {
	return math.Round(v*snapScale) / snapScale
}

// FormatCoord форматирует координату с фиксированной точностью для идентификаторов стен.
func FormatCoord(v float64) string {
	if math.Abs(v) < 5e-4 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}
