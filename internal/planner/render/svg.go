package render

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"floorplan/internal/planner/building"
	"floorplan/internal/planner/geometry"
	"floorplan/internal/planner/models"

	"github.com/paulmach/orb"
)

const (
	roomStroke     = "#888"
	exteriorFill   = "#333"
	interiorFill   = "#999"
	selectedFill   = "#d62728"
	hoveredStroke  = "#1f77b4"
	emptyPlanSize  = 1.0
	hoverLineWidth = 0.04
)

// ============================================================
// Renderer
// ============================================================

type Renderer struct {
	// Padding: отступ вокруг плана в метрах.
	Padding float64
}

func NewRenderer() *Renderer {
	return &Renderer{Padding: models.ExteriorThickness}
}

// Render собирает SVG плана в метрах: контуры комнат и стены толщиной по типу.
// Выбранная стена заливается красным, подсвеченная обводится синим.
func (r *Renderer) Render(rooms models.RoomMap, walls []models.DerivedWall, sel building.Selection) (string, error) {
	if rooms == nil {
		return "", fmt.Errorf("rooms are nil")
	}

	bound := r.planBound(rooms)
	width := bound.Max.X() - bound.Min.X()
	height := bound.Max.Y() - bound.Min.Y()

	var elements []string
	elements = append(elements, r.renderRooms(rooms)...)
	elements = append(elements, r.renderWalls(walls, sel)...)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="%s %s %s %s">`,
		formatFloat(width), formatFloat(height),
		formatFloat(bound.Min.X()), formatFloat(bound.Min.Y()), formatFloat(width), formatFloat(height)))
	builder.WriteString("\n")

	for _, elem := range elements {
		builder.WriteString("  ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	return builder.String(), nil
}

// planBound: общий bounding box комнат с отступом; y в SVG соответствует z плана.
func (r *Renderer) planBound(rooms models.RoomMap) orb.Bound {
	var bound orb.Bound
	first := true
	for _, id := range rooms.SortedIDs() {
		if len(rooms[id].Vertices) == 0 {
			continue
		}
		b := geometry.Bound(rooms[id].Vertices)
		if first {
			bound, first = b, false
			continue
		}
		bound = bound.Union(b)
	}

	if first {
		bound = orb.Bound{Max: orb.Point{emptyPlanSize, emptyPlanSize}}
	}
	return bound.Pad(r.Padding)
}

// ============================================================
// Element renderers
// ============================================================

func (r *Renderer) renderRooms(rooms models.RoomMap) []string {
	var out []string

	for _, id := range rooms.SortedIDs() {
		room := rooms[id]
		if len(room.Vertices) < 3 {
			continue
		}

		var path strings.Builder
		path.WriteString(`<path id="`)
		path.WriteString(html.EscapeString(room.ID))
		path.WriteString(`" d="M `)
		path.WriteString(formatPoint(room.Vertices[0]))
		for _, p := range room.Vertices[1:] {
			path.WriteString(" L ")
			path.WriteString(formatPoint(p))
		}
		path.WriteString(` Z" fill="none" stroke="` + roomStroke + `" stroke-width="0.02">`)
		path.WriteString(`<title>` + html.EscapeString(room.Name) + `</title></path>`)

		out = append(out, path.String())
	}

	return out
}

func (r *Renderer) renderWalls(walls []models.DerivedWall, sel building.Selection) []string {
	var out []string

	for _, w := range walls {
		thickness := w.Type.Thickness()
		lo, hi := w.Range()
		pos := w.Position()

		var x, y, width, height float64
		if w.Orientation == geometry.Horizontal {
			x, y = lo, pos-thickness/2
			width, height = hi-lo, thickness
		} else {
			x, y = pos-thickness/2, lo
			width, height = thickness, hi-lo
		}

		fill := exteriorFill
		if w.Type == models.Interior {
			fill = interiorFill
		}
		if w.ID == sel.SelectedWallID {
			fill = selectedFill
		}

		stroke := `stroke="none"`
		if w.ID == sel.HoveredWallID {
			stroke = fmt.Sprintf(`stroke="%s" stroke-width="%s"`, hoveredStroke, formatFloat(hoverLineWidth))
		}

		out = append(out, fmt.Sprintf(`<rect id="%s" class="wall %s" x="%s" y="%s" width="%s" height="%s" fill="%s" %s />`,
			w.ID, w.Type, formatFloat(x), formatFloat(y), formatFloat(width), formatFloat(height), fill, stroke))
	}

	return out
}

// ============================================================
// Formatting helpers
// ============================================================

func formatFloat(val float64) string {
	v := geometry.Snap(val)
	if v == 0 {
		v = 0 // -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPoint(p geometry.Point) string {
	return formatFloat(p.X) + " " + formatFloat(p.Z)
}
