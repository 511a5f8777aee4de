package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"floorplan/internal/planner/geometry"
)

var (
	ErrEmptyOutline = errors.New("empty outline")
	ErrBadCommand   = errors.New("unsupported path command")
	ErrBadArguments = errors.New("bad path arguments")
)

// ============================================================
// Outline Parser
// ============================================================

// commandRe делит path на команду и её аргументы. Неподдерживаемые буквы
// тоже попадают в выборку, чтобы вернуть понятную ошибку; e/E остаются экспонентой.
var commandRe = regexp.MustCompile(`([A-DF-Za-df-z])([^A-DF-Za-df-z]*)`)

// ParseOutline разбирает контур комнаты в подмножестве SVG path (M, L, H, V, Z
// и их относительные формы). Ось y SVG трактуется как z плана.
// Повторы координат и точка замыкания отбрасываются.
func ParseOutline(d string) ([]geometry.Point, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return nil, ErrEmptyOutline
	}

	var points []geometry.Point
	var cur geometry.Point

	add := func(p geometry.Point) {
		cur = p
		if len(points) > 0 && points[len(points)-1].Equal(p) {
			return
		}
		points = append(points, p)
	}

	for _, match := range commandRe.FindAllStringSubmatch(d, -1) {
		cmd := match[1]
		coords, err := parseCoords(match[2])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cmd, err)
		}

		switch cmd {
		case "M", "L", "m", "l":
			if len(coords) == 0 || len(coords)%2 != 0 {
				return nil, fmt.Errorf("%w: %s expects coordinate pairs, got %d numbers", ErrBadArguments, cmd, len(coords))
			}
			relative := cmd == "m" || cmd == "l"
			for i := 0; i < len(coords); i += 2 {
				p := geometry.Point{X: coords[i], Z: coords[i+1]}
				if relative {
					p = geometry.Point{X: cur.X + p.X, Z: cur.Z + p.Z}
				}
				add(p)
			}

		case "H", "h":
			if len(coords) == 0 {
				return nil, fmt.Errorf("%w: %s expects a coordinate", ErrBadArguments, cmd)
			}
			for _, x := range coords {
				if cmd == "h" {
					x += cur.X
				}
				add(geometry.Point{X: x, Z: cur.Z})
			}

		case "V", "v":
			if len(coords) == 0 {
				return nil, fmt.Errorf("%w: %s expects a coordinate", ErrBadArguments, cmd)
			}
			for _, z := range coords {
				if cmd == "v" {
					z += cur.Z
				}
				add(geometry.Point{X: cur.X, Z: z})
			}

		case "Z", "z":
			if len(points) > 0 {
				cur = points[0]
			}

		default:
			return nil, fmt.Errorf("%w: %q", ErrBadCommand, cmd)
		}
	}

	for len(points) > 1 && points[len(points)-1].Equal(points[0]) {
		points = points[:len(points)-1]
	}
	return points, nil
}

func parseCoords(s string) ([]float64, error) {
	// Разделитель: запятая или пробел
	parts := strings.Fields(strings.ReplaceAll(s, ",", " "))

	coords := make([]float64, 0, len(parts))
	for _, part := range parts {
		val, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadArguments, part)
		}
		coords = append(coords, val)
	}
	return coords, nil
}
