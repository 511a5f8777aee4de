package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"floorplan/internal/planner/geometry"
	"floorplan/internal/planner/models"
)

// ============================================================
// XML Structures
// ============================================================

type svgDocument struct {
	XMLName xml.Name   `xml:"svg"`
	Rects   []svgRect  `xml:"rect"`
	Paths   []svgPath  `xml:"path"`
	Groups  []svgGroup `xml:"g"`
}

type svgGroup struct {
	Rects  []svgRect  `xml:"rect"`
	Paths  []svgPath  `xml:"path"`
	Groups []svgGroup `xml:"g"`
}

type svgRect struct {
	ID     string  `xml:"id,attr"`
	Label  string  `xml:"data-name,attr"`
	X      float64 `xml:"x,attr"`
	Y      float64 `xml:"y,attr"`
	Width  float64 `xml:"width,attr"`
	Height float64 `xml:"height,attr"`
}

type svgPath struct {
	ID    string `xml:"id,attr"`
	Label string `xml:"data-name,attr"`
	D     string `xml:"d,attr"`
}

// ============================================================
// Document Parser
// ============================================================

// ParseDocument импортирует комнаты из SVG: элементы <rect> и <path>, чей id
// выглядит как id комнаты (Room_*, *_room). Остальные элементы пропускаются.
// Координаты берутся как есть, в метрах.
func ParseDocument(r io.Reader) (models.RoomMap, error) {
	var doc svgDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode svg: %w", err)
	}

	rooms := models.RoomMap{}
	root := svgGroup{Rects: doc.Rects, Paths: doc.Paths, Groups: doc.Groups}
	if err := collectRooms(root, rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func collectRooms(doc svgGroup, rooms models.RoomMap) error {
	for _, rect := range doc.Rects {
		if !isRoomID(rect.ID) {
			continue
		}
		x1, z1 := rect.X+rect.Width, rect.Y+rect.Height
		if err := addRoom(rooms, rect.ID, rect.Label, []geometry.Point{
			{X: rect.X, Z: rect.Y}, {X: x1, Z: rect.Y}, {X: x1, Z: z1}, {X: rect.X, Z: z1},
		}); err != nil {
			return err
		}
	}

	for _, path := range doc.Paths {
		if !isRoomID(path.ID) {
			continue
		}
		vertices, err := ParseOutline(path.D)
		if err != nil {
			return fmt.Errorf("room %s: %w", path.ID, err)
		}
		if err := addRoom(rooms, path.ID, path.Label, vertices); err != nil {
			return err
		}
	}

	for _, g := range doc.Groups {
		if err := collectRooms(g, rooms); err != nil {
			return err
		}
	}
	return nil
}

func addRoom(rooms models.RoomMap, id, label string, vertices []geometry.Point) error {
	if _, dup := rooms[id]; dup {
		return fmt.Errorf("duplicate room id %q", id)
	}
	name := label
	if name == "" {
		name = id
	}
	rooms[id] = &models.Room{ID: id, Name: name, Vertices: vertices}
	return nil
}

func isRoomID(id string) bool {
	return strings.HasPrefix(id, "Room_") ||
		strings.HasSuffix(id, "_room") || // Hall_room, Toilet_room
		strings.HasSuffix(id, "_Room")
}
