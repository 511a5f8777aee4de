package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"

	"floorplan/internal/planner/building"
	"floorplan/internal/planner/geometry"
	"floorplan/internal/planner/models"
	"floorplan/internal/planner/parser"
	"floorplan/internal/planner/render"
	"floorplan/internal/planner/repository"
	"floorplan/internal/planner/service"
	"floorplan/internal/planner/walls"

	"github.com/gofiber/fiber/v3"
)

const (
	defaultPickTolerance = 0.15
	outcomeNoSelection   = "no_selection"
)

// Journal: журнал попыток сдвига стен.
type Journal interface {
	Record(ctx context.Context, e repository.Entry) (repository.Entry, error)
	ListByPlan(ctx context.Context, planID string, limit int) ([]repository.Entry, error)
}

// Notifier рассылает изменения планировки подписчикам ленты.
type Notifier interface {
	Publish(planID, eventType string, payload any)
	Close(planID string)
}

// ============================================================
// Plan Handler
// ============================================================

type PlanHandler struct {
	plans    *service.PlanStore
	journal  Journal
	feed     Notifier
	renderer *render.Renderer
}

func NewPlanHandler(plans *service.PlanStore, journal Journal, feed Notifier) *PlanHandler {
	return &PlanHandler{
		plans:    plans,
		journal:  journal,
		feed:     feed,
		renderer: render.NewRenderer(),
	}
}

// Register вешает маршруты планировок на группу api.
func (h *PlanHandler) Register(api fiber.Router) {
	api.Get("/plans", h.ListPlans)
	api.Post("/plans", h.CreatePlan)
	api.Post("/plans/import", h.ImportPlan)
	api.Get("/plans/:id", h.GetPlan)
	api.Delete("/plans/:id", h.DeletePlan)
	api.Get("/plans/:id/rooms", h.GetRooms)
	api.Get("/plans/:id/walls", h.GetWalls)
	api.Get("/plans/:id/walls/at", h.GetWallAt)
	api.Post("/plans/:id/selection", h.Select)
	api.Delete("/plans/:id/selection", h.ClearSelection)
	api.Post("/plans/:id/selection/move", h.MoveSelected)
	api.Post("/plans/:id/hover", h.Hover)
	api.Post("/plans/:id/moves", h.MoveWall)
	api.Get("/plans/:id/moves", h.ListMoves)
	api.Post("/plans/:id/reset", h.Reset)
	api.Get("/plans/:id/svg", h.GetSVG)
}

type roomPayload struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Outline  string           `json:"outline,omitempty"`
	Vertices []geometry.Point `json:"vertices,omitempty"`
}

type createPlanRequest struct {
	Rooms []roomPayload `json:"rooms"`
}

type planResponse struct {
	ID string `json:"id"`
	building.Snapshot
}

// pointerRequest: выбор стены по id либо по точке (x, z).
type pointerRequest struct {
	WallID    string   `json:"wallId"`
	X         *float64 `json:"x"`
	Z         *float64 `json:"z"`
	Tolerance float64  `json:"tolerance"`
}

type moveRequest struct {
	WallID    string `json:"wallId"`
	Direction string `json:"direction"`
}

type moveResponse struct {
	Moved   bool   `json:"moved"`
	WallID  string `json:"wallId"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

// ============================================================
// Plans
// ============================================================

func (h *PlanHandler) ListPlans(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"plans": h.plans.IDs()})
}

// CreatePlan открывает планировку: без тела по умолчанию, иначе из переданных комнат.
// Контур комнаты можно передать вершинами или строкой SVG path в поле outline.
func (h *PlanHandler) CreatePlan(c fiber.Ctx) error {
	if len(bytes.TrimSpace(c.Body())) == 0 {
		id, state := h.plans.Create()
		log.Printf("[PLANNER] Created default plan %s", id)
		return c.Status(fiber.StatusCreated).JSON(planResponse{ID: id, Snapshot: state.Snapshot()})
	}

	var req createPlanRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	rooms := models.RoomMap{}
	for _, p := range req.Rooms {
		if p.ID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "room id required"})
		}
		if _, dup := rooms[p.ID]; dup {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "duplicate room id " + p.ID})
		}

		vertices := p.Vertices
		if p.Outline != "" {
			parsed, err := parser.ParseOutline(p.Outline)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "room " + p.ID + ": " + err.Error()})
			}
			vertices = parsed
		}
		rooms[p.ID] = &models.Room{ID: p.ID, Name: p.Name, Vertices: vertices}
	}

	return h.createFromRooms(c, rooms)
}

// ImportPlan открывает планировку из SVG документа в теле запроса.
func (h *PlanHandler) ImportPlan(c fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "body required"})
	}

	rooms, err := parser.ParseDocument(bytes.NewReader(c.Body()))
	if err != nil {
		log.Printf("[PLANNER] Import error: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return h.createFromRooms(c, rooms)
}

func (h *PlanHandler) createFromRooms(c fiber.Ctx, rooms models.RoomMap) error {
	id, state, err := h.plans.CreateWithRooms(rooms)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	log.Printf("[PLANNER] Created plan %s with %d rooms", id, len(rooms))
	return c.Status(fiber.StatusCreated).JSON(planResponse{ID: id, Snapshot: state.Snapshot()})
}

func (h *PlanHandler) GetPlan(c fiber.Ctx) error {
	state, ok := h.lookup(c)
	if !ok {
		return planNotFound(c)
	}
	return c.JSON(planResponse{ID: c.Params("id"), Snapshot: state.Snapshot()})
}

func (h *PlanHandler) DeletePlan(c fiber.Ctx) error {
	id := c.Params("id")
	if err := h.plans.Delete(id); err != nil {
		return planNotFound(c)
	}
	h.feed.Close(id)
	log.Printf("[PLANNER] Deleted plan %s", id)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PlanHandler) GetRooms(c fiber.Ctx) error {
	state, ok := h.lookup(c)
	if !ok {
		return planNotFound(c)
	}
	return c.JSON(state.Rooms())
}

func (h *PlanHandler) GetWalls(c fiber.Ctx) error {
	state, ok := h.lookup(c)
	if !ok {
		return planNotFound(c)
	}
	return c.JSON(state.Walls())
}

// GetWallAt: стена под точкой ?x=&z=&tolerance=.
func (h *PlanHandler) GetWallAt(c fiber.Ctx) error {
	state, ok := h.lookup(c)
	if !ok {
		return planNotFound(c)
	}

	x, errX := strconv.ParseFloat(c.Query("x"), 64)
	z, errZ := strconv.ParseFloat(c.Query("z"), 64)
	if errX != nil || errZ != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "x and z query parameters required"})
	}

	tolerance := defaultPickTolerance
	if raw := c.Query("tolerance"); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil || t < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid tolerance"})
		}
		tolerance = t
	}

	wall, found := state.PickWall(geometry.Point{X: x, Z: z}, tolerance)
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no wall at point"})
	}
	return c.JSON(wall)
}

func (h *PlanHandler) Reset(c fiber.Ctx) error {
	state, ok := h.lookup(c)
	if !ok {
		return planNotFound(c)
	}
	state.Reset()
	return h.publishSnapshot(c, "reset", state)
}

func (h *PlanHandler) GetSVG(c fiber.Ctx) error {
	state, ok := h.lookup(c)
	if !ok {
		return planNotFound(c)
	}

	snap := state.Snapshot()
	svg, err := h.renderer.Render(snap.Rooms, snap.Walls, snap.Selection)
	if err != nil {
		log.Printf("[PLANNER] Render error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(svg)
}

// ============================================================
// Selection & Hover
// ============================================================

func (h *PlanHandler) Select(c fiber.Ctx) error {
	state, ok := h.lookup(c)
	if !ok {
		return planNotFound(c)
	}

	var req pointerRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	switch {
	case req.WallID != "":
		state.SelectWall(req.WallID)
	case req.X != nil && req.Z != nil:
		state.SelectAt(geometry.Point{X: *req.X, Z: *req.Z}, pickTolerance(req.Tolerance))
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "wallId or x/z required"})
	}
	return h.publishSnapshot(c, "selection", state)
}

func (h *PlanHandler) ClearSelection(c fiber.Ctx) error {
	state, ok := h.lookup(c)
	if !ok {
		return planNotFound(c)
	}
	state.ClearSelection()
	return h.publishSnapshot(c, "selection", state)
}

// Hover подсвечивает стену по id или по точке; пустой запрос снимает подсветку.
func (h *PlanHandler) Hover(c fiber.Ctx) error {
	state, ok := h.lookup(c)
	if !ok {
		return planNotFound(c)
	}

	var req pointerRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
		}
	}

	if req.WallID == "" && req.X != nil && req.Z != nil {
		state.HoverAt(geometry.Point{X: *req.X, Z: *req.Z}, pickTolerance(req.Tolerance))
	} else {
		state.SetHoveredWall(req.WallID)
	}
	return h.publishSnapshot(c, "hover", state)
}

// ============================================================
// Moves
// ============================================================

func (h *PlanHandler) MoveWall(c fiber.Ctx) error {
	state, ok := h.lookup(c)
	if !ok {
		return planNotFound(c)
	}

	var req moveRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if req.WallID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "wallId required"})
	}

	dir := models.Direction(req.Direction)
	newID, err := state.MoveWall(req.WallID, dir)
	return h.respondMove(c, state, req.WallID, dir, newID, err)
}

func (h *PlanHandler) MoveSelected(c fiber.Ctx) error {
	state, ok := h.lookup(c)
	if !ok {
		return planNotFound(c)
	}

	var req moveRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	dir := models.Direction(req.Direction)
	movedID, newID, err := state.MoveSelectedWall(dir)
	if errors.Is(err, building.ErrNoSelection) {
		return c.Status(fiber.StatusConflict).JSON(moveResponse{Outcome: outcomeNoSelection, Error: err.Error()})
	}
	return h.respondMove(c, state, movedID, dir, newID, err)
}

func (h *PlanHandler) ListMoves(c fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.plans.Get(id); err != nil {
		return planNotFound(c)
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid limit"})
		}
		limit = n
	}

	entries, err := h.journal.ListByPlan(context.Background(), id, limit)
	if err != nil {
		log.Printf("[PLANNER] List moves error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read journal"})
	}
	return c.JSON(fiber.Map{"moves": entries})
}

// respondMove пишет попытку в журнал, рассылает новое состояние при успехе
// и переводит ошибку сдвига в HTTP статус.
func (h *PlanHandler) respondMove(c fiber.Ctx, state *building.State, wallID string, dir models.Direction, newID string, moveErr error) error {
	planID := c.Params("id")
	outcome := walls.Outcome(moveErr)

	if _, err := h.journal.Record(context.Background(), repository.Entry{
		PlanID:    planID,
		WallID:    wallID,
		Direction: string(dir),
		Outcome:   outcome,
		NewWallID: newID,
	}); err != nil {
		log.Printf("[PLANNER] Journal error: %v", err)
	}

	if moveErr != nil {
		log.Printf("[PLANNER] Move %s %s on %s: %v", wallID, dir, planID, moveErr)
		return c.Status(moveStatus(moveErr)).JSON(moveResponse{WallID: wallID, Outcome: outcome, Error: moveErr.Error()})
	}

	h.feed.Publish(planID, "moved", state.Snapshot())
	return c.JSON(moveResponse{Moved: true, WallID: newID, Outcome: outcome})
}

func moveStatus(err error) int {
	switch {
	case errors.Is(err, walls.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, walls.ErrInvalidDirection):
		return fiber.StatusBadRequest
	case errors.Is(err, walls.ErrBlocked), errors.Is(err, walls.ErrDegenerateResult):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// ============================================================
// Helpers
// ============================================================

func (h *PlanHandler) lookup(c fiber.Ctx) (*building.State, bool) {
	state, err := h.plans.Get(c.Params("id"))
	if err != nil {
		return nil, false
	}
	return state, true
}

func (h *PlanHandler) publishSnapshot(c fiber.Ctx, eventType string, state *building.State) error {
	snap := state.Snapshot()
	h.feed.Publish(c.Params("id"), eventType, snap)
	return c.JSON(planResponse{ID: c.Params("id"), Snapshot: snap})
}

func planNotFound(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "plan not found"})
}

func pickTolerance(t float64) float64 {
	if t <= 0 {
		return defaultPickTolerance
	}
	return t
}
