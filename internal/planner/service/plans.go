package service

import (
	"errors"
	"sort"
	"sync"

	"floorplan/internal/planner/building"
	"floorplan/internal/planner/models"

	"github.com/google/uuid"
)

var ErrPlanNotFound = errors.New("plan not found")

// ============================================================
// Plan Store
// ============================================================

// PlanStore держит открытые планировки в памяти: plan id -> состояние здания.
type PlanStore struct {
	mu    sync.Mutex
	plans map[string]*building.State
}

func NewPlanStore() *PlanStore {
	return &PlanStore{
		plans: make(map[string]*building.State),
	}
}

// Create открывает планировку по умолчанию.
func (s *PlanStore) Create() (string, *building.State) {
	state := building.New()
	return s.put(state), state
}

// CreateWithRooms открывает планировку из переданных комнат.
func (s *PlanStore) CreateWithRooms(rooms models.RoomMap) (string, *building.State, error) {
	state, err := building.NewWithRooms(rooms)
	if err != nil {
		return "", nil, err
	}
	return s.put(state), state, nil
}

func (s *PlanStore) put(state *building.State) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.plans[id] = state
	return id
}

func (s *PlanStore) Get(id string) (*building.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.plans[id]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return state, nil
}

func (s *PlanStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plans[id]; !ok {
		return ErrPlanNotFound
	}
	delete(s.plans, id)
	return nil
}

func (s *PlanStore) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.plans))
	for id := range s.plans {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
