// Package store holds the single planning state and mediates every mutation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/retailerkit/planner/pkg/domain/entities"
	"github.com/retailerkit/planner/pkg/domain/repositories"
)

// Partial is a top-level shallow merge into the planning state. Nil fields
// leave the corresponding section untouched.
type Partial struct {
	GeneralParameters *entities.GeneralParameters
	Products          *[]entities.Product
	Components        *[]entities.Component
}

type listenerEntry struct {
	id int
	fn func()
}

// Store owns the PlanningState. SetState is the only mutation entry point:
// it merges, persists every section, then notifies subscribers synchronously
// in registration order.
type Store struct {
	mu        sync.RWMutex
	state     entities.PlanningState
	repo      repositories.SectionRepository
	logger    *slog.Logger
	listeners []listenerEntry
	nextID    int
}

// New constructs a Store, loading each persisted section independently.
// A missing or corrupt section falls back to its built-in default; that is
// logged but never fatal.
func New(ctx context.Context, repo repositories.SectionRepository, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		repo:   repo,
		logger: logger,
	}
	s.state = s.loadState(ctx)
	return s
}

// GetState returns a deep copy of the current state. Callers must not feed
// mutations back except through SetState.
func (s *Store) GetState() entities.PlanningState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// SetState merges the partial into the current state, persists all three
// sections, then notifies every subscriber registered before the call.
func (s *Store) SetState(ctx context.Context, partial Partial) {
	s.mu.Lock()
	next := s.state.Clone()
	if partial.GeneralParameters != nil {
		next.GeneralParameters = *partial.GeneralParameters
	}
	if partial.Products != nil {
		next.Products = cloneProducts(*partial.Products)
	}
	if partial.Components != nil {
		next.Components = append([]entities.Component(nil), *partial.Components...)
	}
	s.state = next
	s.persist(ctx, next)

	// Snapshot so listeners can subscribe or unsubscribe from within a
	// callback without invalidating the iteration
	snapshot := make([]listenerEntry, len(s.listeners))
	copy(snapshot, s.listeners)
	s.mu.Unlock()

	for _, entry := range snapshot {
		entry.fn()
	}
}

// Subscribe registers a callback invoked on every SetState and returns its
// deregistration handle
func (s *Store) Subscribe(listener func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: listener})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, entry := range s.listeners {
			if entry.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// loadState assembles the initial state section by section
func (s *Store) loadState(ctx context.Context) entities.PlanningState {
	state := entities.PlanningState{}

	var params entities.GeneralParameters
	if s.loadSection(ctx, repositories.SectionGeneralParameters, &params) {
		// model_type is pinned regardless of what was persisted
		params.ModelType = entities.ModelTypeAdvanced
		state.GeneralParameters = params
	} else {
		state.GeneralParameters = DefaultGeneralParameters()
	}

	var products []entities.Product
	if s.loadSection(ctx, repositories.SectionProducts, &products) {
		for i := range products {
			if products[i].BillOfMaterials == nil {
				products[i].BillOfMaterials = entities.BillOfMaterials{}
			}
		}
		state.Products = products
	} else {
		state.Products = DefaultProducts()
	}

	var components []entities.Component
	if s.loadSection(ctx, repositories.SectionComponents, &components) {
		state.Components = components
	} else {
		state.Components = DefaultComponents()
	}

	return state
}

// loadSection reports whether the section was loaded into target. Absence
// and corruption both return false so the caller falls back to defaults.
func (s *Store) loadSection(ctx context.Context, section repositories.Section, target interface{}) bool {
	data, err := s.repo.Load(ctx, section)
	if errors.Is(err, repositories.ErrSectionNotFound) {
		return false
	}
	if err != nil {
		readErr := &entities.PersistenceReadError{Section: string(section), Err: err}
		s.logger.Warn("failed to load section, using defaults",
			"section", section, "error", readErr)
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		readErr := &entities.PersistenceReadError{Section: string(section), Err: err}
		s.logger.Warn("corrupt section, using defaults",
			"section", section, "error", readErr)
		return false
	}
	return true
}

// persist re-serializes and writes all three sections. Write failures are
// logged and otherwise ignored; the in-memory state stays authoritative.
func (s *Store) persist(ctx context.Context, state entities.PlanningState) {
	sections := []struct {
		section repositories.Section
		value   interface{}
	}{
		{repositories.SectionGeneralParameters, state.GeneralParameters},
		{repositories.SectionProducts, state.Products},
		{repositories.SectionComponents, state.Components},
	}

	for _, sec := range sections {
		data, err := json.MarshalIndent(sec.value, "", "  ")
		if err != nil {
			s.logger.Error("failed to serialize section", "section", sec.section, "error", err)
			continue
		}
		if err := s.repo.Save(ctx, sec.section, data); err != nil {
			s.logger.Error("failed to persist section", "section", sec.section, "error", err)
		}
	}
}

func cloneProducts(products []entities.Product) []entities.Product {
	out := make([]entities.Product, len(products))
	for i, p := range products {
		p.BillOfMaterials = p.BillOfMaterials.Clone()
		out[i] = p
	}
	return out
}
