package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/retailerkit/planner/pkg/application/dto"
	"github.com/retailerkit/planner/pkg/application/store"
	"github.com/retailerkit/planner/pkg/domain/entities"
)

// SolverClient is the outbound port to the external optimization service
type SolverClient interface {
	Solve(ctx context.Context, req *dto.SolveRequest) (*dto.SolveResponse, error)
}

// ErrSolveSuperseded reports that a newer solve was dispatched while this
// one was in flight; the stale response was discarded.
var ErrSolveSuperseded = errors.New("solve superseded by a newer request")

// SolveService captures a state snapshot, calls the solver and holds the
// latest solution set for visualization. A generation token guarantees that
// only the most recently dispatched request may apply its response.
type SolveService struct {
	store  *store.Store
	client SolverClient
	logger *slog.Logger

	mu         sync.Mutex
	generation uint64
	results    entities.SolutionSet
}

// NewSolveService creates a solve service bound to the given store and client
func NewSolveService(s *store.Store, client SolverClient, logger *slog.Logger) *SolveService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SolveService{store: s, client: client, logger: logger}
}

// Solve maps the current state to a request, calls the solver and applies
// the response. The state snapshot is captured at dispatch time, so edits
// made while the call is in flight do not affect this request. If a newer
// solve was dispatched meanwhile, the response is discarded and
// ErrSolveSuperseded is returned.
func (s *SolveService) Solve(ctx context.Context) (entities.SolutionSet, error) {
	s.mu.Lock()
	s.generation++
	generation := s.generation
	s.mu.Unlock()

	snapshot := s.store.GetState()
	req := BuildSolveRequest(snapshot)

	resp, err := s.client.Solve(ctx, req)
	if err != nil {
		return entities.SolutionSet{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		s.logger.Debug("discarding stale solve response", "generation", generation)
		return entities.SolutionSet{}, ErrSolveSuperseded
	}

	// Solutions are stored as returned; charts degrade to a placeholder
	// when the set is empty. Products are read live so the visualization
	// maps ids to current display names.
	s.results = entities.SolutionSet{
		Solutions: resp.Solutions,
		Products:  s.store.GetState().Products,
	}
	return s.results, nil
}

// Results returns the latest applied solution set
func (s *SolveService) Results() entities.SolutionSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}
