package memory

import (
	"context"
	"sync"

	"github.com/retailerkit/planner/pkg/domain/repositories"
)

// SectionRepository provides in-memory section storage. It backs tests and
// the example program; production wiring uses the badger repository.
type SectionRepository struct {
	mu       sync.RWMutex
	sections map[repositories.Section][]byte
}

// NewSectionRepository creates an empty in-memory section repository
func NewSectionRepository() *SectionRepository {
	return &SectionRepository{
		sections: make(map[repositories.Section][]byte, 3),
	}
}

// Verify interface compliance
var _ repositories.SectionRepository = (*SectionRepository)(nil)

// Load returns the stored bytes for a section, or ErrSectionNotFound
func (r *SectionRepository) Load(ctx context.Context, section repositories.Section) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	data, exists := r.sections[section]
	if !exists {
		return nil, repositories.ErrSectionNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Save stores the bytes for a section
func (r *SectionRepository) Save(ctx context.Context, section repositories.Section, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	r.sections[section] = stored
	return nil
}

// Close is a no-op for the in-memory repository
func (r *SectionRepository) Close() error {
	return nil
}
