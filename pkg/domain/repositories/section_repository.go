package repositories

import (
	"context"
	"errors"
)

// Section identifies one of the three independently persisted partitions of
// the planning state
type Section string

const (
	SectionGeneralParameters Section = "general_parameters"
	SectionProducts          Section = "products"
	SectionComponents        Section = "components"
)

// Sections lists every section in load order
func Sections() []Section {
	return []Section{SectionGeneralParameters, SectionProducts, SectionComponents}
}

// ErrSectionNotFound is returned by Load when a section has never been saved.
// Callers treat it the same as corruption: fall back to defaults for that
// section only.
var ErrSectionNotFound = errors.New("section not found")

// SectionRepository provides durable storage for serialized state sections.
// Each section is saved and loaded independently so corruption of one never
// blocks the others.
type SectionRepository interface {
	Load(ctx context.Context, section Section) ([]byte, error)
	Save(ctx context.Context, section Section, data []byte) error
	Close() error
}
