package entities

import (
	"strings"

	"github.com/google/uuid"
)

// ComponentID uniquely identifies a raw-material component
type ComponentID string

// Component represents a raw-material component used in product BOMs.
// Name doubles as the BOM lookup key, so it must be unique among components.
type Component struct {
	ID    ComponentID `json:"id"`
	Name  string      `json:"name"`
	Cost  float64     `json:"cost"`
	Stock float64     `json:"stock"`
}

// NewComponent creates a validated Component, generating an ID when absent
func NewComponent(id ComponentID, name string, cost, stock float64) (*Component, error) {
	normalized := NormalizeName(name)
	if normalized == "" {
		return nil, &ValidationError{Field: "name", Reason: "name cannot be empty"}
	}

	if id == "" {
		id = NewComponentID()
	}

	return &Component{
		ID:    id,
		Name:  normalized,
		Cost:  cost,
		Stock: stock,
	}, nil
}

// NewComponentID generates a fresh globally-unique component identifier
func NewComponentID() ComponentID {
	return ComponentID(componentIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// NormalizeName collapses internal whitespace to underscores so the result
// is safe to use as a BOM lookup key
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), "_")
}

const (
	componentIDPrefix = "component_"
	productIDPrefix   = "product_"
)
