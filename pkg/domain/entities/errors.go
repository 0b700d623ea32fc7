package entities

import (
	"fmt"
	"strings"
)

// ValidationError reports bad user input. It is recoverable: an edit session
// that produced one stays open.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RemoteCallError reports a failed exchange with the external solver.
// It is surfaced to the user and never fatal.
type RemoteCallError struct {
	Status int
	Err    error
}

func (e *RemoteCallError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("solver request failed with status %d", e.Status)
	}
	return fmt.Sprintf("solver request failed: %v", e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// PersistenceReadError reports a section that could not be read or decoded.
// The store recovers by substituting that section's defaults; the error is
// logged, never fatal.
type PersistenceReadError struct {
	Section string
	Err     error
}

func (e *PersistenceReadError) Error() string {
	return fmt.Sprintf("failed to read section %s: %v", e.Section, e.Err)
}

func (e *PersistenceReadError) Unwrap() error {
	return e.Err
}

// ReferentialIntegrityWarning flags products whose BOM still references a
// deleted component. The delete proceeds; the warning is surfaced so the
// user can clean up the stale references.
type ReferentialIntegrityWarning struct {
	ComponentName string
	Products      []string
}

func (w *ReferentialIntegrityWarning) Error() string {
	return fmt.Sprintf("component %s is still referenced by: %s",
		w.ComponentName, strings.Join(w.Products, ", "))
}
