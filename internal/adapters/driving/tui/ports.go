// Package tui provides an interactive terminal session for asking questions
// about ingested documents. It is a driving adapter over the core services.
package tui

import (
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI uses.
type Ports struct {
	// Query answers questions.
	Query driving.QueryService

	// Document lists documents and their chunks. Optional when the TUI is
	// started on a single document.
	Document driving.DocumentService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
