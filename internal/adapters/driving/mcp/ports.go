package mcp

import (
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	// Ingest indexes documents and serves their mind maps.
	Ingest driving.IngestService

	// Query answers questions and retrieves passages.
	Query driving.QueryService

	// Document lists indexed documents. Optional.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Ingest == nil {
		return ErrMissingIngestService
	}
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
