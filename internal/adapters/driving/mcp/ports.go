package mcp

import (
	"github.com/custodia-labs/kbsync/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	// Query answers questions.
	Query driving.QueryController

	// Documents loads and deletes knowledge items.
	Documents driving.DocumentSynchronizer

	// Categories lists known categories. Optional.
	Categories driving.CategoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryController
	}
	if p.Documents == nil {
		return ErrMissingSynchronizer
	}
	return nil
}
