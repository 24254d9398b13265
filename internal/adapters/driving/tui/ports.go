// Package tui provides an interactive terminal chat for asking a dataset.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the chat.
type Ports struct {
	// Answer produces grounded answers.
	Answer driving.AnswerService

	// Search lists the passages behind an answer. Optional.
	Search driving.SearchService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
