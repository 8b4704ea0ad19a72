// Package numerator provides domain contracts for document auto-numbering.
// Implementations live in the infrastructure layer.
package numerator

import (
	"context"
	"time"

	"salescore/internal/core/id"
)

// Generator generates sequential document numbers.
// Sequences are scoped per company; two companies each get their own
// QT-2026-00001.
type Generator interface {
	// GetNextNumber generates the next document number.
	// Pattern: PREFIX-YEAR-XXXXX (e.g., INV-2026-00001)
	GetNextNumber(ctx context.Context, companyID id.ID, cfg Config, opts *Options, period time.Time) (string, error)

	// SetNextNumber sets the next number value (for migration purposes).
	SetNextNumber(ctx context.Context, companyID id.ID, cfg Config, period time.Time, value int64) error
}
