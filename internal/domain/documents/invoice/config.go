package invoice

import "salescore/internal/core/numerator"

const (
	// NumberPrefix is the document number prefix (INV-2026-00001).
	NumberPrefix = "INV"

	// NumeratorStrategy defines the numbering strategy for invoices.
	// Invoices are accounting documents, so numbers must be gapless.
	NumeratorStrategy = numerator.StrategyStrict
)
