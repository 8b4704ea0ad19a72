package salesorder

import "salescore/internal/core/numerator"

const (
	// NumberPrefix is the document number prefix (SO-2026-00001).
	NumberPrefix = "SO"

	// NumeratorStrategy defines the numbering strategy for orders.
	// Orders are internal documents, so gaps are acceptable.
	NumeratorStrategy = numerator.StrategyCached
)
