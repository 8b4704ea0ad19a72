package quote

import "salescore/internal/core/numerator"

const (
	// NumberPrefix is the document number prefix (QT-2026-00001).
	NumberPrefix = "QT"

	// NumeratorStrategy defines the numbering strategy for quotes.
	// Quotes are not accounting documents, so gaps are acceptable.
	NumeratorStrategy = numerator.StrategyCached
)
