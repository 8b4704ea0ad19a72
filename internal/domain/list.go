// Package domain provides shared domain types for filtering and pagination.
package domain

import (
	"salescore/internal/core/id"
)

// ListFilter contains common filtering options for list operations.
// Company scoping is not part of the filter; it comes from the explicit
// operation scope and is applied unconditionally by the repositories.
type ListFilter struct {
	// Search performs pattern search on number/notes fields
	Search string

	// IDs filters by specific IDs
	IDs []id.ID

	// IncludeDeleted includes soft-deleted records (catalogs only)
	IncludeDeleted bool

	// OrderBy specifies sorting (e.g., "date DESC", "number")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "date DESC",
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}
