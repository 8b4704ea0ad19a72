// Package scope defines the tenancy and actor scope threaded through every
// core operation. The scope is an explicit parameter, never ambient state,
// so the core stays callable from any concurrency model.
package scope

import (
	"salescore/internal/core/apperror"
	"salescore/internal/core/id"
)

// Scope identifies the company whose data an operation may touch and the
// user performing it. Every repository query is filtered by CompanyID;
// cross-tenant access is impossible by construction.
type Scope struct {
	// CompanyID is the tenant boundary for all reads and writes.
	CompanyID id.ID

	// UserID is the acting user, recorded on audit fields.
	UserID id.ID
}

// New creates a scope for the given company and user.
func New(companyID, userID id.ID) Scope {
	return Scope{CompanyID: companyID, UserID: userID}
}

// Validate checks that the scope carries a company.
// UserID may be nil for system-initiated operations (overdue sweep).
func (s Scope) Validate() error {
	if id.IsNil(s.CompanyID) {
		return apperror.NewValidation("company is required").
			WithDetail("field", "companyId")
	}
	return nil
}

// Actor returns the user id as a string for audit columns, empty when the
// operation is system-initiated.
func (s Scope) Actor() string {
	if id.IsNil(s.UserID) {
		return ""
	}
	return s.UserID.String()
}
