package invoice

// Status represents the invoice lifecycle status.
type Status string

const (
	StatusDraft       Status = "DRAFT"
	StatusSent        Status = "SENT"
	StatusPartialPaid Status = "PARTIAL_PAID"
	StatusPaid        Status = "PAID"
	StatusOverdue     Status = "OVERDUE"
	StatusCancelled   Status = "CANCELLED"
	StatusVoid        Status = "VOID"
)

// transitions defines the allowed status graph. Missing from-status means
// the status is terminal. VOID is a valid stored status but is not
// reachable through a status change; it exists for imported documents.
var transitions = map[Status][]Status{
	StatusDraft:       {StatusSent, StatusCancelled},
	StatusSent:        {StatusPartialPaid, StatusPaid, StatusOverdue, StatusCancelled},
	StatusPartialPaid: {StatusPaid, StatusOverdue, StatusCancelled},
	StatusOverdue:     {StatusPartialPaid, StatusPaid, StatusCancelled},
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPartialPaid, StatusPaid,
		StatusOverdue, StatusCancelled, StatusVoid:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// IsPayable reports whether payments may be applied in this status.
func (s Status) IsPayable() bool {
	switch s {
	case StatusSent, StatusPartialPaid, StatusOverdue:
		return true
	}
	return false
}

// CanTransitionTo reports whether the transition s -> target is allowed.
// A same-status transition is always permitted as a no-op.
func (s Status) CanTransitionTo(target Status) bool {
	if s == target {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}
