package rental

import "fmt"

// Status is the lifecycle state of a rental, persisted as a string.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ActiveStatuses are the states that block a vehicle's calendar. Pending,
// completed and cancelled rentals never conflict with a new booking.
var ActiveStatuses = []string{string(StatusConfirmed), string(StatusInProgress)}

// allowedTransitions is the directed graph of legal lifecycle moves.
// in_progress stays reachable from confirmed even though no endpoint sets it;
// complete accepts both confirmed and in_progress.
var allowedTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether from -> to is a legal lifecycle move.
func CanTransition(from, to Status) bool {
	allowed, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func IsTerminal(s Status) bool {
	allowed, ok := allowedTransitions[s]
	return ok && len(allowed) == 0
}

// Valid reports whether s is one of the known rental statuses.
func (s Status) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// TransitionError is returned when a lifecycle move is not allowed.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid rental status transition: %s -> %s", e.From, e.To)
}

// Transition validates and returns the new status, or a *TransitionError.
func Transition(from, to Status) (Status, error) {
	if !CanTransition(from, to) {
		return from, &TransitionError{From: from, To: to}
	}
	return to, nil
}
