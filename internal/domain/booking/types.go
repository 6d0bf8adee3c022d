package booking

type Status string

const (
	StatusActive      Status = "Active"
	StatusRescheduled Status = "Rescheduled"
	StatusCanceled    Status = "Canceled"
	StatusCompleted   Status = "Completed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusRescheduled, StatusCanceled, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no transition out of the status is defined.
func (s Status) IsTerminal() bool {
	return s == StatusCanceled || s == StatusCompleted
}

// CanTransitionTo implements the booking state machine:
// Active -> {Rescheduled, Canceled, Completed}; Rescheduled behaves like
// Active for further transitions; Canceled and Completed are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	if !next.IsValid() || s.IsTerminal() {
		return false
	}
	switch s {
	case StatusActive:
		return next != StatusActive
	case StatusRescheduled:
		return next == StatusRescheduled || next == StatusCanceled || next == StatusCompleted
	default:
		return false
	}
}

// Occupying reports whether a booking in this status holds its time slot.
// Canceled bookings release the slot; everything else keeps it.
func (s Status) Occupying() bool {
	return s != StatusCanceled
}
