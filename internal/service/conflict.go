package service

import (
	"time"

	"github.com/daniyal-sudo/heraklean-backend/internal/domain"
)

// conflictChecker flags proposed slots that land inside a fixed exclusion
// window around any of a trainer's existing bookings on the same date. The
// window applies on each side of a booking, so the default 1h window keeps
// a 2h zone clear around every meeting.
type conflictChecker struct {
	window time.Duration
}

func newConflictChecker(window time.Duration) conflictChecker {
	if window <= 0 {
		window = time.Hour
	}
	return conflictChecker{window: window}
}

// hasConflict reports whether the proposed instant falls within the window
// of any existing meeting. The boundary is inclusive: a slot exactly one
// window away from an existing booking still conflicts.
func (c conflictChecker) hasConflict(existing []domain.Meeting, proposed time.Time) bool {
	for i := range existing {
		d := proposed.Sub(existing[i].StartsAt)
		if d < 0 {
			d = -d
		}
		if d <= c.window {
			return true
		}
	}
	return false
}
