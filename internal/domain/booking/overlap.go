package booking

import (
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// Overlaps reports whether [s1, e1) and [s2, e2) share an instant.
// Touching endpoints do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// FindOverlap returns the first booking in others that blocks [start, end),
// skipping excludeID and cancelled bookings.
func FindOverlap(others []models.Booking, start, end time.Time, excludeID uint) (*models.Booking, bool) {
	for i := range others {
		o := &others[i]
		if excludeID != 0 && o.ID == excludeID {
			continue
		}
		if !BlocksSlot(Status(o.Status)) {
			continue
		}
		if Overlaps(start, end, o.StartTime, o.EndTime) {
			return o, true
		}
	}
	return nil, false
}
