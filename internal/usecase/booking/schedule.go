package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
)

// daySchedule is the working template and breaks of one barber/date.
type daySchedule struct {
	working []domain.Range
	breaks  []domain.Range
}

func loadSchedule(
	ctx context.Context,
	repo domain.Repository,
	barberID uint,
	date time.Time,
) (daySchedule, error) {

	rows, err := repo.ListAvailability(ctx, barberID, int(date.Weekday()))
	if err != nil {
		return daySchedule{}, err
	}
	working, err := domain.WorkingRanges(rows)
	if err != nil {
		return daySchedule{}, err
	}

	breakRows, err := repo.ListBreaks(ctx, barberID)
	if err != nil {
		return daySchedule{}, err
	}
	breaks, err := domain.BreakRanges(breakRows, date)
	if err != nil {
		return daySchedule{}, err
	}

	return daySchedule{working: working, breaks: breaks}, nil
}

// requireWithinSchedule rejects a range that falls outside working time or
// into a break.
func requireWithinSchedule(s daySchedule, date, start time.Time, duration int) error {
	from := domain.ClockOf(start, date)
	if !domain.FitsSchedule(s.working, s.breaks, domain.Range{Start: from, End: from + duration}) {
		return httperr.ErrBadRequest(
			"outside_working_hours",
			"The requested time is outside the barber's working hours.",
		)
	}
	return nil
}
