package booking

import (
	"context"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// OpenSlots lists the start times ("15:04") at which the service fits the
// barber's free time on a date. The result is a snapshot; the write path
// re-checks conflicts.
type OpenSlots struct {
	repo   domain.Repository
	clock  timezone.Clock
	policy Policy
}

func NewOpenSlots(
	repo domain.Repository,
	clock timezone.Clock,
	policy Policy,
) *OpenSlots {
	return &OpenSlots{
		repo:   repo,
		clock:  clock,
		policy: policy,
	}
}

func (uc *OpenSlots) Execute(
	ctx context.Context,
	barberID uint,
	date string,
	serviceID uint,
) ([]string, error) {

	if _, err := uc.repo.GetBarber(ctx, barberID); err != nil {
		return nil, notFound(err, "barber_not_found", "Barber not found.")
	}
	service, err := uc.repo.GetService(ctx, serviceID)
	if err != nil {
		return nil, notFound(err, "service_not_found", "Service not found.")
	}

	loc := uc.clock.Location()
	day, err := timezone.ParseDate(date, loc)
	if err != nil {
		return nil, httperr.ErrBadRequest("invalid_date", "Date must be YYYY-MM-DD.")
	}

	now := uc.clock.Now()
	today := timezone.DateOf(now, loc)
	if day.Before(today) {
		return []string{}, nil
	}

	notBefore := 0
	if day.Equal(today) {
		notBefore = domain.ClockOf(now, day)
		if now.Second() != 0 || now.Nanosecond() != 0 {
			notBefore++
		}
	}

	schedule, err := loadSchedule(ctx, uc.repo, barberID, day)
	if err != nil {
		return nil, err
	}
	if len(schedule.working) == 0 {
		return []string{}, nil
	}

	bookings, err := uc.repo.ListBookingsForPeriod(ctx, barberID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	step := uc.policy.SlotStepMinutes
	if step <= 0 {
		step = DefaultPolicy().SlotStepMinutes
	}

	starts := domain.ComputeOpenSlots(domain.CalendarInput{
		Working:   schedule.working,
		Breaks:    schedule.breaks,
		Busy:      domain.BusyRanges(bookings, day),
		Duration:  service.DurationMinutes,
		Step:      step,
		NotBefore: notBefore,
	})

	out := make([]string, 0, len(starts))
	for _, s := range starts {
		out = append(out, domain.FormatClock(s))
	}
	return out, nil
}
