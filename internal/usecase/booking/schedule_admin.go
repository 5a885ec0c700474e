package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type AvailabilityRow struct {
	DayOfWeek   int
	StartTime   string
	EndTime     string
	IsAvailable bool
}

type BreakInput struct {
	// Date makes a one-off break; DayOfWeek a weekly one; neither a daily one.
	Date      string
	DayOfWeek *int
	StartTime string
	EndTime   string
	Label     string
}

type Schedule struct {
	Availability []models.BarberAvailability `json:"availability"`
	Breaks       []models.BarberBreak        `json:"breaks"`
}

// ManageSchedule edits a barber's weekly template and breaks.
type ManageSchedule struct {
	store domain.CalendarStore
	clock timezone.Clock
	fx    Effects
}

func NewManageSchedule(
	store domain.CalendarStore,
	clock timezone.Clock,
	fx Effects,
) *ManageSchedule {
	return &ManageSchedule{
		store: store,
		clock: clock,
		fx:    fx,
	}
}

func (uc *ManageSchedule) Get(ctx context.Context, barberID uint) (*Schedule, error) {
	rows, err := uc.store.ListAllAvailability(ctx, barberID)
	if err != nil {
		return nil, err
	}
	breaks, err := uc.store.ListBreaks(ctx, barberID)
	if err != nil {
		return nil, err
	}
	return &Schedule{Availability: rows, Breaks: breaks}, nil
}

// ReplaceWeek swaps the whole weekly template for barberID.
func (uc *ManageSchedule) ReplaceWeek(
	ctx context.Context,
	barberID uint,
	rows []AvailabilityRow,
) ([]models.BarberAvailability, error) {

	out := make([]models.BarberAvailability, 0, len(rows))
	for i, r := range rows {
		if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
			return nil, httperr.ErrBadRequest("invalid_day_of_week", fmt.Sprintf("Row %d: day_of_week must be 0-6.", i))
		}
		if err := validClockRange(r.StartTime, r.EndTime); err != nil {
			return nil, httperr.ErrBadRequest("invalid_time_range", fmt.Sprintf("Row %d: %s", i, err.Error()))
		}
		out = append(out, models.BarberAvailability{
			BarberID:    barberID,
			DayOfWeek:   r.DayOfWeek,
			StartTime:   r.StartTime,
			EndTime:     r.EndTime,
			IsAvailable: r.IsAvailable,
		})
	}

	if err := uc.store.ReplaceAvailability(ctx, barberID, out); err != nil {
		return nil, err
	}

	uc.fx.Audit.Dispatch(audit.Event{
		UserID:   audit.ActorFrom(ctx),
		Action:   "availability_replaced",
		Entity:   "barber",
		EntityID: &barberID,
		Metadata: map[string]any{"rows": len(out)},
	})
	return out, nil
}

func (uc *ManageSchedule) AddBreak(
	ctx context.Context,
	barberID uint,
	in BreakInput,
) (*models.BarberBreak, error) {

	if err := validClockRange(in.StartTime, in.EndTime); err != nil {
		return nil, httperr.ErrBadRequest("invalid_time_range", err.Error())
	}

	br := &models.BarberBreak{
		BarberID:  barberID,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Label:     in.Label,
	}

	switch {
	case in.Date != "" && in.DayOfWeek != nil:
		return nil, httperr.ErrBadRequest("invalid_break", "A break has either a date or a day_of_week, not both.")
	case in.Date != "":
		d, err := timezone.ParseDate(in.Date, uc.clock.Location())
		if err != nil {
			return nil, httperr.ErrBadRequest("invalid_date", "Date must be YYYY-MM-DD.")
		}
		br.BreakDate = &d
	case in.DayOfWeek != nil:
		if *in.DayOfWeek < 0 || *in.DayOfWeek > 6 {
			return nil, httperr.ErrBadRequest("invalid_day_of_week", "day_of_week must be 0-6.")
		}
		dow := *in.DayOfWeek
		br.DayOfWeek = &dow
	}

	if err := uc.store.CreateBreak(ctx, br); err != nil {
		return nil, err
	}

	uc.fx.Audit.Dispatch(audit.Event{
		UserID:   audit.ActorFrom(ctx),
		Action:   "break_created",
		Entity:   "barber_break",
		EntityID: &br.ID,
	})
	return br, nil
}

func (uc *ManageSchedule) RemoveBreak(ctx context.Context, barberID uint, breakID uint) error {
	if err := uc.store.DeleteBreak(ctx, barberID, breakID); err != nil {
		return notFound(err, "break_not_found", "Break not found.")
	}

	uc.fx.Audit.Dispatch(audit.Event{
		UserID:   audit.ActorFrom(ctx),
		Action:   "break_deleted",
		Entity:   "barber_break",
		EntityID: &breakID,
	})
	return nil
}

func validClockRange(start, end string) error {
	s, err := domain.ParseClock(start)
	if err != nil {
		return fmt.Errorf("start_time must be HH:MM")
	}
	e, err := domain.ParseClock(end)
	if err != nil {
		return fmt.Errorf("end_time must be HH:MM")
	}
	if e == 0 {
		e = 24 * int(time.Hour/time.Minute)
	}
	if e <= s {
		return fmt.Errorf("end_time must be after start_time")
	}
	return nil
}
