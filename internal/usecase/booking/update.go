package booking

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// UpdateBooking moves a booking to a new date and start time. The end follows
// the service's current duration; notes, parties and financials are kept.
type UpdateBooking struct {
	repo   domain.Repository
	clock  timezone.Clock
	policy Policy
	fx     Effects
}

func NewUpdateBooking(
	repo domain.Repository,
	clock timezone.Clock,
	policy Policy,
	fx Effects,
) *UpdateBooking {
	return &UpdateBooking{
		repo:   repo,
		clock:  clock,
		policy: policy,
		fx:     fx,
	}
}

func (uc *UpdateBooking) Execute(
	ctx context.Context,
	bookingID uint,
	newDate string,
	newTime string,
) (*models.Booking, error) {

	current, err := uc.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "booking_not_found", "Booking not found.")
	}
	if !domain.CanApply(domain.Status(current.Status), domain.OpReschedule) {
		_, err := domain.Transition(domain.Status(current.Status), domain.OpReschedule)
		return nil, err
	}

	loc := uc.clock.Location()
	date, err := timezone.ParseDate(newDate, loc)
	if err != nil {
		return nil, httperr.ErrBadRequest("invalid_date_or_time", "Date must be YYYY-MM-DD.")
	}
	start, err := timezone.ParseDateTime(newDate, newTime, loc)
	if err != nil {
		return nil, httperr.ErrBadRequest("invalid_date_or_time", "Time must be HH:MM.")
	}

	now := uc.clock.Now()
	if start.Before(now) {
		return nil, errInPast()
	}

	duration, err := uc.duration(ctx, current)
	if err != nil {
		return nil, err
	}
	end := start.Add(duration)

	schedule, err := loadSchedule(ctx, uc.repo, current.BarberID, date)
	if err != nil {
		return nil, err
	}
	if err := requireWithinSchedule(schedule, date, start, int(duration/time.Minute)); err != nil {
		return nil, err
	}

	var updated *models.Booking
	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		if err := tx.LockBarberDay(ctx, current.BarberID, date); err != nil {
			return err
		}

		b, err := tx.GetBookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}

		taken, err := tx.HasOverlap(ctx, b.BarberID, start, end, b.ID)
		if err != nil {
			return err
		}
		if taken {
			return errTimeConflict
		}

		// status is re-checked under the row lock
		if err := domain.Reschedule(b, date, start, end, now, uc.policy.HoldWindow); err != nil {
			return err
		}
		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}

		updated = b
		return nil
	})
	if err != nil {
		err = notFound(writeConflict(err), "booking_not_found", "Booking not found.")
		if httperr.IsBusiness(err, "time_conflict") {
			uc.fx.Metrics.Conflict()
		}
		return nil, err
	}

	uc.fx.Metrics.Transition(string(domain.OpReschedule))
	uc.fx.record(audit.ActorFrom(ctx), "booking_rescheduled", updated, map[string]any{
		"from": current.StartTime,
		"to":   updated.StartTime,
	})
	uc.fx.logger().WithFields(logrus.Fields{
		"booking_id": updated.ID,
		"start_time": updated.StartTime.Format(time.RFC3339),
	}).Info("booking rescheduled")

	return updated, nil
}

// duration prefers the service's current length. A retired service falls
// back to the booked span.
func (uc *UpdateBooking) duration(ctx context.Context, b *models.Booking) (time.Duration, error) {
	service, err := uc.repo.GetService(ctx, b.ServiceID)
	switch {
	case err == nil && service.DurationMinutes > 0:
		return time.Duration(service.DurationMinutes) * time.Minute, nil
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return 0, err
	}

	span := b.EndTime.Sub(b.StartTime)
	if span <= 0 {
		return 0, httperr.ErrNotFound("service_not_found", "Service not found.")
	}
	return span, nil
}
