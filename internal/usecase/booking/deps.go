package booking

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/logging"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
)

// ======================================================
// POLICY
// ======================================================

// Policy carries the tunables that come from configuration.
type Policy struct {
	HoldWindow      time.Duration
	SlotStepMinutes int
	ReconcileBatch  int
}

func DefaultPolicy() Policy {
	return Policy{
		HoldWindow:      10 * time.Minute,
		SlotStepMinutes: 15,
		ReconcileBatch:  100,
	}
}

// ======================================================
// SIDE EFFECTS
// ======================================================

// Effects are fired after commit. Every field is optional and failures
// are logged, never returned.
type Effects struct {
	Audit    *audit.Dispatcher
	Notifier notify.Publisher
	Metrics  *metrics.Recorder
	Log      logrus.FieldLogger
}

func (e Effects) logger() logrus.FieldLogger {
	if e.Log == nil {
		return logging.Discard()
	}
	return e.Log
}

func (e Effects) record(userID *uint, action string, b *models.Booking, meta any) {
	e.Audit.Dispatch(audit.Event{
		UserID:   userID,
		Action:   action,
		Entity:   "booking",
		EntityID: &b.ID,
		Metadata: meta,
	})
}

func (e Effects) publish(ctx context.Context, topic string, b *models.Booking, reason string, now time.Time) {
	if e.Notifier == nil {
		return
	}
	err := e.Notifier.Publish(ctx, notify.Fact{
		Type:       topic,
		BookingID:  b.ID,
		CustomerID: b.CustomerID,
		BarberID:   b.BarberID,
		StartTime:  b.StartTime,
		Reason:     reason,
		OccurredAt: now,
	})
	if err != nil {
		e.logger().WithError(err).
			WithFields(logrus.Fields{"booking_id": b.ID, "topic": topic}).
			Error("notification publish failed")
	}
}

// ======================================================
// ERROR MAPPING
// ======================================================

func notFound(err error, code, message string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return httperr.ErrNotFound(code, message)
	}
	return err
}

var errTimeConflict = httperr.ErrConflict(
	"time_conflict",
	"The requested time overlaps an existing booking.",
)

// writeConflict maps store-level races to the Conflict kind.
func writeConflict(err error) error {
	switch {
	case errors.Is(err, domain.ErrSlotTaken):
		return errTimeConflict
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return httperr.ErrConflict(
			"concurrent_update",
			"The booking was modified concurrently. Refresh and try again.",
		)
	}
	return err
}

func errInPast() error {
	return httperr.ErrBadRequest("date_in_past", "Cannot book a time in the past.")
}
