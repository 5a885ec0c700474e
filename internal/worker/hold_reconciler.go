package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	ucBooking "github.com/BruksfildServices01/barber-booking/internal/usecase/booking"
)

type Sweeper interface {
	Sweep(ctx context.Context) (ucBooking.SweepResult, error)
}

// HoldReconciler runs the hold-expiry sweep on a fixed interval.
type HoldReconciler struct {
	sweeper  Sweeper
	interval time.Duration
	log      logrus.FieldLogger
}

func NewHoldReconciler(sweeper Sweeper, interval time.Duration, log logrus.FieldLogger) *HoldReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &HoldReconciler{
		sweeper:  sweeper,
		interval: interval,
		log:      log.WithField("component", "hold_reconciler"),
	}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (w *HoldReconciler) Run(ctx context.Context) {
	w.log.WithField("interval", w.interval.String()).Info("hold reconciler started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.sweep(ctx)

		select {
		case <-ctx.Done():
			w.log.Info("hold reconciler stopped")
			return
		case <-ticker.C:
		}
	}
}

func (w *HoldReconciler) sweep(ctx context.Context) {
	if _, err := w.sweeper.Sweep(ctx); err != nil && ctx.Err() == nil {
		w.log.WithError(err).Error("hold sweep failed")
	}
}
