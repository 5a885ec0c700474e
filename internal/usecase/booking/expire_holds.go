package booking

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type SweepResult struct {
	Scanned int
	Expired int
	Skipped int
	Failed  int
}

// ExpireHolds cancels pending bookings whose hold ran out, through the same
// path as a user cancellation.
type ExpireHolds struct {
	repo   domain.Repository
	cancel *CancelBooking
	clock  timezone.Clock
	policy Policy
	fx     Effects
}

func NewExpireHolds(
	repo domain.Repository,
	cancel *CancelBooking,
	clock timezone.Clock,
	policy Policy,
	fx Effects,
) *ExpireHolds {
	return &ExpireHolds{
		repo:   repo,
		cancel: cancel,
		clock:  clock,
		policy: policy,
		fx:     fx,
	}
}

// Sweep processes one batch. A failure on one booking is logged and counted;
// the rest of the batch still runs.
func (uc *ExpireHolds) Sweep(ctx context.Context) (SweepResult, error) {
	started := time.Now()
	defer func() {
		uc.fx.Metrics.ObserveSweep(time.Since(started).Seconds())
	}()

	var res SweepResult

	stale, err := uc.repo.ListExpiredHolds(ctx, uc.clock.Now(), uc.policy.ReconcileBatch)
	if err != nil {
		return res, err
	}
	res.Scanned = len(stale)

	for _, b := range stale {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		_, expired, err := uc.cancel.ExpireHold(ctx, b.ID)
		switch {
		case err != nil:
			res.Failed++
			uc.fx.logger().WithError(err).
				WithField("booking_id", b.ID).
				Error("hold expiry failed")
		case expired:
			res.Expired++
		default:
			res.Skipped++
		}
	}

	uc.fx.Metrics.HoldsExpired(res.Expired)
	if res.Scanned > 0 {
		uc.fx.logger().WithFields(logrus.Fields{
			"scanned": res.Scanned,
			"expired": res.Expired,
			"skipped": res.Skipped,
			"failed":  res.Failed,
		}).Info("hold sweep finished")
	}

	return res, nil
}
