package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-booking/internal/logging"
	ucBooking "github.com/BruksfildServices01/barber-booking/internal/usecase/booking"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (s *countingSweeper) Sweep(context.Context) (ucBooking.SweepResult, error) {
	s.calls.Add(1)
	return ucBooking.SweepResult{}, s.err
}

func TestHoldReconciler_SweepsUntilCancelled(t *testing.T) {
	sweeper := &countingSweeper{err: errors.New("db unavailable")}
	w := NewHoldReconciler(sweeper, 10*time.Millisecond, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return sweeper.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}

	stopped := sweeper.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, sweeper.calls.Load())
}

func TestHoldReconciler_DefaultInterval(t *testing.T) {
	w := NewHoldReconciler(&countingSweeper{}, 0, logging.Discard())
	assert.Equal(t, time.Minute, w.interval)
}
