package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/barber-booking/internal/db"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/infra/cache"
	"github.com/BruksfildServices01/barber-booking/internal/infra/gateway"
	"github.com/BruksfildServices01/barber-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barber-booking/internal/infra/repository/memrepo"
	"github.com/BruksfildServices01/barber-booking/internal/logging"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/routes"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
	ucBooking "github.com/BruksfildServices01/barber-booking/internal/usecase/booking"
	"github.com/BruksfildServices01/barber-booking/internal/worker"
)

func main() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.toml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log := logging.New(cfg.Logs.Level, cfg.Logs.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped with error")
	}
}

func run(parent context.Context, cfg *config.Config, log *logrus.Logger) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	clock := timezone.NewSystemClock(cfg.Server.Timezone)
	rec := metrics.New()

	// ======================================================
	// STORAGE
	// ======================================================
	var (
		repo     domain.Repository
		calendar domain.CalendarStore
		sink     audit.Sink
		reader   audit.Reader
	)

	switch cfg.Database.StorageDriver {
	case "memory":
		mem := memrepo.New()
		seedDemo(mem)
		memSink := &audit.MemorySink{}
		repo, calendar, sink, reader = mem, mem, memSink, memSink
		log.Warn("running on the in-memory store; data is lost on exit")

	default:
		db, err := dbpkg.NewDB(cfg)
		if err != nil {
			return err
		}
		gormRepo := repository.NewBookingGormRepository(db)
		auditLogger := audit.New(db)
		repo, calendar, sink, reader = gormRepo, gormRepo, auditLogger, auditLogger
	}

	auditDispatcher := audit.NewDispatcher(sink, log)
	defer auditDispatcher.Close()

	// ======================================================
	// NOTIFICATIONS
	// ======================================================
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logging.NewWatermillAdapter(log))
	defer pubSub.Close()

	// workers publish audit events; they stop before the Close calls above run
	var workers sync.WaitGroup
	defer func() {
		cancel()
		workers.Wait()
	}()

	notifier := notify.NewDispatcher(pubSub, notify.LogSender{Log: log}, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		if err := notifier.Run(ctx); err != nil {
			log.WithError(err).Error("notification dispatcher stopped")
		}
	}()

	// ======================================================
	// OPTIONAL INTEGRATIONS
	// ======================================================
	deps := routes.Deps{
		Config:   cfg,
		Repo:     repo,
		Calendar: calendar,
		Audit:    reader,
		Clock:    clock,
		Policy: ucBooking.Policy{
			HoldWindow:      cfg.Booking.HoldWindow.Duration,
			SlotStepMinutes: cfg.Booking.SlotStepMinutes,
			ReconcileBatch:  cfg.Booking.ReconcileBatch,
		},
		Effects: ucBooking.Effects{
			Audit:    auditDispatcher,
			Notifier: notify.NewWatermillPublisher(pubSub),
			Metrics:  rec,
			Log:      log,
		},
		Metrics: rec,
		Log:     log,
	}

	if cfg.Redis.Addr != "" {
		client, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, webhook dedup falls back to payment records")
		} else {
			defer client.Close()
			deps.Deduper = cache.NewEventDeduper(client, cfg.Booking.WebhookDedupTTL.Duration)
		}
	}

	if cfg.Payments.MercadoPagoToken != "" {
		mp, err := gateway.NewMercadoPago(cfg.Payments.MercadoPagoToken, cfg.Payments.Currency, cfg.Payments.NotificationURL)
		if err != nil {
			return err
		}
		deps.Gateway = mp
		deps.PaymentSource = mp
	} else {
		log.Info("no payment gateway configured; online deposits wait for the generic webhook")
	}

	// ======================================================
	// HTTP
	// ======================================================
	r := gin.New()
	r.Use(gin.Recovery())
	sweeper := routes.RegisterRoutes(r, deps)

	reconciler := worker.NewHoldReconciler(sweeper, cfg.Booking.ReconcileInterval.Duration, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		reconciler.Run(ctx)
	}()

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Addr()).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}
