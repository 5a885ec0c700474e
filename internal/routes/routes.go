package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/config"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/handlers"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
	ucBooking "github.com/BruksfildServices01/barber-booking/internal/usecase/booking"
)

// Deps are the singletons built by main. Gateway, PaymentSource and
// Deduper are optional.
type Deps struct {
	Config   *config.Config
	Repo     domain.Repository
	Calendar domain.CalendarStore
	Audit    audit.Reader
	Clock    timezone.Clock
	Policy   ucBooking.Policy
	Effects  ucBooking.Effects

	Gateway       domain.PaymentGateway
	PaymentSource handlers.PaymentEventSource
	Deduper       domain.EventDeduper

	Metrics *metrics.Recorder
	Log     logrus.FieldLogger
}

// RegisterRoutes wires use cases and handlers and returns the hold-expiry
// sweeper so main can schedule it.
func RegisterRoutes(r *gin.Engine, d Deps) *ucBooking.ExpireHolds {
	cfg := d.Config

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(d.Log),
		middleware.CORSMiddleware(cfg.Server.CORSOrigins),
	)

	// ======================================================
	// USE CASES
	// ======================================================
	cancelUC := ucBooking.NewCancelBooking(d.Repo, d.Clock, d.Effects)

	bookingUCs := handlers.BookingUseCases{
		Create:   ucBooking.NewCreateBooking(d.Repo, d.Clock, d.Policy, d.Gateway, d.Effects),
		Update:   ucBooking.NewUpdateBooking(d.Repo, d.Clock, d.Policy, d.Effects),
		Cancel:   cancelUC,
		Complete: ucBooking.NewCompleteBooking(d.Repo, d.Clock, d.Effects),
		NoShow:   ucBooking.NewMarkNoShow(d.Repo, d.Effects),
		Get:      ucBooking.NewGetBooking(d.Repo),
		Agenda:   ucBooking.NewListBarberBookings(d.Repo, d.Clock),
		Slots:    ucBooking.NewOpenSlots(d.Repo, d.Clock, d.Policy),
	}

	confirmUC := ucBooking.NewConfirmPayment(d.Repo, d.Clock, d.Deduper, d.Effects)
	scheduleUC := ucBooking.NewManageSchedule(d.Calendar, d.Clock, d.Effects)
	sweeper := ucBooking.NewExpireHolds(d.Repo, cancelUC, d.Clock, d.Policy, d.Effects)

	// ======================================================
	// HANDLERS
	// ======================================================
	bookingHandler := handlers.NewBookingHandler(bookingUCs, d.Repo)
	availabilityHandler := handlers.NewAvailabilityHandler(scheduleUC, d.Repo)
	webhookHandler := handlers.NewWebhookHandler(confirmUC, d.PaymentSource, cfg.Payments.WebhookSecret, d.Log)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.Audit, d.Clock)

	// ======================================================
	// OPS
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics.Enabled && d.Metrics != nil {
		r.GET(cfg.Metrics.Path, gin.WrapH(d.Metrics.Handler()))
	}

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.GET("/public/barbers/:barberID/slots", bookingHandler.OpenSlots)

		// ------------------------------
		// WEBHOOKS
		// ------------------------------
		api.POST("/webhooks/payments", webhookHandler.Payments)
		api.POST("/webhooks/mercadopago", webhookHandler.MercadoPago)

		// ------------------------------
		// SECURED
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))
		{
			anyRole := middleware.RequireRole(models.RoleCustomer, models.RoleBarber, models.RoleAdmin)
			staff := middleware.RequireRole(models.RoleBarber, models.RoleAdmin)

			secured.POST("/bookings", middleware.RequireRole(models.RoleCustomer), bookingHandler.Create)
			secured.GET("/bookings/:id", anyRole, bookingHandler.Get)
			secured.PATCH("/bookings/:id/reschedule", anyRole, bookingHandler.Reschedule)
			secured.PATCH("/bookings/:id/cancel", anyRole, bookingHandler.Cancel)
			secured.PATCH("/bookings/:id/complete", staff, bookingHandler.Complete)
			secured.PATCH("/bookings/:id/no-show", staff, bookingHandler.NoShow)

			barber := secured.Group("/me")
			barber.Use(middleware.RequireRole(models.RoleBarber))
			{
				barber.GET("/bookings", bookingHandler.Agenda)
				barber.GET("/schedule", availabilityHandler.Get)
				barber.PUT("/schedule/availability", availabilityHandler.ReplaceWeek)
				barber.POST("/schedule/breaks", availabilityHandler.AddBreak)
				barber.DELETE("/schedule/breaks/:id", availabilityHandler.RemoveBreak)
			}

			admin := secured.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/barbers/:barberID/bookings", bookingHandler.BarberAgenda)
				admin.GET("/audit-logs", auditLogsHandler.List)
			}
		}
	}

	return sweeper
}
