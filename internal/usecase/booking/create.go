package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// ======================================================
// INPUT / OUTPUT
// ======================================================

type CreateBookingInput struct {
	CustomerID uint
	BarberID   uint
	ServiceID  uint

	Date          string
	Time          string
	PaymentMethod string
	Notes         string
}

type CreatedBooking struct {
	Booking *models.Booking
	// Payment is nil when nothing is due online.
	Payment *models.Payment
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo    domain.Repository
	clock   timezone.Clock
	policy  Policy
	gateway domain.PaymentGateway
	fx      Effects
}

func NewCreateBooking(
	repo domain.Repository,
	clock timezone.Clock,
	policy Policy,
	gateway domain.PaymentGateway,
	fx Effects,
) *CreateBooking {
	return &CreateBooking{
		repo:    repo,
		clock:   clock,
		policy:  policy,
		gateway: gateway,
		fx:      fx,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*CreatedBooking, error) {

	// --------------------------------------------------
	// 1. Input
	// --------------------------------------------------
	method, ok := domain.ParsePaymentMethod(in.PaymentMethod)
	if !ok {
		return nil, httperr.ErrBadRequest("invalid_payment_method", "Payment method must be online or in_shop.")
	}

	loc := uc.clock.Location()
	date, err := timezone.ParseDate(in.Date, loc)
	if err != nil {
		return nil, httperr.ErrBadRequest("invalid_date_or_time", "Date must be YYYY-MM-DD.")
	}
	start, err := timezone.ParseDateTime(in.Date, in.Time, loc)
	if err != nil {
		return nil, httperr.ErrBadRequest("invalid_date_or_time", "Time must be HH:MM.")
	}

	// --------------------------------------------------
	// 2. Customer / barber / service
	// --------------------------------------------------
	customer, err := uc.repo.GetCustomer(ctx, in.CustomerID)
	if err != nil {
		return nil, notFound(err, "customer_not_found", "Customer not found.")
	}
	if _, err := uc.repo.GetBarber(ctx, in.BarberID); err != nil {
		return nil, notFound(err, "barber_not_found", "Barber not found.")
	}
	service, err := uc.repo.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, notFound(err, "service_not_found", "Service not found.")
	}

	// --------------------------------------------------
	// 3. Past / blacklist
	// --------------------------------------------------
	now := uc.clock.Now()
	if start.Before(now) {
		return nil, errInPast()
	}

	if err := domain.CheckBlacklist(customer); err != nil {
		uc.fx.logger().WithField("customer_id", customer.ID).Info("blacklisted customer rejected")
		return nil, err
	}

	// --------------------------------------------------
	// 4. Working hours
	// --------------------------------------------------
	schedule, err := loadSchedule(ctx, uc.repo, in.BarberID, date)
	if err != nil {
		return nil, err
	}
	if err := requireWithinSchedule(schedule, date, start, service.DurationMinutes); err != nil {
		return nil, err
	}

	b := domain.NewBooking(domain.Draft{
		CustomerID: customer.ID,
		BarberID:   in.BarberID,
		Service:    service,
		Date:       date,
		Start:      start,
		Method:     method,
		Notes:      in.Notes,
		Now:        now,
		HoldWindow: uc.policy.HoldWindow,
	})

	// --------------------------------------------------
	// 5. Conflict check + insert (one transaction)
	// --------------------------------------------------
	var payment *models.Payment
	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		if err := tx.LockBarberDay(ctx, b.BarberID, date); err != nil {
			return err
		}

		taken, err := tx.HasOverlap(ctx, b.BarberID, b.StartTime, b.EndTime, 0)
		if err != nil {
			return err
		}
		if taken {
			return errTimeConflict
		}

		if err := tx.CreateBooking(ctx, b); err != nil {
			return err
		}

		if domain.HoldsOnlinePayment(b) {
			payment = &models.Payment{
				BookingID:        b.ID,
				GatewayReference: uuid.NewString(),
				Amount:           b.DepositAmount,
				Status:           models.PaymentRecordPending,
			}
			if err := tx.CreatePayment(ctx, payment); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		err = writeConflict(err)
		if httperr.IsBusiness(err, "time_conflict") {
			uc.fx.Metrics.Conflict()
			uc.fx.Audit.Dispatch(audit.Event{
				UserID: audit.ActorFrom(ctx),
				Action: "booking_conflict",
				Entity: "booking",
				Metadata: map[string]any{
					"barber_id":  b.BarberID,
					"start_time": b.StartTime,
				},
			})
		}
		return nil, err
	}

	// --------------------------------------------------
	// 6. Checkout (after commit)
	// --------------------------------------------------
	if payment != nil {
		uc.openCheckout(ctx, customer, service, payment)
	}

	uc.fx.Metrics.BookingCreated(b.PaymentMethod)
	uc.fx.record(audit.ActorFrom(ctx), "booking_created", b, map[string]any{
		"payment_method": b.PaymentMethod,
		"deposit":        b.DepositAmount.StringFixed(2),
	})
	uc.fx.logger().WithFields(logrus.Fields{
		"booking_id": b.ID,
		"barber_id":  b.BarberID,
		"start_time": b.StartTime.Format(time.RFC3339),
	}).Info("booking created")

	return &CreatedBooking{Booking: b, Payment: payment}, nil
}

// openCheckout asks the gateway for a hosted checkout. A failure leaves the
// hold in place; it expires like any unpaid hold.
func (uc *CreateBooking) openCheckout(
	ctx context.Context,
	customer *models.User,
	service *models.Service,
	payment *models.Payment,
) {
	if uc.gateway == nil {
		return
	}

	session, err := uc.gateway.CreateCheckout(ctx, domain.Checkout{
		Reference:   payment.GatewayReference,
		Title:       service.Name,
		Amount:      payment.Amount,
		PayerEmail:  customer.Email,
		Description: "Booking deposit",
	})
	if err != nil {
		uc.fx.logger().WithError(err).
			WithField("payment_reference", payment.GatewayReference).
			Error("checkout creation failed")
		return
	}

	payment.CheckoutURL = session.URL
	if err := uc.repo.UpdatePayment(ctx, payment); err != nil {
		uc.fx.logger().WithError(err).
			WithField("payment_reference", payment.GatewayReference).
			Error("storing checkout url failed")
	}
}
