package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	ucBooking "github.com/BruksfildServices01/barber-booking/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingUseCases struct {
	Create   *ucBooking.CreateBooking
	Update   *ucBooking.UpdateBooking
	Cancel   *ucBooking.CancelBooking
	Complete *ucBooking.CompleteBooking
	NoShow   *ucBooking.MarkNoShow
	Get      *ucBooking.GetBooking
	Agenda   *ucBooking.ListBarberBookings
	Slots    *ucBooking.OpenSlots
}

type BookingHandler struct {
	uc      BookingUseCases
	barbers BarberLookup
}

func NewBookingHandler(uc BookingUseCases, barbers BarberLookup) *BookingHandler {
	return &BookingHandler{uc: uc, barbers: barbers}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	BarberID      uint   `json:"barber_id" binding:"required"`
	ServiceID     uint   `json:"service_id" binding:"required"`
	Date          string `json:"date" binding:"required"`
	Time          string `json:"time" binding:"required"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
}

type RescheduleRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	out, err := h.uc.Create.Execute(c.Request.Context(), ucBooking.CreateBookingInput{
		CustomerID:    middleware.UserID(c),
		BarberID:      req.BarberID,
		ServiceID:     req.ServiceID,
		Date:          req.Date,
		Time:          req.Time,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	resp := dto.NewBookingDTO(out.Booking)
	if out.Payment != nil {
		resp.CheckoutURL = out.Payment.CheckoutURL
	}
	httpresp.Created(c, resp)
}

// ======================================================
// READ
// ======================================================

func (h *BookingHandler) Get(c *gin.Context) {
	b, ok := h.load(c, false)
	if !ok {
		return
	}
	httpresp.OK(c, dto.NewBookingDTO(b))
}

// Agenda lists the authenticated barber's bookings for ?date=.
func (h *BookingHandler) Agenda(c *gin.Context) {
	barber, ok := currentBarber(c, h.barbers)
	if !ok {
		return
	}
	h.agenda(c, barber.ID)
}

// BarberAgenda lists any barber's bookings; admin only.
func (h *BookingHandler) BarberAgenda(c *gin.Context) {
	barberID, ok := parseID(c, "barberID")
	if !ok {
		return
	}
	h.agenda(c, barberID)
}

func (h *BookingHandler) agenda(c *gin.Context, barberID uint) {
	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "Query parameter date is required.")
		return
	}

	list, err := h.uc.Agenda.Execute(c.Request.Context(), barberID, date)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, list)
}

func (h *BookingHandler) OpenSlots(c *gin.Context) {
	barberID, ok := parseID(c, "barberID")
	if !ok {
		return
	}

	serviceID, err := strconv.ParseUint(c.Query("service_id"), 10, 64)
	if err != nil || serviceID == 0 {
		httperr.BadRequest(c, "invalid_service_id", "Query parameter service_id is required.")
		return
	}
	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "Query parameter date is required.")
		return
	}

	slots, err := h.uc.Slots.Execute(c.Request.Context(), barberID, date, uint(serviceID))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"barber_id":  barberID,
		"service_id": serviceID,
		"date":       date,
		"slots":      slots,
	})
}

// ======================================================
// TRANSITIONS
// ======================================================

// Reschedule is owner-only for every role.
func (h *BookingHandler) Reschedule(c *gin.Context) {
	b, ok := h.load(c, true)
	if !ok {
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	updated, err := h.uc.Update.Execute(c.Request.Context(), b.ID, req.Date, req.Time)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, dto.NewBookingDTO(updated))
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	b, ok := h.load(c, false)
	if !ok {
		return
	}

	cancelled, err := h.uc.Cancel.Execute(c.Request.Context(), b.ID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, dto.NewBookingDTO(cancelled))
}

func (h *BookingHandler) Complete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	b, err := h.uc.Complete.Execute(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, dto.NewBookingDTO(b))
}

func (h *BookingHandler) NoShow(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	b, err := h.uc.NoShow.Execute(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, dto.NewBookingDTO(b))
}

// ======================================================
// HELPERS
// ======================================================

// load fetches :id. Customers only reach their own bookings; barbers and
// admins reach any booking unless ownerOnly is set.
func (h *BookingHandler) load(c *gin.Context, ownerOnly bool) (*models.Booking, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}

	b, err := h.uc.Get.Execute(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err)
		return nil, false
	}

	restricted := ownerOnly || middleware.UserRole(c) == models.RoleCustomer
	if restricted && b.CustomerID != middleware.UserID(c) {
		httperr.NotFound(c, "booking_not_found", "Booking not found.")
		return nil, false
	}
	return b, true
}
